// Package catalog holds the world of a Campus Quest game: its locations,
// its items and the optional rule overrides a world carries.
//
// A catalog is loaded from a JSON or YAML document. Loading runs in three
// steps:
//
//   - the document is checked against the embedded JSON schema
//   - reward payloads are normalized (the legacy shape nests the reward
//     maps one level deeper under a "rewards" key; both shapes are accepted)
//   - cross references are validated (exits, item placement, restriction
//     and reward item names)
//
// Usage:
//
//	cat, err := catalog.LoadFile("configs/campus.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//	start, _ := cat.Location(2)
//	fmt.Println(start.LongDescription)
//
// After loading only Location.Items and Location.Visited change during play.
// Engines work on a Clone so a reset can start again from the pristine copy.
package catalog
