// Package history records the locations a player passes through.
//
// A History is an append-only sequence of events. Each event holds a
// location id, the brief description of that location, and the command that
// led away from it to the next event. The outbound command of an event is only
// known when the next event is appended, so Add takes the command used to
// leave the current tail:
//
//	h := history.New()
//	h.Add(history.Event{LocationID: 2}, "")
//	h.Add(history.Event{LocationID: 3}, "go west")
//	h.IDs() // [2 3]
//
// The sequence is index addressed; the previous and next event of any entry
// are its neighbours in the slice.
package history
