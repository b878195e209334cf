// Command validate checks the world catalogs in a configs directory
// (../configs by default, or the first argument). For each .json/.yaml file it checks:
//   - the catalog schema and cross references (unique ids, known exits,
//     items listed where they start, restriction and reward names)
//   - the engine settings derived from the catalog's rules
//   - connectivity: every location is reachable from the start, and every
//     item can be obtained when restrictions are honored
//   - the win threshold is attainable from the total item points
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/campus-quest/game/catalog"
	"github.com/wricardo/campus-quest/game/engine"
	"github.com/wricardo/campus-quest/internal/logging"
)

// ValidationResult captures the outcome of validating a single file.
// Errors holds the problems found; Info holds the summary of a valid file.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateWorld loads and validates a single catalog file.
func validateWorld(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	cat, err := catalog.LoadFile(filePath)
	if err != nil {
		if code := logging.ErrorCode(err); code != "" {
			result.fail("%s: %v", code, err)
		} else {
			result.fail("%v", err)
		}
		return result
	}

	settings := engine.SettingsFor(cat)
	if err := engine.ValidateSettings(cat, settings); err != nil {
		result.fail("Invalid rules: %v", err)
		return result
	}

	for _, name := range append(append([]string{}, settings.RequiredReturns...), settings.StorageEquivalents...) {
		if _, ok := cat.Item(name); !ok {
			result.fail("Rules name unknown item %q", name)
		}
	}

	validateConnectivity(cat, settings.StartLocation, &result)

	total := 0
	for _, item := range cat.Items {
		total += item.TargetPoints
	}
	if total < settings.MinScore {
		result.fail("Win threshold %d exceeds the %d points available", settings.MinScore, total)
	}

	if result.Valid {
		result.Info = append(result.Info,
			fmt.Sprintf("✓ Name: %s", cat.Name),
			fmt.Sprintf("✓ Locations: %d", len(cat.Locations)),
			fmt.Sprintf("✓ Items: %d", len(cat.Items)),
			fmt.Sprintf("✓ Start: %d", settings.StartLocation),
			fmt.Sprintf("✓ Points: %d available, %d to win", total, settings.MinScore),
			fmt.Sprintf("✓ Turns: %d", settings.MaxTurns),
		)
	}

	return result
}

// validateConnectivity reports locations unreachable from start and items
// that can never be obtained.
func validateConnectivity(cat *catalog.Catalog, start int, result *ValidationResult) {
	explored := cat.Explore(start)

	var unreachable []int
	for _, id := range cat.LocationIDs() {
		if !explored.Locations[id] {
			unreachable = append(unreachable, id)
		}
	}
	if len(unreachable) > 0 {
		result.fail("Connectivity failure: %d/%d locations unreachable from %d: %v",
			len(unreachable), len(cat.Locations), start, unreachable)
	}

	var missing []string
	for _, item := range cat.Items {
		if !explored.Items[item.Name] {
			missing = append(missing, item.Name)
		}
	}
	sort.Strings(missing)
	if len(missing) > 0 {
		result.fail("Unobtainable items: %s", strings.Join(missing, ", "))
	}

	if len(unreachable) == 0 && len(missing) == 0 {
		result.Info = append(result.Info, fmt.Sprintf("✓ Connectivity: all %d locations reachable from %d", len(cat.Locations), start))
	}
}

// worldFiles lists the catalog files in dir.
func worldFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// main validates every catalog and exits non-zero if any is invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := worldFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding world files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No world files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateWorld(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Info {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All worlds are valid!")
	} else {
		fmt.Println("❌ Some worlds have errors")
		os.Exit(1)
	}
}
