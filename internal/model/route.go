package model

import "fmt"

// RouteNames assigns file names to categories in arrival order. The result
// maps each category to the index of the name routed to it; a later name
// replaces an earlier one. taken marks categories that already hold a file.
// Warnings describe ignored, ambiguous and replacing names.
func RouteNames(names []string, taken map[Category]bool) (map[Category]int, []string) {
	routed := make(map[Category]int)
	var warnings []string

	for i, name := range names {
		m, ok := MatchCategory(name)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("file %s ignored: name does not match any category", name))
			continue
		}
		if m.Ambiguous {
			warnings = append(warnings, fmt.Sprintf("file %s may match more than one category; using %s", name, m.Category))
		}
		if _, dup := routed[m.Category]; dup || taken[m.Category] {
			warnings = append(warnings, fmt.Sprintf("file %s replaced %s", name, m.Category))
		}
		routed[m.Category] = i
	}
	return routed, warnings
}
