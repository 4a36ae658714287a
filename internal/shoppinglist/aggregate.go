// Package shoppinglist collapses the ingredients of a user's cart into a
// deduplicated report and renders it for download.
package shoppinglist

// Item is one (ingredient, unit, amount) triple reachable from a cart row
type Item struct {
	Name   string
	Unit   string
	Amount int
}

// Line is an aggregated report entry
type Line struct {
	Name   string
	Unit   string
	Amount int
}

type key struct {
	name string
	unit string
}

// Aggregate groups items by name and unit and sums their amounts.
// Lines keep the order in which each (name, unit) pair was first seen.
// Ingredients sharing a name but not a unit stay on separate lines.
func Aggregate(items []Item) []Line {
	lines := make([]Line, 0, len(items))
	index := make(map[key]int, len(items))
	for _, item := range items {
		k := key{name: item.Name, unit: item.Unit}
		if i, ok := index[k]; ok {
			lines[i].Amount += item.Amount
			continue
		}
		index[k] = len(lines)
		lines = append(lines, Line{Name: item.Name, Unit: item.Unit, Amount: item.Amount})
	}
	return lines
}
