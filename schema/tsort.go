package schema

import (
	"log/slog"
)

// topologicalSort performs a topological sort on items based on their dependencies using
// depth-first search (DFS). It returns the sorted items in dependency order, or an empty
// slice if a circular dependency is detected.
//
// The algorithm uses DFS with three-color marking (unvisited, visiting, visited) to detect
// cycles and ensure each node is processed only once.
func topologicalSort[T any](items []T, dependencies map[string][]string, getID func(T) string) []T {
	var sorted []T
	visited := make(map[string]bool)
	visiting := make(map[string]bool)
	itemMap := make(map[string]T)

	for _, item := range items {
		itemMap[getID(item)] = item
	}

	var visit func(string) bool
	visit = func(id string) bool {
		if visiting[id] {
			return false
		}
		if visited[id] {
			return true
		}

		visiting[id] = true
		for _, dep := range dependencies[id] {
			// Dependencies outside of items are assumed to exist already
			if _, exists := itemMap[dep]; exists {
				if !visit(dep) {
					return false
				}
			}
		}
		visiting[id] = false
		visited[id] = true

		if item, exists := itemMap[id]; exists {
			sorted = append(sorted, item)
		}
		return true
	}

	for _, item := range items {
		id := getID(item)
		if !visited[id] {
			if !visit(id) {
				return []T{}
			}
		}
	}

	return sorted
}

// sortTablesByDependencies orders created tables so that a table comes after the tables its
// foreign keys reference. Cycles and duplicate names keep the document order.
func sortTablesByDependencies(items []tableItem) []tableItem {
	if len(items) < 2 {
		return items
	}

	dependencies := make(map[string][]string)
	for _, item := range items {
		table := item.Descriptor
		var deps []string
		for _, fk := range table.ForeignKeys {
			if fk.ReferencedTable != "" && fk.ReferencedTable != table.Name {
				deps = append(deps, fk.ReferencedTable)
			}
		}
		dependencies[table.Name] = deps
	}

	sorted := topologicalSort(items, dependencies, func(item tableItem) string {
		return item.Descriptor.Name
	})
	if len(sorted) != len(items) {
		slog.Warn("Cannot sort tables by foreign key dependencies, keeping the document order")
		return items
	}
	return sorted
}
