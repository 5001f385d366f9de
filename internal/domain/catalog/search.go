package catalog

import (
	"strings"
)

// DefaultSearchLimit is the number of suggestions returned by Search.
const DefaultSearchLimit = 8

// Search returns up to limit products matching every term of query. A term
// matches the name, category, shape, material or a color, ignoring case.
// Results keep the collection order. An empty query matches nothing.
func Search(products []Product, query string, limit int) []Product {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 || limit < 1 {
		return []Product{}
	}
	out := []Product{}
	for _, p := range products {
		if matchesAll(p, terms) {
			out = append(out, p)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

func matchesAll(p Product, terms []string) bool {
	haystack := strings.ToLower(strings.Join(append([]string{p.Name, p.Category, p.Shape, p.Material}, p.Colors...), " "))
	for _, t := range terms {
		if !strings.Contains(haystack, t) {
			return false
		}
	}
	return true
}
