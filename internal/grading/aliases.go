package grading

import (
	"slices"
	"strings"
)

// AliasTable maps a canonical algorithm or strategy label to the surface
// forms accepted for it.
type AliasTable map[string][]string

// DefaultAliases is shared process-wide and must not be modified.
var DefaultAliases = AliasTable{
	"hill climbing":    {"hill climbing", "hc", "escalada", "ascenso de colinas", "local search", "warnsdorff"},
	"backtracking":     {"backtracking", "bt", "vuelta atras", "fuerza bruta", "dfs"},
	"dfs":              {"dfs", "depth first", "profundidad"},
	"bfs":              {"bfs", "breadth first", "anchura"},
	"a*":               {"a*", "a star", "a-star", "a start", "heuristica"},
	"(d, r)":           {"(d, r)", "d,r", "down right", "abajo derecha"},
	"(u, l)":           {"(u, l)", "u,l", "up left", "arriba izquierda"},
	"(u, r)":           {"(u, r)", "u,r", "up right", "arriba derecha"},
	"(d, l)":           {"(d, l)", "d,l", "down left", "abajo izquierda"},
	"(coop, coop)":     {"(coop, coop)", "coop", "both silent"},
	"(betray, betray)": {"(betray, betray)", "betray", "confess", "defect"},
	"no":               {"no", "none", "ninguno", "no existe"},
	"yes":              {"yes", "si", "sí", "existe"},
}

// Aliases returns the synonyms registered for a canonical id.
func (t AliasTable) Aliases(id string) []string {
	return t[strings.ToLower(strings.TrimSpace(id))]
}

// Match finds the canonical id whose key occurs inside label. Longer keys
// are tried first so "(d, r)" is preferred over a bare "no" or "dfs"
// fragment; ties break alphabetically to keep the result stable.
func (t AliasTable) Match(label string) (string, bool) {
	low := strings.ToLower(label)
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})
	for _, k := range keys {
		if strings.Contains(low, k) {
			return k, true
		}
	}
	return "", false
}

// references builds the fuzzy reference set for a label: the label itself
// plus every alias of its canonical id, all worth full marks.
func (t AliasTable) references(label, canonicalID string) []Reference {
	refs := []Reference{{Text: label, MaxScore: 100}}
	id := canonicalID
	if id == "" {
		id, _ = t.Match(label)
	}
	for _, a := range t.Aliases(id) {
		refs = append(refs, Reference{Text: a, MaxScore: 100})
	}
	return refs
}
