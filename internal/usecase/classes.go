package usecase

import (
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"

	"sdkgen/internal/adapter/analyzer"
	"sdkgen/internal/domain"
)

// ClassCount is a class found in the function table with its row count.
type ClassCount struct {
	Class string
	Rows  int
}

// ListClasses returns every class qualifier in rows, sorted by name.
func ListClasses(rows []domain.SymbolRow) []ClassCount {
	counts := make(map[string]int)
	for _, row := range rows {
		if class := analyzer.ClassOf(row.DemangledName); class != "" {
			counts[class]++
		}
	}

	classes := make([]ClassCount, 0, len(counts))
	for class, n := range counts {
		classes = append(classes, ClassCount{Class: class, Rows: n})
	}
	sort.Slice(classes, func(i, j int) bool {
		return classes[i].Class < classes[j].Class
	})
	return classes
}

// MatchClasses returns the classes matching any of the glob patterns, in the
// order of classes. Patterns use doublestar syntax, e.g. "CAE*".
func MatchClasses(classes []ClassCount, patterns []string) ([]string, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Errorf("invalid class pattern %q", p)
		}
	}

	var out []string
	for _, c := range classes {
		for _, p := range patterns {
			if matched, _ := doublestar.Match(p, c.Class); matched {
				out = append(out, c.Class)
				break
			}
		}
	}
	return out, nil
}

// hasGlob reports whether a class argument is a pattern rather than a name.
func hasGlob(s string) bool {
	for _, r := range s {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
