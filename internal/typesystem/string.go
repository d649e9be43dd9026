package typesystem

import (
	"sort"
	"strings"
)

func (n Named) String() string {
	if n.Nullable {
		return "?" + n.Name
	}
	return n.Name
}

func (u Union) String() string {
	return TypeString(u, false)
}

func (i Intersection) String() string {
	return TypeString(i, false)
}

// TypeString pretty-prints a type. With sorted=true the members of unions
// and intersections are ordered case-insensitively, which makes the
// result stable under operand permutation; structural comparisons use the
// sorted form, error messages the author order.
func TypeString(t Type, sorted bool) string {
	switch v := t.(type) {
	case Named:
		return v.String()
	case Union:
		parts := make([]string, len(v.Members))
		for i, m := range v.Members {
			parts[i] = TypeString(m, sorted)
		}
		if sorted {
			sortParts(parts)
		}
		return strings.Join(parts, "|")
	case Intersection:
		parts := make([]string, len(v.Members))
		for i, m := range v.Members {
			parts[i] = m.String()
		}
		if sorted {
			sortParts(parts)
		}
		return strings.Join(parts, "&")
	default:
		return "unknown"
	}
}

// SetString prints a possible-type set as a union.
func SetString(set PossibleTypes, sorted bool) string {
	if len(set) == 0 {
		return "never"
	}
	parts := make([]string, len(set))
	for i, t := range set {
		parts[i] = TypeString(t, sorted)
	}
	if sorted {
		sortParts(parts)
	}
	return strings.Join(parts, "|")
}

func sortParts(parts []string) {
	sort.Slice(parts, func(i, j int) bool {
		a, b := strings.ToLower(parts[i]), strings.ToLower(parts[j])
		if a == b {
			return parts[i] < parts[j]
		}
		return a < b
	})
}
