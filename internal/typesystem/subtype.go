package typesystem

import "strings"

// ClassLookup answers inheritance queries during subtype checks. The
// reflection environment implements it; a nil lookup treats every class
// name as unrelated.
type ClassLookup interface {
	// IsClassLike reports whether name resolves to a known class,
	// interface, trait or enum, user-defined or host-provided.
	IsClassLike(name string) bool
	// HasAncestor reports whether ancestor appears in name's parent
	// chain, its transitive interface closure, or equals name itself.
	// Both arguments are matched case-insensitively.
	HasAncestor(name, ancestor string) bool
}

// Subtype answers "is every runtime value of type a also acceptable where
// type b is expected?". The relation is optimistic: Unknown on either
// side, or mixed on either side, accepts.
func Subtype(a, b Type, classes ClassLookup) bool {
	if a == Unknown || b == Unknown {
		return true
	}
	if IsMixed(a) || IsMixed(b) {
		return true
	}
	if u, ok := a.(Union); ok {
		for _, x := range u.Members {
			if !Subtype(x, b, classes) {
				return false
			}
		}
		return true
	}
	if u, ok := b.(Union); ok {
		for _, y := range u.Members {
			if Subtype(a, y, classes) {
				return true
			}
		}
		// bool fits a union that covers both of its value tags.
		if an, ok := a.(Named); ok && strings.EqualFold(an.Name, "bool") && !an.Nullable {
			return Subtype(Named{Name: "true"}, b, classes) && Subtype(Named{Name: "false"}, b, classes)
		}
		return false
	}
	if i, ok := b.(Intersection); ok {
		for _, y := range i.Members {
			if !Subtype(a, y, classes) {
				return false
			}
		}
		return true
	}
	if i, ok := a.(Intersection); ok {
		for _, x := range i.Members {
			if Subtype(x, b, classes) {
				return true
			}
		}
		return false
	}
	an, aok := a.(Named)
	bn, bok := b.(Named)
	if !aok || !bok {
		return false
	}
	return namedSubtype(an, bn, classes)
}

func namedSubtype(a, b Named, classes ClassLookup) bool {
	n := strings.ToLower(a.Name)
	m := strings.ToLower(b.Name)
	if n == "null" {
		return m == "null" || b.Nullable
	}
	if a.Nullable {
		// The null part of a nullable left side is accepted by a bare
		// `null` right side, a compatibility quirk kept verbatim.
		if m == "null" {
			return true
		}
		if !b.Nullable {
			return false
		}
		return plainSubtype(n, m, classes)
	}
	return plainSubtype(n, m, classes)
}

// plainSubtype compares two non-nullable lowercased names.
func plainSubtype(n, m string, classes ClassLookup) bool {
	if n == m {
		return true
	}
	if n == "int" && m == "float" {
		return true
	}
	if (n == "true" || n == "false") && m == "bool" {
		return true
	}
	// closure/callable equivalence is symmetric and conservative.
	if (n == "closure" && m == "callable") || (n == "callable" && m == "closure") {
		return true
	}
	if n == "string" && m == "callable" {
		return true
	}
	if classes == nil {
		return false
	}
	if m == "object" && classes.IsClassLike(n) {
		return true
	}
	if n == "object" && classes.IsClassLike(m) {
		return true
	}
	if classes.IsClassLike(n) && classes.HasAncestor(n, m) {
		return true
	}
	// A string converts to and from classes carrying the Stringable
	// marker (declared or implied by __toString).
	if n == "string" && classes.IsClassLike(m) && classes.HasAncestor(m, "stringable") {
		return true
	}
	if m == "string" && classes.IsClassLike(n) && classes.HasAncestor(n, "stringable") {
		return true
	}
	return false
}

// SetSatisfies reports whether every member of the possible-type set is
// acceptable where want is expected. A set containing Unknown satisfies
// anything; an empty set satisfies nothing.
func SetSatisfies(set PossibleTypes, want Type, classes ClassLookup) bool {
	if len(set) == 0 {
		return false
	}
	if ContainsUnknown(set) {
		return true
	}
	for _, t := range set {
		if !Subtype(t, want, classes) {
			return false
		}
	}
	return true
}

// expandBool widens `bool` into its two value tags so that disjointness
// against `true`/`false` literals is exact.
func expandBool(set PossibleTypes) PossibleTypes {
	var out PossibleTypes
	for _, t := range set {
		if u, ok := t.(Union); ok {
			out = append(out, expandBool(u.Members)...)
			continue
		}
		if IsNamed(t, "bool") {
			n := t.(Named)
			out = append(out, Named{Name: "true", Nullable: n.Nullable}, Named{Name: "false", Nullable: n.Nullable})
			continue
		}
		out = append(out, t)
	}
	return out
}

// SetsDisjoint reports whether no value can inhabit both sets. Callers
// must rule out Unknown and mixed beforehand.
func SetsDisjoint(a, b PossibleTypes, classes ClassLookup) bool {
	ea := expandBool(a)
	eb := expandBool(b)
	for _, x := range ea {
		for _, y := range eb {
			if Subtype(x, y, classes) || Subtype(y, x, classes) {
				return false
			}
		}
	}
	return true
}
