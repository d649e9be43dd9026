// Package typesystem holds the type representation of the checker: a
// closed variant of named, union and intersection types, the Unknown
// sentinel, and the subtype relation over them.
package typesystem

import "strings"

// Type is the closed interface over the lattice variants.
type Type interface {
	typeNode()
	String() string
}

// Named is a primitive tag (`int`, `string`, ...) or a fully qualified
// class, interface, trait or enum name. Primitive names are stored
// lowercased; class names keep the author's spelling and are compared
// case-insensitively.
type Named struct {
	Name     string
	Nullable bool
}

func (Named) typeNode() {}

// Union is an unordered, deduplicated, never-empty set of alternatives.
// A Union never nests another Union.
type Union struct {
	Members []Type
}

func (Union) typeNode() {}

// Intersection is a conjunction of two or more non-nullable class or
// interface names.
type Intersection struct {
	Members []Named
}

func (Intersection) typeNode() {}

type unknownType struct{}

func (unknownType) typeNode()      {}
func (unknownType) String() string { return "unknown" }

// Unknown is the sentinel for "not determinable by analysis". It is
// distinct from every real type, including `never`.
var Unknown Type = unknownType{}

// PossibleTypes is the set of types an expression or variable may have at
// runtime. Empty means "known invalid"; a set containing Unknown means
// "not determinable".
type PossibleTypes = []Type

var primitives = map[string]bool{
	"int": true, "float": true, "string": true, "bool": true,
	"true": true, "false": true, "null": true, "array": true,
	"object": true, "callable": true, "iterable": true, "void": true,
	"never": true, "mixed": true, "resource": true,
	"self": true, "static": true, "parent": true,
}

// IsPrimitive reports whether name is one of the built-in type tags.
func IsPrimitive(name string) bool {
	return primitives[strings.ToLower(name)]
}

// IsMixed reports whether t is the `mixed` tag.
func IsMixed(t Type) bool {
	n, ok := t.(Named)
	return ok && strings.EqualFold(n.Name, "mixed")
}

// IsNamed reports whether t is the given named tag, ignoring case and the
// nullable flag.
func IsNamed(t Type, name string) bool {
	n, ok := t.(Named)
	return ok && strings.EqualFold(n.Name, name)
}

// key returns a canonical identity for deduplication.
func key(t Type) string {
	return strings.ToLower(TypeString(t, true))
}

// MakeUnion builds a normalized type from members: nested unions are
// flattened, duplicates removed, and a singleton unwraps to its member.
// An empty member list yields Unknown.
func MakeUnion(members ...Type) Type {
	var flat []Type
	seen := make(map[string]bool)
	var add func(t Type)
	add = func(t Type) {
		if u, ok := t.(Union); ok {
			for _, m := range u.Members {
				add(m)
			}
			return
		}
		k := key(t)
		if !seen[k] {
			seen[k] = true
			flat = append(flat, t)
		}
	}
	for _, m := range members {
		if m != nil {
			add(m)
		}
	}
	switch len(flat) {
	case 0:
		return Unknown
	case 1:
		return flat[0]
	}
	return Union{Members: flat}
}

// MergeSets unions two possible-type sets without duplicates.
func MergeSets(a, b PossibleTypes) PossibleTypes {
	out := make(PossibleTypes, 0, len(a)+len(b))
	seen := make(map[string]bool)
	for _, t := range append(append(PossibleTypes{}, a...), b...) {
		k := key(t)
		if !seen[k] {
			seen[k] = true
			out = append(out, t)
		}
	}
	return out
}

// ContainsUnknown reports whether the set has the Unknown sentinel.
func ContainsUnknown(set PossibleTypes) bool {
	for _, t := range set {
		if t == Unknown {
			return true
		}
	}
	return false
}

// ContainsMixed reports whether any member of the set is `mixed`.
func ContainsMixed(set PossibleTypes) bool {
	for _, t := range set {
		if IsMixed(t) {
			return true
		}
		if u, ok := t.(Union); ok && ContainsMixed(u.Members) {
			return true
		}
	}
	return false
}

// UnknownSet is the conventional "not determinable" result.
func UnknownSet() PossibleTypes {
	return PossibleTypes{Unknown}
}
