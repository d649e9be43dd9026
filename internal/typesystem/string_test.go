package typesystem

import (
	"strings"
	"testing"
)

func TestTypeStringSortedStableUnderPermutation(t *testing.T) {
	ab := Union{Members: []Type{n("int"), n("string"), n("null")}}
	ba := Union{Members: []Type{n("null"), n("string"), n("int")}}
	if TypeString(ab, true) != TypeString(ba, true) {
		t.Errorf("sorted printing must be permutation-stable: %q vs %q",
			TypeString(ab, true), TypeString(ba, true))
	}
	if TypeString(ab, false) == TypeString(ba, false) {
		t.Error("unsorted printing preserves author order")
	}
}

func TestTypeStringForms(t *testing.T) {
	cases := []struct {
		typ  Type
		want string
	}{
		{n("int"), "int"},
		{nn("string"), "?string"},
		{Union{Members: []Type{n("int"), n("string")}}, "int|string"},
		{Intersection{Members: []Named{n("A"), n("B")}}, "A&B"},
		{Unknown, "unknown"},
	}
	for _, c := range cases {
		if got := TypeString(c.typ, false); got != c.want {
			t.Errorf("TypeString = %q, want %q", got, c.want)
		}
	}
}

// parseTypeString is a test-local inverse of TypeString for simple
// (non-intersection) shapes, used to exercise the round-trip law.
func parseTypeString(s string) Type {
	var members []Type
	for _, part := range strings.Split(s, "|") {
		nullable := strings.HasPrefix(part, "?")
		members = append(members, Named{Name: strings.TrimPrefix(part, "?"), Nullable: nullable})
	}
	return MakeUnion(members...)
}

func TestTypeStringRoundTrip(t *testing.T) {
	types := []Type{
		n("int"),
		nn("float"),
		MakeUnion(n("int"), n("string"), n("null")),
		MakeUnion(nn("Foo"), n("array")),
	}
	for _, typ := range types {
		printed := TypeString(typ, true)
		back := parseTypeString(printed)
		if TypeString(back, true) != printed {
			t.Errorf("round trip changed %q to %q", printed, TypeString(back, true))
		}
	}
}

func TestSetString(t *testing.T) {
	if got := SetString(nil, false); got != "never" {
		t.Errorf("empty set prints %q, want never", got)
	}
	set := PossibleTypes{n("string"), n("int")}
	if got := SetString(set, false); got != "string|int" {
		t.Errorf("SetString = %q, want string|int", got)
	}
	if got := SetString(set, true); got != "int|string" {
		t.Errorf("sorted SetString = %q, want int|string", got)
	}
}
