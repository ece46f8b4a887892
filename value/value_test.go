package value

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mdql/mdql/mdqlerr"
)

func TestNestedGet(t *testing.T) {
	inner := NewHash()
	inner.Insert("name", NewString("frodo"))
	outer := NewHash()
	outer.Insert("file", inner)

	got := outer.NestedGet("file.name")
	s, ok := got.AsString()
	if !ok || s != "frodo" {
		t.Fatalf("got %#v", got)
	}
}

func TestNestedGetMissingIsNull(t *testing.T) {
	h := NewHash()
	if got := h.NestedGet("nope.deeper"); !got.IsNull() {
		t.Fatalf("expected null, got %#v", got)
	}
	if got := NewString("x").NestedGet("a.b"); !got.IsNull() {
		t.Fatalf("expected null when indexing a non-hash, got %#v", got)
	}
}

func TestInsertOnNonHashFails(t *testing.T) {
	s := NewString("x")
	err := s.Insert("k", NewInt(1))
	if !errors.Is(err, mdqlerr.ErrType) {
		t.Fatalf("expected ErrType, got %v", err)
	}
}

func TestPushOnNonListFails(t *testing.T) {
	s := NewString("x")
	err := s.Push(NewInt(1))
	if !errors.Is(err, mdqlerr.ErrType) {
		t.Fatalf("expected ErrType, got %v", err)
	}
}

func TestEqualAcrossVariantsIsFalse(t *testing.T) {
	if NewInt(1).Equal(NewFloat(1)) {
		t.Fatalf("integer and float should not be Equal despite same magnitude")
	}
	if NewString("1").Equal(NewInt(1)) {
		t.Fatalf("string and integer should never be equal")
	}
}

func TestEqualHashesOrderIndependent(t *testing.T) {
	a := NewHash()
	a.Insert("x", NewInt(1))
	a.Insert("y", NewInt(2))
	b := NewHash()
	b.Insert("y", NewInt(2))
	b.Insert("x", NewInt(1))
	if !a.Equal(b) {
		t.Fatalf("hashes with same entries in different insertion order should be equal")
	}
}

func TestCompareWithinVariant(t *testing.T) {
	cmp, ok := NewInt(1).Compare(NewInt(2))
	if !ok || cmp >= 0 {
		t.Fatalf("expected 1 < 2, got cmp=%d ok=%v", cmp, ok)
	}
	cmp, ok = NewString("a").Compare(NewString("b"))
	if !ok || cmp >= 0 {
		t.Fatalf("expected a < b, got cmp=%d ok=%v", cmp, ok)
	}
}

func TestCompareNumericCrossKind(t *testing.T) {
	cmp, ok := NewInt(2).Compare(NewFloat(2.5))
	if !ok || cmp >= 0 {
		t.Fatalf("expected 2 < 2.5 via numeric coercion, got cmp=%d ok=%v", cmp, ok)
	}
}

func TestCompareIncomparable(t *testing.T) {
	if _, ok := NewString("a").Compare(NewBool(true)); ok {
		t.Fatalf("expected incomparable across string/boolean")
	}
}

func TestArithmetic(t *testing.T) {
	sum, err := NewInt(2).Add(NewInt(3))
	if err != nil {
		t.Fatal(err)
	}
	if i, _ := sum.AsInt(); i != 5 {
		t.Fatalf("got %v", sum)
	}

	quot, err := NewInt(7).Div(NewInt(2))
	if err != nil {
		t.Fatal(err)
	}
	if f, _ := quot.AsFloat(); f != 3.5 {
		t.Fatalf("expected 3.5, got %v", quot)
	}

	fd, err := NewInt(-7).FloorDiv(NewInt(2))
	if err != nil {
		t.Fatal(err)
	}
	if i, _ := fd.AsInt(); i != -4 {
		t.Fatalf("expected floor(-3.5) = -4, got %v", fd)
	}

	concat, err := NewString("foo").Add(NewString("bar"))
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := concat.AsString(); s != "foobar" {
		t.Fatalf("got %v", concat)
	}
}

func TestArithmeticTypeMismatch(t *testing.T) {
	_, err := NewString("a").Add(NewInt(1))
	if !errors.Is(err, mdqlerr.ErrType) {
		t.Fatalf("expected ErrType, got %v", err)
	}
}

func TestDivisionByZero(t *testing.T) {
	_, err := NewInt(1).Div(NewInt(0))
	if !errors.Is(err, mdqlerr.ErrType) {
		t.Fatalf("expected ErrType for division by zero, got %v", err)
	}
}

func TestContains(t *testing.T) {
	list := NewList(NewInt(1), NewInt(2), NewInt(3))
	if !list.Contains(NewInt(2)) {
		t.Fatalf("expected list to contain 2")
	}
	if list.Contains(NewInt(9)) {
		t.Fatalf("expected list not to contain 9")
	}
	if !NewString("hello world").Contains(NewString("lo wo")) {
		t.Fatalf("expected substring match")
	}
}

func TestStringRendering(t *testing.T) {
	if NewNull().String() != "" {
		t.Fatalf("null should render empty")
	}
	if NewInt(42).String() != "42" {
		t.Fatalf("got %q", NewInt(42).String())
	}
	if NewBool(true).String() != "true" {
		t.Fatalf("got %q", NewBool(true).String())
	}

	h := NewHash()
	h.Insert("a", NewInt(1))
	if got, want := h.String(), `{"a":1}`; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestMarshalJSONList(t *testing.T) {
	l := NewList(NewString("a"), NewNull(), NewInt(3))
	b, err := l.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), `["a",null,3]`; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestGobRoundTrip(t *testing.T) {
	h := NewHash()
	h.Insert("name", NewString("frodo"))
	h.Insert("age", NewInt(33))
	h.Insert("tags", NewList(NewString("ring-bearer"), NewNull()))

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(h); err != nil {
		t.Fatal(err)
	}
	var out Value
	if err := gob.NewDecoder(&buf).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if !h.Equal(out) {
		t.Fatalf("round-trip mismatch: got %#v want %#v", out, h)
	}
}

func TestUnmarshalJSON(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`{"a":1,"b":[1,2.5,"x",null],"c":true}`), &v); err != nil {
		t.Fatal(err)
	}
	h, ok := v.AsHash()
	if !ok {
		t.Fatalf("expected hash, got %#v", v)
	}
	if i, _ := h["a"].AsInt(); i != 1 {
		t.Fatalf("got %#v", h["a"])
	}
	list, ok := h["b"].AsList()
	if !ok || len(list) != 4 {
		t.Fatalf("got %#v", h["b"])
	}
	if f, _ := list[1].AsFloat(); f != 2.5 {
		t.Fatalf("got %#v", list[1])
	}
	if !list[3].IsNull() {
		t.Fatalf("expected null, got %#v", list[3])
	}
}

func TestFromPrimitives(t *testing.T) {
	v := From(map[string]any{
		"name": "frodo",
		"age":  int(33),
		"tags": []any{"ring-bearer", "hobbit"},
	})
	h, ok := v.AsHash()
	if !ok {
		t.Fatalf("expected hash")
	}
	if s, _ := h["name"].AsString(); s != "frodo" {
		t.Fatalf("got %#v", h["name"])
	}
	if i, _ := h["age"].AsInt(); i != 33 {
		t.Fatalf("got %#v", h["age"])
	}
	tags, ok := h["tags"].AsList()
	if !ok || len(tags) != 2 {
		t.Fatalf("got %#v", h["tags"])
	}
}

func TestCloneDoesNotAliasBackingMap(t *testing.T) {
	orig := NewHash()
	orig.Insert("name", NewString("frodo"))

	clone := orig.Clone()
	clone.Insert("name", NewString("sam"))
	clone.Insert("new", NewBool(true))

	origName, _ := orig.NestedGet("name").AsString()
	if origName != "frodo" {
		t.Fatalf("mutating the clone changed the original: got %q", origName)
	}
	if !orig.NestedGet("new").IsNull() {
		t.Fatalf("mutating the clone added a key visible on the original")
	}
}
