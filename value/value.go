// Package value implements Pod, the tagged-variant value model used
// throughout mdql for dynamically typed data: front-matter fields, query
// literals, and the records produced by the ingester. The tree is acyclic
// by construction — a Hash holds Values, never a reference back to itself.
package value

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mdql/mdql/mdqlerr"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	Null Kind = iota
	StringKind
	IntegerKind
	FloatKind
	BooleanKind
	ListKind
	HashKind
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case StringKind:
		return "string"
	case IntegerKind:
		return "integer"
	case FloatKind:
		return "float"
	case BooleanKind:
		return "boolean"
	case ListKind:
		return "list"
	case HashKind:
		return "hash"
	default:
		return "unknown"
	}
}

// Value is a tagged union over null/string/int64/float64/bool/list/hash.
type Value struct {
	kind Kind
	str  string
	i    int64
	f    float64
	b    bool
	list []Value
	hash map[string]Value
}

// NewNull returns the null Value.
func NewNull() Value { return Value{kind: Null} }

// NewString wraps a string.
func NewString(s string) Value { return Value{kind: StringKind, str: s} }

// NewInt wraps a signed 64-bit integer.
func NewInt(i int64) Value { return Value{kind: IntegerKind, i: i} }

// NewFloat wraps a 64-bit float.
func NewFloat(f float64) Value { return Value{kind: FloatKind, f: f} }

// NewBool wraps a boolean.
func NewBool(b bool) Value { return Value{kind: BooleanKind, b: b} }

// NewList wraps a list, copying items into a new backing slice; nested
// lists and hashes inside items are shared, not deep-copied.
func NewList(items ...Value) Value {
	l := make([]Value, len(items))
	copy(l, items)
	return Value{kind: ListKind, list: l}
}

// NewHash returns an empty hash.
func NewHash() Value {
	return Value{kind: HashKind, hash: make(map[string]Value)}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null variant.
func (v Value) IsNull() bool { return v.kind == Null }

// AsString returns the string payload, if v is a string.
func (v Value) AsString() (string, bool) {
	if v.kind != StringKind {
		return "", false
	}
	return v.str, true
}

// AsInt returns the integer payload, if v is an integer.
func (v Value) AsInt() (int64, bool) {
	if v.kind != IntegerKind {
		return 0, false
	}
	return v.i, true
}

// AsFloat returns the value as a float64, coercing from Integer.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case FloatKind:
		return v.f, true
	case IntegerKind:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// AsBool returns the boolean payload, if v is a boolean.
func (v Value) AsBool() (bool, bool) {
	if v.kind != BooleanKind {
		return false, false
	}
	return v.b, true
}

// AsList returns the list payload, if v is a list.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != ListKind {
		return nil, false
	}
	return v.list, true
}

// AsHash returns the hash payload, if v is a hash.
func (v Value) AsHash() (map[string]Value, bool) {
	if v.kind != HashKind {
		return nil, false
	}
	return v.hash, true
}

// IsNumeric reports whether v holds an Integer or a Float.
func (v Value) IsNumeric() bool {
	return v.kind == IntegerKind || v.kind == FloatKind
}

// NestedGet traverses a dot-separated path through successive hashes.
// Any non-hash step or missing key yields Null, never an error.
func (v Value) NestedGet(path string) Value {
	current := v
	if path == "" {
		return current
	}
	for _, key := range strings.Split(path, ".") {
		h, ok := current.AsHash()
		if !ok {
			return NewNull()
		}
		next, ok := h[key]
		if !ok {
			return NewNull()
		}
		current = next
	}
	return current
}

// Insert sets key on a hash Value. It fails if v is not a hash.
func (v *Value) Insert(key string, val Value) error {
	if v.kind != HashKind {
		return fmt.Errorf("%w: Insert called on a %s, not a hash", mdqlerr.ErrType, v.kind)
	}
	if v.hash == nil {
		v.hash = make(map[string]Value)
	}
	v.hash[key] = val
	return nil
}

// Push appends to a list Value. It fails if v is not a list.
func (v *Value) Push(val Value) error {
	if v.kind != ListKind {
		return fmt.Errorf("%w: Push called on a %s, not a list", mdqlerr.ErrType, v.kind)
	}
	v.list = append(v.list, val)
	return nil
}

// Equal reports structural equality. Values of different variants are
// never equal, so Integer 1 and Float 1 are not Equal.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case Null:
		return true
	case StringKind:
		return v.str == other.str
	case IntegerKind:
		return v.i == other.i
	case FloatKind:
		return v.f == other.f
	case BooleanKind:
		return v.b == other.b
	case ListKind:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case HashKind:
		if len(v.hash) != len(other.hash) {
			return false
		}
		for k, val := range v.hash {
			ov, ok := other.hash[k]
			if !ok || !val.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// Compare orders v against other within the same scalar variant, with
// Integer and Float compared numerically against each other. ok is false
// for any other cross-variant pair and for non-scalar pairs (the caller
// decides how to treat "incomparable").
func (v Value) Compare(other Value) (cmp int, ok bool) {
	if v.kind == IntegerKind && other.kind == IntegerKind {
		return compareInt(v.i, other.i), true
	}
	if v.IsNumeric() && other.IsNumeric() {
		af, _ := v.AsFloat()
		bf, _ := other.AsFloat()
		return compareFloat(af, bf), true
	}
	if v.kind != other.kind {
		return 0, false
	}
	switch v.kind {
	case StringKind:
		return strings.Compare(v.str, other.str), true
	case BooleanKind:
		return compareBool(v.b, other.b), true
	default:
		return 0, false
	}
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	// false < true
	if a == b {
		return 0
	}
	if !a && b {
		return -1
	}
	return 1
}

// Add implements the binary `+` operator: numeric add, string concat, or
// list concat.
func (v Value) Add(other Value) (Value, error) {
	if v.IsNumeric() && other.IsNumeric() {
		return numericOp(v, other, func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b })
	}
	if v.kind == StringKind && other.kind == StringKind {
		return NewString(v.str + other.str), nil
	}
	if v.kind == ListKind && other.kind == ListKind {
		out := make([]Value, 0, len(v.list)+len(other.list))
		out = append(out, v.list...)
		out = append(out, other.list...)
		return Value{kind: ListKind, list: out}, nil
	}
	return NewNull(), typeErr("+", v, other)
}

// Sub implements the binary `-` operator: numeric subtract, or list
// set-difference preserving the left operand's order.
func (v Value) Sub(other Value) (Value, error) {
	if v.IsNumeric() && other.IsNumeric() {
		return numericOp(v, other, func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b })
	}
	if v.kind == ListKind && other.kind == ListKind {
		out := make([]Value, 0, len(v.list))
		for _, item := range v.list {
			if !other.Contains(item) {
				out = append(out, item)
			}
		}
		return Value{kind: ListKind, list: out}, nil
	}
	return NewNull(), typeErr("-", v, other)
}

// Mul implements the binary `*` operator: numeric only.
func (v Value) Mul(other Value) (Value, error) {
	if v.IsNumeric() && other.IsNumeric() {
		return numericOp(v, other, func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b })
	}
	return NewNull(), typeErr("*", v, other)
}

// Div implements the binary `/` operator: numeric only, always float.
func (v Value) Div(other Value) (Value, error) {
	if !v.IsNumeric() || !other.IsNumeric() {
		return NewNull(), typeErr("/", v, other)
	}
	af, _ := v.AsFloat()
	bf, _ := other.AsFloat()
	if bf == 0 {
		return NewNull(), fmt.Errorf("%w: division by zero", mdqlerr.ErrType)
	}
	return NewFloat(af / bf), nil
}

// FloorDiv implements the binary `//` operator: numeric only.
func (v Value) FloorDiv(other Value) (Value, error) {
	if !v.IsNumeric() || !other.IsNumeric() {
		return NewNull(), typeErr("//", v, other)
	}
	if v.kind == IntegerKind && other.kind == IntegerKind {
		if other.i == 0 {
			return NewNull(), fmt.Errorf("%w: division by zero", mdqlerr.ErrType)
		}
		q := v.i / other.i
		if (v.i%other.i != 0) && ((v.i < 0) != (other.i < 0)) {
			q--
		}
		return NewInt(q), nil
	}
	af, _ := v.AsFloat()
	bf, _ := other.AsFloat()
	if bf == 0 {
		return NewNull(), fmt.Errorf("%w: division by zero", mdqlerr.ErrType)
	}
	return NewFloat(math.Floor(af / bf)), nil
}

// Pow implements the binary `**` operator: numeric only.
func (v Value) Pow(other Value) (Value, error) {
	if !v.IsNumeric() || !other.IsNumeric() {
		return NewNull(), typeErr("**", v, other)
	}
	af, _ := v.AsFloat()
	bf, _ := other.AsFloat()
	result := math.Pow(af, bf)
	if v.kind == IntegerKind && other.kind == IntegerKind && other.i >= 0 {
		return NewInt(int64(result)), nil
	}
	return NewFloat(result), nil
}

func numericOp(a, b Value, intOp func(int64, int64) int64, floatOp func(float64, float64) float64) (Value, error) {
	if a.kind == IntegerKind && b.kind == IntegerKind {
		return NewInt(intOp(a.i, b.i)), nil
	}
	af, _ := a.AsFloat()
	bf, _ := b.AsFloat()
	return NewFloat(floatOp(af, bf)), nil
}

func typeErr(op string, a, b Value) error {
	return fmt.Errorf("%w: operator %s not defined for %s and %s", mdqlerr.ErrType, op, a.kind, b.kind)
}

// Clone returns a deep copy of v, so callers can mutate the result (via
// Insert/Push) without aliasing the receiver's backing list/map.
func (v Value) Clone() Value {
	switch v.kind {
	case ListKind:
		out := make([]Value, len(v.list))
		for i, e := range v.list {
			out[i] = e.Clone()
		}
		return Value{kind: ListKind, list: out}
	case HashKind:
		out := make(map[string]Value, len(v.hash))
		for k, e := range v.hash {
			out[k] = e.Clone()
		}
		return Value{kind: HashKind, hash: out}
	default:
		return v
	}
}

// Contains holds when v is a list containing x by equality, or a string
// containing x as a substring.
func (v Value) Contains(x Value) bool {
	switch v.kind {
	case ListKind:
		for _, item := range v.list {
			if item.Equal(x) {
				return true
			}
		}
		return false
	case StringKind:
		sub, ok := x.AsString()
		if !ok {
			return false
		}
		return strings.Contains(v.str, sub)
	default:
		return false
	}
}

// String renders scalars plainly and composites as JSON.
func (v Value) String() string {
	switch v.kind {
	case Null:
		return ""
	case StringKind:
		return v.str
	case IntegerKind:
		return strconv.FormatInt(v.i, 10)
	case FloatKind:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case BooleanKind:
		return strconv.FormatBool(v.b)
	default:
		b, err := v.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// MarshalJSON renders v as untagged JSON: strings bare, hashes as objects,
// lists as arrays.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case Null:
		return []byte("null"), nil
	case StringKind:
		return json.Marshal(v.str)
	case IntegerKind:
		return json.Marshal(v.i)
	case FloatKind:
		return json.Marshal(v.f)
	case BooleanKind:
		return json.Marshal(v.b)
	case ListKind:
		return json.Marshal(v.list)
	case HashKind:
		keys := make([]string, 0, len(v.hash))
		for k := range v.hash {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			b.Write(kb)
			b.WriteByte(':')
			vb, err := v.hash[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			b.Write(vb)
		}
		b.WriteByte('}')
		return []byte(b.String()), nil
	default:
		return []byte("null"), nil
	}
}

// From converts a primitive Go value (or []any/map[string]any from a YAML
// decode) into a Value tree.
func From(x any) Value {
	switch t := x.(type) {
	case nil:
		return NewNull()
	case Value:
		return t
	case string:
		return NewString(t)
	case int:
		return NewInt(int64(t))
	case int64:
		return NewInt(t)
	case float64:
		return NewFloat(t)
	case bool:
		return NewBool(t)
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = From(e)
		}
		return Value{kind: ListKind, list: items}
	case []string:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = NewString(e)
		}
		return Value{kind: ListKind, list: items}
	case map[string]any:
		h := make(map[string]Value, len(t))
		for k, e := range t {
			h[k] = From(e)
		}
		return Value{kind: HashKind, hash: h}
	case map[any]any:
		h := make(map[string]Value, len(t))
		for k, e := range t {
			h[fmt.Sprint(k)] = From(e)
		}
		return Value{kind: HashKind, hash: h}
	default:
		return NewString(fmt.Sprint(t))
	}
}

// UnmarshalJSON decodes a JSON value into its natural Kind: object→Hash,
// array→List, string→String, bool→Boolean, number→Integer (when it has no
// fractional part) or Float, null→Null.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = fromJSONAny(raw)
	return nil
}

func fromJSONAny(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return NewNull()
	case string:
		return NewString(t)
	case bool:
		return NewBool(t)
	case float64:
		if t == float64(int64(t)) {
			return NewInt(int64(t))
		}
		return NewFloat(t)
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = fromJSONAny(e)
		}
		return Value{kind: ListKind, list: items}
	case map[string]any:
		h := make(map[string]Value, len(t))
		for k, e := range t {
			h[k] = fromJSONAny(e)
		}
		return Value{kind: HashKind, hash: h}
	default:
		return NewNull()
	}
}

// wireValue is the exported, gob-friendly mirror of Value used only for
// on-disk cache persistence; Value itself keeps its fields unexported so
// callers can't build an invalid variant by hand.
type wireValue struct {
	Kind Kind
	Str  string
	I    int64
	F    float64
	B    bool
	List []wireValue
	Hash map[string]wireValue
}

func (v Value) toWire() wireValue {
	w := wireValue{Kind: v.kind, Str: v.str, I: v.i, F: v.f, B: v.b}
	if v.list != nil {
		w.List = make([]wireValue, len(v.list))
		for i, e := range v.list {
			w.List[i] = e.toWire()
		}
	}
	if v.hash != nil {
		w.Hash = make(map[string]wireValue, len(v.hash))
		for k, e := range v.hash {
			w.Hash[k] = e.toWire()
		}
	}
	return w
}

func (w wireValue) toValue() Value {
	v := Value{kind: w.Kind, str: w.Str, i: w.I, f: w.F, b: w.B}
	if w.List != nil {
		v.list = make([]Value, len(w.List))
		for i, e := range w.List {
			v.list[i] = e.toValue()
		}
	}
	if w.Hash != nil {
		v.hash = make(map[string]Value, len(w.Hash))
		for k, e := range w.Hash {
			v.hash[k] = e.toValue()
		}
	}
	return v
}

// GobEncode implements gob.GobEncoder so Value can sit directly in the
// on-disk ingest cache without exposing its internals to callers.
func (v Value) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v.toWire()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder, the inverse of GobEncode.
func (v *Value) GobDecode(data []byte) error {
	var w wireValue
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	*v = w.toValue()
	return nil
}
