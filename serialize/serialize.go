// Package serialize renders projected query results as TSV or JSON, the
// output boundary cmd/mdql prints from.
package serialize

import (
	"strings"

	"github.com/mdql/mdql/value"
)

// ToJSON renders rows as a JSON array of objects. Each object's keys
// preserve the selected dotted paths verbatim; a field missing from a
// given row is omitted from that row's object rather than null-filled.
func ToJSON(fields []string, rows []value.Value) ([]byte, error) {
	var b strings.Builder
	b.WriteByte('[')
	for i, row := range rows {
		if i > 0 {
			b.WriteByte(',')
		}
		obj, err := rowToJSONObject(fields, row)
		if err != nil {
			return nil, err
		}
		b.WriteString(obj)
	}
	b.WriteByte(']')
	return []byte(b.String()), nil
}

func rowToJSONObject(fields []string, row value.Value) (string, error) {
	var b strings.Builder
	b.WriteByte('{')
	wrote := false
	for _, field := range fields {
		v := row.NestedGet(field)
		if v.IsNull() && !fieldPresent(row, field) {
			continue
		}
		if wrote {
			b.WriteByte(',')
		}
		wrote = true
		keyBytes, err := value.NewString(field).MarshalJSON()
		if err != nil {
			return "", err
		}
		b.Write(keyBytes)
		b.WriteByte(':')
		valBytes, err := v.MarshalJSON()
		if err != nil {
			return "", err
		}
		b.Write(valBytes)
	}
	b.WriteByte('}')
	return b.String(), nil
}

// fieldPresent distinguishes a field that resolves to an explicit Null
// value from one that is simply absent from row.
func fieldPresent(row value.Value, field string) bool {
	current := row
	parts := strings.Split(field, ".")
	for i, key := range parts {
		h, ok := current.AsHash()
		if !ok {
			return false
		}
		v, ok := h[key]
		if !ok {
			return false
		}
		if i == len(parts)-1 {
			return true
		}
		current = v
	}
	return true
}

// ToTSV renders rows as a header row (dots replaced by underscores) plus
// one data row per record, fields in select order, empty string for
// missing values, composites rendered as their JSON form.
func ToTSV(fields []string, rows []value.Value) string {
	if len(rows) == 0 {
		return ""
	}

	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('\t')
		}
		b.WriteString(strings.ReplaceAll(f, ".", "_"))
	}
	b.WriteByte('\n')

	for _, row := range rows {
		for i, f := range fields {
			if i > 0 {
				b.WriteByte('\t')
			}
			v := row.NestedGet(f)
			if v.IsNull() && !fieldPresent(row, f) {
				continue
			}
			b.WriteString(v.String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
