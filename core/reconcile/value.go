package reconcile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"reconciler/core/utils"
)

// ValueKind identifies which variant a Value holds.
type ValueKind int

const (
	// ValueAbsent is the zero kind; a missing field.
	ValueAbsent ValueKind = iota
	// ValueString holds free text (ids, descriptions, ISO dates as sent by the provider).
	ValueString
	// ValueNumber holds a float64.
	ValueNumber
	// ValueDate holds a parsed instant.
	ValueDate
)

// String returns the lowercase name of the kind.
func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	case ValueNumber:
		return "number"
	case ValueDate:
		return "date"
	default:
		return "absent"
	}
}

// dateLayouts are tried in order when a string value is read as a date.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// Value is a single scalar field of a Record.
// The zero Value is absent. Accessors never panic and never return NaN.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	at   time.Time
}

// String creates a text value.
func String(s string) Value {
	return Value{kind: ValueString, str: s}
}

// Number creates a numeric value.
func Number(f float64) Value {
	return Value{kind: ValueNumber, num: f}
}

// Date creates a date value.
func Date(t time.Time) Value {
	return Value{kind: ValueDate, at: t}
}

// ValueOf builds a Value from an arbitrary decoded scalar.
// Strings stay strings, numeric types become numbers, time.Time becomes a date
// and nil becomes absent. Anything else is kept as its text form.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return Value{}
	case Value:
		return x
	case string:
		return String(x)
	case []byte:
		return String(string(x))
	case time.Time:
		return Date(x)
	case bool:
		return String(utils.ToString(x))
	}
	if f, ok := utils.ToFloat(v); ok {
		return Number(f)
	}
	return String(utils.ToString(v))
}

// Kind returns the variant held by the value.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsAbsent reports whether the value represents a missing field.
func (v Value) IsAbsent() bool {
	return v.kind == ValueAbsent
}

// Text returns the string form used by fuzzy comparison.
func (v Value) Text() string {
	switch v.kind {
	case ValueString:
		return v.str
	case ValueNumber:
		return utils.ToString(v.num)
	case ValueDate:
		return v.at.Format(time.RFC3339Nano)
	default:
		return ""
	}
}

// Float reads the value as a finite number. Numeric strings are parsed.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case ValueNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return 0, false
		}
		return v.num, true
	case ValueString:
		return utils.ToFloat(v.str)
	default:
		return 0, false
	}
}

// Time reads the value as an instant. Strings are parsed against the
// supported ISO-like layouts and numbers are epoch milliseconds.
func (v Value) Time() (time.Time, bool) {
	switch v.kind {
	case ValueDate:
		return v.at, true
	case ValueString:
		s := strings.TrimSpace(v.str)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	case ValueNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(v.num)).UTC(), true
	default:
		return time.Time{}, false
	}
}

// Equal reports strict equality: same kind and same payload, no coercion.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case ValueString:
		return v.str == other.str
	case ValueNumber:
		return v.num == other.num
	case ValueDate:
		return v.at.Equal(other.at)
	default:
		return true
	}
}

// GoString implements fmt.GoStringer for readable test failures.
func (v Value) GoString() string {
	return fmt.Sprintf("%s(%q)", v.kind, v.Text())
}

// MarshalJSON renders strings and dates as JSON strings and numbers as JSON numbers.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueString:
		return json.Marshal(v.str)
	case ValueNumber:
		if f, ok := v.Float(); ok {
			return json.Marshal(f)
		}
		return []byte("null"), nil
	case ValueDate:
		return json.Marshal(v.at.Format(time.RFC3339Nano))
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a JSON scalar. Objects and arrays keep their raw text.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch raw.(type) {
	case map[string]any, []any:
		*v = String(string(data))
	default:
		*v = ValueOf(raw)
	}
	return nil
}

// Record is one flat, already-normalized transaction record.
type Record map[string]Value

// Get returns the value stored under field, or an absent Value.
func (r Record) Get(field string) Value {
	if r == nil {
		return Value{}
	}
	return r[field]
}

// UnmarshalJSON decodes a flat JSON object. Fields holding null are dropped
// so they read as missing.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]Value
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Record, len(raw))
	for k, v := range raw {
		if v.IsAbsent() {
			continue
		}
		out[k] = v
	}
	*r = out
	return nil
}

// NewRecord builds a Record from loosely typed fields (decoded JSON, rows, test fixtures).
func NewRecord(fields map[string]any) Record {
	rec := make(Record, len(fields))
	for k, raw := range fields {
		v := ValueOf(raw)
		if v.IsAbsent() {
			continue
		}
		rec[k] = v
	}
	return rec
}
