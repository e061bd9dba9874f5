package database

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Kind enumerates the value types a row cell can hold.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindNumeric
	KindBool
	KindTimestamp
	KindDate
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindNumeric:
		return "numeric"
	case KindBool:
		return "boolean"
	case KindTimestamp:
		return "timestamp"
	case KindDate:
		return "date"
	default:
		return "text"
	}
}

// TimestampLayout is the textual form of timestamp values. PostgreSQL accepts it back as input.
const TimestampLayout = "2006-01-02 15:04:05.999999Z07:00"

// DateLayout is the textual form of date values.
const DateLayout = "2006-01-02"

// Value is a single typed cell. Only the field matching Kind is meaningful.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
	// Bits is the float precision, 32 or 64. Zero means 64.
	Bits int
	Bool bool
	Time time.Time
}

// Null returns the null value.
func Null() Value { return Value{Kind: KindNull} }

// StringValue returns a string value.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// IntValue returns an integer value.
func IntValue(i int64) Value { return Value{Kind: KindInt, Int: i} }

// FloatValue returns a float value.
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// Float32Value returns a single-precision float value. It renders with the
// shortest decimal form that round-trips at 32 bits.
func Float32Value(f float32) Value { return Value{Kind: KindFloat, Float: float64(f), Bits: 32} }

// NumericValue returns an arbitrary-precision decimal kept as its exact text.
func NumericValue(s string) Value { return Value{Kind: KindNumeric, Str: s} }

// BoolValue returns a boolean value.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// TimestampValue returns a timestamp value.
func TimestampValue(t time.Time) Value { return Value{Kind: KindTimestamp, Time: t} }

// DateValue returns a calendar date value.
func DateValue(t time.Time) Value { return Value{Kind: KindDate, Time: t} }

// TextValue returns the raw-text fallback for types without a dedicated kind.
func TextValue(s string) Value { return Value{Kind: KindText, Str: s} }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// String renders v in its default textual form. Null renders as the empty string.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return formatFloat(v.Float, v.Bits)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindTimestamp:
		return v.Time.Format(TimestampLayout)
	case KindDate:
		return v.Time.Format(DateLayout)
	default:
		return v.Str
	}
}

// MarshalJSON encodes null, numbers and booleans natively and everything else as a string.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return []byte("null"), nil
	case KindInt:
		return []byte(strconv.FormatInt(v.Int, 10)), nil
	case KindFloat:
		// NaN and infinities have no JSON number form
		if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
			return json.Marshal(v.String())
		}
		if v.Bits == 32 {
			return json.Marshal(float32(v.Float))
		}
		return json.Marshal(v.Float)
	case KindBool:
		return []byte(strconv.FormatBool(v.Bool)), nil
	default:
		return json.Marshal(v.String())
	}
}

// formatFloat uses the PostgreSQL spellings for the special values.
func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if bits != 32 {
		bits = 64
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}
