package types

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ValueKind tags the dynamic JSON type of a characteristic value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindNumber
	KindBool
	KindString
	// KindOther covers arrays and objects, which some plugins report (e.g. TLV8 blobs).
	KindOther
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return "other"
	}
}

// Value is a characteristic value: null, number, bool, string or other.
// The zero Value is null.
type Value struct {
	kind ValueKind
	num  float64
	b    bool
	str  string
	raw  json.RawMessage
}

// NumberValue, BoolValue and StringValue build typed values, mostly for tests.
func NumberValue(f float64) Value { return Value{kind: KindNumber, num: f} }
func BoolValue(b bool) Value      { return Value{kind: KindBool, b: b} }
func StringValue(s string) Value  { return Value{kind: KindString, str: s} }

// Kind returns the dynamic type of v.
func (v Value) Kind() ValueKind { return v.kind }

// Float coerces v to a gauge value. It never fails:
//
//	number -> the number
//	bool   -> 1 or 0
//	string -> strconv.ParseFloat of the trimmed string, 0 when not a finite number
//	null, arrays, objects -> 0
func (v Value) Float() float64 {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}

// String renders v for logs.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindString:
		return v.str
	case KindOther:
		return string(v.raw)
	default:
		return "null"
	}
}

// UnmarshalJSON implements json.Unmarshaler. Any syntactically valid JSON
// value is accepted.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*v = Value{}
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case 'n':
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case '[', '{':
		v.kind = KindOther
		v.raw = append(json.RawMessage(nil), data...)
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return err
		}
		*v = NumberValue(f)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindString:
		return json.Marshal(v.str)
	case KindOther:
		return v.raw, nil
	default:
		return []byte("null"), nil
	}
}
