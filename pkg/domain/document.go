package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// IDField is the name of the identifier field every stored document carries.
const IDField = "_id"

// Document represents a document in the database.
//
// Values inside a stored document are always one of the JSON variants
// reported by KindOf: nil, bool, float64, string, []interface{} or
// map[string]interface{}. Normalize converts caller input into that form.
type Document map[string]interface{}

// Kind tags the JSON variant held by a document value.
type Kind int

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// KindOf reports the variant of a normalized value.
func KindOf(v interface{}) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case float64:
		return KindNumber
	case string:
		return KindString
	case []interface{}:
		return KindArray
	case map[string]interface{}, Document:
		return KindObject
	default:
		return KindInvalid
	}
}

// ID returns the document identifier and whether one is present.
// A present identifier that is not a non-empty string yields ok == false.
func (d Document) ID() (string, bool) {
	id, ok := d[IDField].(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, inner := range val {
			out[k] = cloneValue(inner)
		}
		return out
	case Document:
		return map[string]interface{}(val.Clone())
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, inner := range val {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return v
	}
}

// NormalizeDocument validates a caller-supplied object and returns a deep,
// normalized copy of it. The identifier, when present, must be a non-empty
// string.
func NormalizeDocument(d map[string]interface{}) (Document, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: document must be a JSON object", ErrInvalidDocument)
	}
	out := make(Document, len(d))
	for k, v := range d {
		nv, err := Normalize(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = nv
	}
	if raw, present := out[IDField]; present {
		if id, ok := raw.(string); !ok || id == "" {
			return nil, fmt.Errorf("%w: %s must be a non-empty string", ErrInvalidDocument, IDField)
		}
	}
	return out, nil
}

// Normalize converts v into the JSON variant set. Go numeric types become
// float64; values of any other type are round-tripped through encoding/json.
func Normalize(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case nil, bool, string:
		return val, nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, fmt.Errorf("%w: %v is not a JSON number", ErrInvalidDocument, val)
		}
		return val, nil
	case float32:
		return Normalize(float64(val))
	case int:
		return float64(val), nil
	case int8:
		return float64(val), nil
	case int16:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case uint:
		return float64(val), nil
	case uint8:
		return float64(val), nil
	case uint16:
		return float64(val), nil
	case uint32:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		return Normalize(f)
	case Document:
		return Normalize(map[string]interface{}(val))
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, inner := range val {
			nv, err := Normalize(inner)
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, inner := range val {
			nv, err := Normalize(inner)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		var decoded interface{}
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		return Normalize(decoded)
	}
}
