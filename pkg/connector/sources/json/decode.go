package json

import (
	"fmt"
	"io"
	"strconv"

	gojson "github.com/goccy/go-json"
)

// object is a decoded JSON object that remembers key order.
type object struct {
	keys   []string
	values map[string]any
}

// decodeValue reads one complete value from dec. Objects become *object,
// arrays []any, numbers int64 when integral and float64 otherwise.
func decodeValue(dec *gojson.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return fromToken(dec, tok)
}

// nested reads a value inside an open object or array, where EOF is never a
// clean end of input.
func nested(dec *gojson.Decoder) (any, error) {
	v, err := decodeValue(dec)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return v, err
}

func closing(dec *gojson.Decoder) error {
	_, err := dec.Token()
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

func fromToken(dec *gojson.Decoder, tok gojson.Token) (any, error) {
	switch t := tok.(type) {
	case gojson.Delim:
		switch t {
		case '{':
			obj := &object{values: make(map[string]any)}
			for dec.More() {
				kt, err := dec.Token()
				if err == io.EOF {
					err = io.ErrUnexpectedEOF
				}
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", kt)
				}
				v, err := nested(dec)
				if err != nil {
					return nil, err
				}
				if _, dup := obj.values[key]; !dup {
					obj.keys = append(obj.keys, key)
				}
				obj.values[key] = v
			}
			if err := closing(dec); err != nil { // '}'
				return nil, err
			}
			return obj, nil
		case '[':
			arr := []any{}
			for dec.More() {
				v, err := nested(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, v)
			}
			if err := closing(dec); err != nil { // ']'
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case gojson.Number:
		return number(string(t))
	case float64:
		if t == float64(int64(t)) {
			return int64(t), nil
		}
		return t, nil
	case string, bool, nil:
		return t, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func number(s string) (any, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return f, nil
}

// plain converts a decoded value for storage in a table cell: ordered objects
// become map[string]any, recursively.
func plain(v any) any {
	switch t := v.(type) {
	case *object:
		m := make(map[string]any, len(t.keys))
		for _, k := range t.keys {
			m[k] = plain(t.values[k])
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = plain(el)
		}
		return out
	}
	return v
}
