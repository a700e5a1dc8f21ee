package extract

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value Value
}

// Value is a decoded JSON document. Unlike map[string]any it keeps the
// order of object members, which decides the order of extracted URLs.
// Members follow JavaScript property order: integer-like keys first in
// ascending order, then the other keys in document order. Keys are unique;
// a repeated key keeps its first position and its last value.
type Value struct {
	Kind    Kind
	Bool    bool
	Num     json.Number
	Str     string
	Items   []Value
	Members []Member
}

// Str returns a String value.
func Str(s string) Value { return Value{Kind: String, Str: s} }

// Get returns the member named key of an Object.
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != Object {
		return Value{}, false
	}
	for _, m := range v.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Parse decodes raw as JSON. Text that is not a single JSON document is
// returned as a String holding the raw text.
func Parse(raw []byte) Value {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return Str(string(raw))
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Str(string(raw))
	}
	return v
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '[':
			v := Value{Kind: Array, Items: []Value{}}
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				v.Items = append(v.Items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return v, nil
		case '{':
			v := Value{Kind: Object, Members: []Member{}}
			seen := map[string]int{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("unexpected object key %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				if i, dup := seen[key]; dup {
					v.Members[i].Value = val
					continue
				}
				seen[key] = len(v.Members)
				v.Members = append(v.Members, Member{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			slices.SortStableFunc(v.Members, compareKeys)
			return v, nil
		}
		return Value{}, fmt.Errorf("unexpected delimiter %v", t)
	case string:
		return Str(t), nil
	case json.Number:
		return Value{Kind: Number, Num: t}, nil
	case bool:
		return Value{Kind: Bool, Bool: t}, nil
	case nil:
		return Value{Kind: Null}, nil
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}

// compareKeys orders integer-like keys before the rest, numerically.
func compareKeys(a, b Member) int {
	ai, aIdx := arrayIndex(a.Key)
	bi, bIdx := arrayIndex(b.Key)
	switch {
	case aIdx && bIdx:
		return cmp.Compare(ai, bi)
	case aIdx:
		return -1
	case bIdx:
		return 1
	}
	return 0
}

// arrayIndex reports whether key is the canonical form of an integer in
// [0, 2^32-2], the range JavaScript treats as array indices.
func arrayIndex(key string) (uint64, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil || n == math.MaxUint32 {
		return 0, false
	}
	return n, true
}
