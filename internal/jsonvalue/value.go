// Package jsonvalue implements a tagged-variant JSON value with ordered objects.
//
// Values decoded from upstream payloads keep their member order and their
// exact number text, so a payload can be walked, rewritten in place and sent
// back out without reshaping anything the caller did not touch.
package jsonvalue

import (
	"encoding/json"
	"fmt"
)

// Kind identifies which variant a Value holds
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// String returns the JSON type name of the kind
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Member is a single key/value pair of an object
type Member struct {
	Key   string
	Value *Value
}

// Value is a JSON value. The zero Value is null.
type Value struct {
	kind    Kind
	boolean bool
	number  json.Number
	str     string
	items   []*Value
	members []Member
	index   map[string]int
}

// NewNull returns a null value
func NewNull() *Value {
	return &Value{kind: Null}
}

// NewBool returns a boolean value
func NewBool(b bool) *Value {
	return &Value{kind: Bool, boolean: b}
}

// NewNumber returns a number value holding the given literal
func NewNumber(n json.Number) *Value {
	return &Value{kind: Number, number: n}
}

// NewInt returns a number value for an integer
func NewInt(n int64) *Value {
	return NewNumber(json.Number(fmt.Sprintf("%d", n)))
}

// NewString returns a string value
func NewString(s string) *Value {
	return &Value{kind: String, str: s}
}

// NewArray returns an array value holding items
func NewArray(items ...*Value) *Value {
	return &Value{kind: Array, items: items}
}

// NewObject returns an object value. Later members replace earlier ones with the same key.
func NewObject(members ...Member) *Value {
	obj := &Value{kind: Object}
	for _, m := range members {
		obj.Set(m.Key, m.Value)
	}
	return obj
}

// Kind returns the variant held by v. A nil Value reports Null.
func (v *Value) Kind() Kind {
	if v == nil {
		return Null
	}
	return v.kind
}

// IsContainer reports whether v is an object or an array
func (v *Value) IsContainer() bool {
	k := v.Kind()
	return k == Object || k == Array
}

// AsString returns the string held by v
func (v *Value) AsString() (string, bool) {
	if v.Kind() != String {
		return "", false
	}
	return v.str, true
}

// AsNumber returns the number literal held by v
func (v *Value) AsNumber() (json.Number, bool) {
	if v.Kind() != Number {
		return "", false
	}
	return v.number, true
}

// SetString replaces v with a string value in place
func (v *Value) SetString(s string) {
	*v = Value{kind: String, str: s}
}

// Members returns the members of an object in document order, or nil for other kinds
func (v *Value) Members() []Member {
	if v.Kind() != Object {
		return nil
	}
	return v.members
}

// Len returns the number of elements or members, or 0 for scalars
func (v *Value) Len() int {
	switch v.Kind() {
	case Array:
		return len(v.items)
	case Object:
		return len(v.members)
	default:
		return 0
	}
}

// Get returns the member value stored under key
func (v *Value) Get(key string) (*Value, bool) {
	if v.Kind() != Object {
		return nil, false
	}
	i, ok := v.index[key]
	if !ok {
		return nil, false
	}
	return v.members[i].Value, true
}

// Index returns the i-th element of an array
func (v *Value) Index(i int) (*Value, bool) {
	if v.Kind() != Array || i < 0 || i >= len(v.items) {
		return nil, false
	}
	return v.items[i], true
}

// Set stores val under key, keeping the position of an existing member
func (v *Value) Set(key string, val *Value) {
	if v.Kind() != Object {
		return
	}
	if val == nil {
		val = NewNull()
	}
	if v.index == nil {
		v.index = make(map[string]int)
	}
	if i, ok := v.index[key]; ok {
		v.members[i].Value = val
		return
	}
	v.index[key] = len(v.members)
	v.members = append(v.members, Member{Key: key, Value: val})
}

// Lookup follows a path of object keys and array indexes (int) from v
func (v *Value) Lookup(path ...any) (*Value, bool) {
	cur := v
	for _, step := range path {
		var ok bool
		switch s := step.(type) {
		case string:
			cur, ok = cur.Get(s)
		case int:
			cur, ok = cur.Index(s)
		default:
			return nil, false
		}
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
