package cassandra

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/gocql/gocql"

	"github.com/cassandra-go/cassandra/internal/mapping"
)

// Collection is a list, set or map value. Items are encoded as they are
// appended; all items of a list or set, and all keys and all values of a map,
// must share one type. Null items are rejected.
type Collection struct {
	kind  gocql.Type
	items []mapping.Value
}

func NewList(capacity int) *Collection {
	return newCollection(gocql.TypeList, capacity)
}

func NewSet(capacity int) *Collection {
	return newCollection(gocql.TypeSet, capacity)
}

// NewMap returns an empty map. Append alternates keys and values.
func NewMap(capacity int) *Collection {
	return newCollection(gocql.TypeMap, 2*capacity)
}

func newCollection(kind gocql.Type, capacity int) *Collection {
	if capacity < 0 {
		capacity = 0
	}
	return &Collection{kind: kind, items: make([]mapping.Value, 0, capacity)}
}

// Kind returns gocql.TypeList, gocql.TypeSet or gocql.TypeMap.
func (c *Collection) Kind() gocql.Type {
	return c.kind
}

// Len returns the number of elements, or of entries for a map.
func (c *Collection) Len() int {
	if c.kind == gocql.TypeMap {
		return len(c.items) / 2
	}
	return len(c.items)
}

// Append adds an item. For a map, items alternate between keys and values.
func (c *Collection) Append(v Value) error {
	if v == nil {
		v = Null()
	}
	enc, code := v.encode()
	if code != mapping.CodeOK {
		return codeError("append", code, ErrEncoding)
	}
	if enc.IsNull() {
		return codeError("append", mapping.CodeNullItem, ErrEncoding)
	}

	// Keys are compared with keys and values with values.
	stride := 1
	if c.kind == gocql.TypeMap {
		stride = 2
	}
	if prev := len(c.items) - stride; prev >= 0 && !mapping.SameType(c.items[prev].Type, enc.Type) {
		return codeError("append", mapping.CodeInvalidItemType, ErrEncoding)
	}
	c.items = append(c.items, enc)
	return nil
}

func (c *Collection) encode() (mapping.Value, mapping.Code) {
	if c == nil {
		return mapping.Null(), mapping.CodeOK
	}
	return mapping.EncodeCollection(c.kind, c.items)
}

// Tuple is a fixed-length sequence of independently typed items. Unset items
// are null.
type Tuple struct {
	items []mapping.Value
}

func NewTuple(n int) *Tuple {
	if n < 0 {
		n = 0
	}
	return &Tuple{items: make([]mapping.Value, n)}
}

func (t *Tuple) Len() int {
	return len(t.items)
}

// Set encodes v into position idx.
func (t *Tuple) Set(idx int, v Value) error {
	if idx < 0 || idx >= len(t.items) {
		return codeError("tuple set", mapping.CodeIndexOutOfBounds, ErrEncoding)
	}
	if v == nil {
		v = Null()
	}
	enc, code := v.encode()
	if code != mapping.CodeOK {
		return codeError("tuple set", code, ErrEncoding)
	}
	t.items[idx] = enc
	return nil
}

func (t *Tuple) encode() (mapping.Value, mapping.Code) {
	if t == nil {
		return mapping.Null(), mapping.CodeOK
	}
	return mapping.EncodeTuple(t.items)
}

// UserType is a value of a user-defined type. Unset fields are null.
type UserType struct {
	keyspace string
	name     string
	fields   []string
	items    []mapping.Value
}

// NewUserType returns a value of the type keyspace.name with the given fields
// in declaration order.
func NewUserType(keyspace, name string, fields ...string) (*UserType, error) {
	if !mapping.ValidText(keyspace) || !mapping.ValidText(name) {
		return nil, codeError("new user type", mapping.CodeInvalidText, ErrConstruction)
	}
	for i, f := range fields {
		if f == "" || !mapping.ValidText(f) {
			return nil, codeError("new user type", mapping.CodeInvalidText, ErrConstruction)
		}
		for _, prev := range fields[:i] {
			if strings.EqualFold(prev, f) {
				return nil, getError(ErrConstruction, fmt.Errorf("duplicate field %q", f))
			}
		}
	}
	return &UserType{
		keyspace: keyspace,
		name:     name,
		fields:   append([]string(nil), fields...),
		items:    make([]mapping.Value, len(fields)),
	}, nil
}

// Fields returns the field names in declaration order.
func (u *UserType) Fields() []string {
	return append([]string(nil), u.fields...)
}

// Set encodes v into the field at position idx.
func (u *UserType) Set(idx int, v Value) error {
	if idx < 0 || idx >= len(u.items) {
		return codeError("user type set", mapping.CodeIndexOutOfBounds, ErrEncoding)
	}
	if v == nil {
		v = Null()
	}
	enc, code := v.encode()
	if code != mapping.CodeOK {
		return codeError("user type set", code, ErrEncoding)
	}
	u.items[idx] = enc
	return nil
}

// SetByName encodes v into the field named name, compared case-insensitively.
func (u *UserType) SetByName(name string, v Value) error {
	for i, f := range u.fields {
		if strings.EqualFold(f, name) {
			return u.Set(i, v)
		}
	}
	return codeError("user type set", mapping.CodeNameDoesNotExist, ErrConstruction)
}

// SetStruct sets every field present in v, a struct or map. Struct fields
// are matched through their `cql` tag, falling back to the field name.
// Entries that match no field are ignored.
func (u *UserType) SetStruct(v any) error {
	fields := map[string]interface{}{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "cql",
		Result:  &fields,
	})
	if err != nil {
		return getError(ErrEncoding, err)
	}
	if err := dec.Decode(v); err != nil {
		return getError(ErrEncoding, err)
	}

	for i, f := range u.fields {
		raw, ok := lookupField(fields, f)
		if !ok {
			continue
		}
		val, err := toValue(raw)
		if err != nil {
			return err
		}
		if err := u.Set(i, val); err != nil {
			return err
		}
	}
	return nil
}

func lookupField(fields map[string]interface{}, name string) (interface{}, bool) {
	if v, ok := fields[name]; ok {
		return v, true
	}
	for k, v := range fields {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

func (u *UserType) encode() (mapping.Value, mapping.Code) {
	if u == nil {
		return mapping.Null(), mapping.CodeOK
	}
	return mapping.EncodeUserType(u.keyspace, u.name, u.fields, u.items)
}
