package cassandra

import (
	"net"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"github.com/cassandra-go/cassandra/internal/mapping"
)

// Value is a typed value that can be bound into a parameter slot. The set of
// implementations is closed: Null(), the scalar types in this file, UUID,
// TimeUUID, *Collection, *Tuple and *UserType.
//
// Each implementation maps to exactly one wire encoding. No numeric widening
// or narrowing takes place, so pick the type matching the column's declared
// width and signedness.
type Value interface {
	encode() (mapping.Value, mapping.Code)
}

type (
	// Bool binds a "boolean".
	Bool bool
	// Int8 binds a "tinyint".
	Int8 int8
	// Int16 binds a "smallint".
	Int16 int16
	// Int32 binds an "int".
	Int32 int32
	// Uint32 binds a "date" as its raw unsigned day count.
	Uint32 uint32
	// Int64 binds a "bigint", "counter", "timestamp" or "time".
	Int64 int64
	// Float32 binds a "float".
	Float32 float32
	// Float64 binds a "double".
	Float64 float64
	// Text binds an "ascii", "text" or "varchar".
	Text string
	// Bytes binds a "blob", "varint" or "custom" value.
	Bytes []byte
	// Inet binds an "inet". It must hold 4 or 16 bytes.
	Inet net.IP
)

type nullValue struct{}

// Null returns the null value.
func Null() Value {
	return nullValue{}
}

func (nullValue) encode() (mapping.Value, mapping.Code) { return mapping.Null(), mapping.CodeOK }
func (v Bool) encode() (mapping.Value, mapping.Code)    { return mapping.EncodeBool(bool(v)) }
func (v Int8) encode() (mapping.Value, mapping.Code)    { return mapping.EncodeInt8(int8(v)) }
func (v Int16) encode() (mapping.Value, mapping.Code)   { return mapping.EncodeInt16(int16(v)) }
func (v Int32) encode() (mapping.Value, mapping.Code)   { return mapping.EncodeInt32(int32(v)) }
func (v Uint32) encode() (mapping.Value, mapping.Code)  { return mapping.EncodeUint32(uint32(v)) }
func (v Int64) encode() (mapping.Value, mapping.Code)   { return mapping.EncodeInt64(int64(v)) }
func (v Float32) encode() (mapping.Value, mapping.Code) { return mapping.EncodeFloat32(float32(v)) }
func (v Float64) encode() (mapping.Value, mapping.Code) { return mapping.EncodeFloat64(float64(v)) }
func (v Text) encode() (mapping.Value, mapping.Code)    { return mapping.EncodeText(string(v)) }
func (v Bytes) encode() (mapping.Value, mapping.Code)   { return mapping.EncodeBytes(v) }
func (v Inet) encode() (mapping.Value, mapping.Code)    { return mapping.EncodeInet(net.IP(v)) }
func (u UUID) encode() (mapping.Value, mapping.Code)    { return mapping.EncodeUUID(u, false) }

func (u TimeUUID) encode() (mapping.Value, mapping.Code) {
	if !UUID(u).IsTimeBased() {
		return mapping.Value{}, mapping.CodeInvalidValue
	}
	return mapping.EncodeUUID(u, true)
}

// Bindable is the set of Go types with a direct Value counterpart.
type Bindable interface {
	bool | int8 | int16 | int32 | uint32 | int64 | float32 | float64 | string | []byte | UUID | TimeUUID | net.IP
}

func valueOf[T Bindable](v T) Value {
	switch v := any(v).(type) {
	case bool:
		return Bool(v)
	case int8:
		return Int8(v)
	case int16:
		return Int16(v)
	case int32:
		return Int32(v)
	case uint32:
		return Uint32(v)
	case int64:
		return Int64(v)
	case float32:
		return Float32(v)
	case float64:
		return Float64(v)
	case string:
		return Text(v)
	case []byte:
		return Bytes(v)
	case UUID:
		return v
	case TimeUUID:
		return v
	case net.IP:
		return Inet(v)
	}
	panic("unreachable")
}

// Bind binds v at position idx, choosing the Value type from T.
func Bind[T Bindable](s *Statement, idx int, v T) (*Statement, error) {
	return s.Bind(idx, valueOf(v))
}

// BindByName binds v to every slot named name, choosing the Value type from T.
func BindByName[T Bindable](s *Statement, name string, v T) (*Statement, error) {
	return s.BindByName(name, valueOf(v))
}

// toValue converts an arbitrary Go value. A plain int binds as Int64 and
// UUIDs from other packages bind as UUID.
func toValue(v any) (Value, error) {
	switch v := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v, nil
	case bool:
		return valueOf(v), nil
	case int8:
		return valueOf(v), nil
	case int16:
		return valueOf(v), nil
	case int32:
		return valueOf(v), nil
	case uint32:
		return valueOf(v), nil
	case int64:
		return valueOf(v), nil
	case int:
		return Int64(v), nil
	case float32:
		return valueOf(v), nil
	case float64:
		return valueOf(v), nil
	case string:
		return valueOf(v), nil
	case []byte:
		return valueOf(v), nil
	case net.IP:
		return valueOf(v), nil
	case uuid.UUID:
		return UUID(v), nil
	case gocql.UUID:
		return UUID(v), nil
	case [uuidLength]byte:
		return UUID(v), nil
	}
	return nil, unsupportedTypeError(v)
}
