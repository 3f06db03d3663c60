package cassandra

import (
	"database/sql/driver"
	"net"

	"github.com/gocql/gocql"

	"github.com/cassandra-go/cassandra/internal/mapping"
)

// BindAt binds v to the slots selected by addr. Binding a slot again replaces
// its value. A nil v binds null.
//
// The address is checked before v is encoded: an out-of-range index or an
// unknown name fails with ErrAddressing even if v is not encodable. Ad hoc
// statements have no names, so name addresses always fail on them.
func (s *Statement) BindAt(addr Address, v Value) (*Statement, error) {
	const op = "bind"
	if !s.handle.IsNull() {
		if code := s.checkAddress(addr); code != mapping.CodeOK {
			return s.apply(op, code, ErrConstruction)
		}
	}

	if v == nil {
		v = Null()
	}
	enc, code := v.encode()
	if code != mapping.CodeOK {
		return s.apply(op, code, ErrEncoding)
	}

	if idx, ok := addr.Index(); ok {
		return s.apply(op, mapping.Bind(s.handle, idx, enc), ErrConstruction)
	}
	name, _ := addr.Name()
	return s.apply(op, mapping.BindByName(s.handle, name, enc), ErrConstruction)
}

func (s *Statement) checkAddress(addr Address) mapping.Code {
	if idx, ok := addr.Index(); ok {
		if idx < 0 || idx >= s.ParameterCount() {
			return mapping.CodeIndexOutOfBounds
		}
		return mapping.CodeOK
	}
	name, _ := addr.Name()
	return mapping.LookupName(s.handle, name)
}

// Bind binds v at position idx.
func (s *Statement) Bind(idx int, v Value) (*Statement, error) {
	return s.BindAt(At(idx), v)
}

// BindByName binds v to every slot named name.
func (s *Statement) BindByName(name string, v Value) (*Statement, error) {
	return s.BindAt(Named(name), v)
}

// BindNamedValues binds database/sql style arguments: by Name when set,
// otherwise at Ordinal-1. Each argument is converted to the Value of the same
// width, so a Go int binds as a "bigint" (Int64); pass Int32(n) or int32(n)
// for an "int" column. UUIDs bind as "uuid"; pass a TimeUUID for "timeuuid".
func (s *Statement) BindNamedValues(args []driver.NamedValue) error {
	for _, arg := range args {
		v, err := toValue(arg.Value)
		if err != nil {
			return err
		}
		addr := At(arg.Ordinal - 1)
		if arg.Name != "" {
			addr = Named(arg.Name)
		}
		if _, err := s.BindAt(addr, v); err != nil {
			return err
		}
	}
	return nil
}

func (s *Statement) BindNull(idx int) (*Statement, error) {
	return s.Bind(idx, Null())
}

func (s *Statement) BindNullByName(name string) (*Statement, error) {
	return s.BindByName(name, Null())
}

func (s *Statement) BindBool(idx int, v bool) (*Statement, error) {
	return s.Bind(idx, Bool(v))
}

func (s *Statement) BindBoolByName(name string, v bool) (*Statement, error) {
	return s.BindByName(name, Bool(v))
}

func (s *Statement) BindInt8(idx int, v int8) (*Statement, error) {
	return s.Bind(idx, Int8(v))
}

func (s *Statement) BindInt8ByName(name string, v int8) (*Statement, error) {
	return s.BindByName(name, Int8(v))
}

func (s *Statement) BindInt16(idx int, v int16) (*Statement, error) {
	return s.Bind(idx, Int16(v))
}

func (s *Statement) BindInt16ByName(name string, v int16) (*Statement, error) {
	return s.BindByName(name, Int16(v))
}

func (s *Statement) BindInt32(idx int, v int32) (*Statement, error) {
	return s.Bind(idx, Int32(v))
}

func (s *Statement) BindInt32ByName(name string, v int32) (*Statement, error) {
	return s.BindByName(name, Int32(v))
}

// BindUint32 binds a "date" given as its raw day count.
func (s *Statement) BindUint32(idx int, v uint32) (*Statement, error) {
	return s.Bind(idx, Uint32(v))
}

func (s *Statement) BindUint32ByName(name string, v uint32) (*Statement, error) {
	return s.BindByName(name, Uint32(v))
}

func (s *Statement) BindInt64(idx int, v int64) (*Statement, error) {
	return s.Bind(idx, Int64(v))
}

func (s *Statement) BindInt64ByName(name string, v int64) (*Statement, error) {
	return s.BindByName(name, Int64(v))
}

func (s *Statement) BindFloat32(idx int, v float32) (*Statement, error) {
	return s.Bind(idx, Float32(v))
}

func (s *Statement) BindFloat32ByName(name string, v float32) (*Statement, error) {
	return s.BindByName(name, Float32(v))
}

func (s *Statement) BindFloat64(idx int, v float64) (*Statement, error) {
	return s.Bind(idx, Float64(v))
}

func (s *Statement) BindFloat64ByName(name string, v float64) (*Statement, error) {
	return s.BindByName(name, Float64(v))
}

// BindString binds text. It fails with ErrEncoding if v is not valid UTF-8
// or contains a NUL byte.
func (s *Statement) BindString(idx int, v string) (*Statement, error) {
	return s.Bind(idx, Text(v))
}

func (s *Statement) BindStringByName(name string, v string) (*Statement, error) {
	return s.BindByName(name, Text(v))
}

// BindBytes binds a copy of v.
func (s *Statement) BindBytes(idx int, v []byte) (*Statement, error) {
	return s.Bind(idx, Bytes(v))
}

func (s *Statement) BindBytesByName(name string, v []byte) (*Statement, error) {
	return s.BindByName(name, Bytes(v))
}

func (s *Statement) BindUUID(idx int, v UUID) (*Statement, error) {
	return s.Bind(idx, v)
}

func (s *Statement) BindUUIDByName(name string, v UUID) (*Statement, error) {
	return s.BindByName(name, v)
}

func (s *Statement) BindTimeUUID(idx int, v TimeUUID) (*Statement, error) {
	return s.Bind(idx, v)
}

func (s *Statement) BindTimeUUIDByName(name string, v TimeUUID) (*Statement, error) {
	return s.BindByName(name, v)
}

func (s *Statement) BindInet(idx int, v net.IP) (*Statement, error) {
	return s.Bind(idx, Inet(v))
}

func (s *Statement) BindInetByName(name string, v net.IP) (*Statement, error) {
	return s.BindByName(name, Inet(v))
}

// BindMap binds a collection built with NewMap.
func (s *Statement) BindMap(idx int, c *Collection) (*Statement, error) {
	return s.bindCollection(At(idx), gocql.TypeMap, c)
}

func (s *Statement) BindMapByName(name string, c *Collection) (*Statement, error) {
	return s.bindCollection(Named(name), gocql.TypeMap, c)
}

// BindSet binds a collection built with NewSet.
func (s *Statement) BindSet(idx int, c *Collection) (*Statement, error) {
	return s.bindCollection(At(idx), gocql.TypeSet, c)
}

func (s *Statement) BindSetByName(name string, c *Collection) (*Statement, error) {
	return s.bindCollection(Named(name), gocql.TypeSet, c)
}

// BindList binds a collection built with NewList.
func (s *Statement) BindList(idx int, c *Collection) (*Statement, error) {
	return s.bindCollection(At(idx), gocql.TypeList, c)
}

func (s *Statement) BindListByName(name string, c *Collection) (*Statement, error) {
	return s.bindCollection(Named(name), gocql.TypeList, c)
}

func (s *Statement) bindCollection(addr Address, kind gocql.Type, c *Collection) (*Statement, error) {
	if c == nil {
		return s.BindAt(addr, Null())
	}
	if c.kind != kind {
		if !s.handle.IsNull() {
			if code := s.checkAddress(addr); code != mapping.CodeOK {
				return s.apply("bind", code, ErrConstruction)
			}
		}
		return s.apply("bind", mapping.CodeCollectionKind, ErrEncoding)
	}
	return s.BindAt(addr, c)
}

func (s *Statement) BindTuple(idx int, t *Tuple) (*Statement, error) {
	return s.Bind(idx, t)
}

func (s *Statement) BindTupleByName(name string, t *Tuple) (*Statement, error) {
	return s.BindByName(name, t)
}

func (s *Statement) BindUserType(idx int, u *UserType) (*Statement, error) {
	return s.Bind(idx, u)
}

func (s *Statement) BindUserTypeByName(name string, u *UserType) (*Statement, error) {
	return s.BindByName(name, u)
}
