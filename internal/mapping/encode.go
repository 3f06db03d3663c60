package mapping

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/gocql/gocql"
)

// Value is a wire-encoded parameter value together with the type descriptor
// it was encoded as. A nil Data is a null value.
type Value struct {
	Type gocql.TypeInfo
	Data []byte
}

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool {
	return v.Data == nil
}

// NativeType returns the descriptor of a primitive type at ProtoVersion.
func NativeType(t gocql.Type) gocql.NativeType {
	return gocql.NewNativeType(ProtoVersion, t, "")
}

var blobType = NativeType(gocql.TypeBlob)

func marshal(info gocql.TypeInfo, v any) (Value, Code) {
	data, err := gocql.Marshal(info, v)
	if err != nil {
		return Value{}, CodeInvalidValue
	}
	if data == nil {
		data = []byte{}
	}
	return Value{Type: info, Data: data}, CodeOK
}

func Null() Value {
	return Value{}
}

func EncodeBool(v bool) (Value, Code) {
	return marshal(NativeType(gocql.TypeBoolean), v)
}

func EncodeInt8(v int8) (Value, Code) {
	return marshal(NativeType(gocql.TypeTinyInt), v)
}

func EncodeInt16(v int16) (Value, Code) {
	return marshal(NativeType(gocql.TypeSmallInt), v)
}

func EncodeInt32(v int32) (Value, Code) {
	return marshal(NativeType(gocql.TypeInt), v)
}

// EncodeUint32 encodes a "date": an unsigned day count centered on the epoch
// at 2^31. gocql has no unsigned 32-bit path, so the four bytes are written
// directly.
func EncodeUint32(v uint32) (Value, Code) {
	return Value{
		Type: NativeType(gocql.TypeDate),
		Data: binary.BigEndian.AppendUint32(make([]byte, 0, 4), v),
	}, CodeOK
}

func EncodeInt64(v int64) (Value, Code) {
	return marshal(NativeType(gocql.TypeBigInt), v)
}

func EncodeFloat32(v float32) (Value, Code) {
	return marshal(NativeType(gocql.TypeFloat), v)
}

func EncodeFloat64(v float64) (Value, Code) {
	return marshal(NativeType(gocql.TypeDouble), v)
}

func EncodeText(v string) (Value, Code) {
	if !ValidText(v) {
		return Value{}, CodeInvalidText
	}
	return marshal(NativeType(gocql.TypeVarchar), v)
}

// EncodeBytes copies v. A nil slice encodes as an empty blob, not as null.
func EncodeBytes(v []byte) (Value, Code) {
	data := make([]byte, len(v))
	copy(data, v)
	return Value{Type: NativeType(gocql.TypeBlob), Data: data}, CodeOK
}

func EncodeUUID(v [16]byte, timeBased bool) (Value, Code) {
	t := gocql.TypeUUID
	if timeBased {
		t = gocql.TypeTimeUUID
	}
	return marshal(NativeType(t), gocql.UUID(v))
}

func EncodeInet(v net.IP) (Value, Code) {
	if len(v) != net.IPv4len && len(v) != net.IPv6len {
		return Value{}, CodeInvalidValue
	}
	return marshal(NativeType(gocql.TypeInet), v)
}

// ------------------------------------------------------------------ //
// Composites
// ------------------------------------------------------------------ //

// Composite items are already encoded, so the wire descriptors handed to
// gocql use blob elements: the length-prefixed layout of a collection, tuple
// or UDT does not depend on the element type. The returned Value carries the
// real descriptor.

// SameType reports whether two descriptors describe the same CQL type.
// gocql.TypeInfo does not declare String, so descriptors are rendered
// through fmt.
func SameType(a, b gocql.TypeInfo) bool {
	return a.Type() == b.Type() && TypeString(a) == TypeString(b)
}

// TypeString renders a descriptor the way gocql prints it, such as
// "list(varchar)".
func TypeString(info gocql.TypeInfo) string {
	return fmt.Sprint(info)
}

func elementType(items []Value) (gocql.TypeInfo, Code) {
	if len(items) == 0 {
		return blobType, CodeOK
	}
	for _, item := range items {
		if item.IsNull() {
			return nil, CodeNullItem
		}
		if !SameType(items[0].Type, item.Type) {
			return nil, CodeInvalidItemType
		}
	}
	return items[0].Type, CodeOK
}

func rawItems(items []Value) [][]byte {
	raw := make([][]byte, len(items))
	for i, item := range items {
		raw[i] = item.Data
	}
	return raw
}

// EncodeCollection encodes a list or set from items, or a map from items
// holding alternating keys and values.
func EncodeCollection(kind gocql.Type, items []Value) (Value, Code) {
	switch kind {
	case gocql.TypeList, gocql.TypeSet:
		elem, code := elementType(items)
		if code != CodeOK {
			return Value{}, code
		}
		info := gocql.CollectionType{NativeType: NativeType(kind), Elem: elem}
		wire := gocql.CollectionType{NativeType: NativeType(kind), Elem: blobType}
		v, code := marshal(wire, rawItems(items))
		v.Type = info
		return v, code

	case gocql.TypeMap:
		if len(items)%2 != 0 {
			return Value{}, CodeBadParams
		}
		keys := make([]Value, 0, len(items)/2)
		vals := make([]Value, 0, len(items)/2)
		for i := 0; i < len(items); i += 2 {
			keys = append(keys, items[i])
			vals = append(vals, items[i+1])
		}
		keyType, code := elementType(keys)
		if code != CodeOK {
			return Value{}, code
		}
		elemType, code := elementType(vals)
		if code != CodeOK {
			return Value{}, code
		}

		entries := make(map[string][]byte, len(keys))
		for i := range keys {
			entries[string(keys[i].Data)] = vals[i].Data
		}
		info := gocql.CollectionType{NativeType: NativeType(kind), Key: keyType, Elem: elemType}
		wire := gocql.CollectionType{NativeType: NativeType(kind), Key: blobType, Elem: blobType}
		v, code := marshal(wire, entries)
		v.Type = info
		return v, code
	}
	return Value{}, CodeCollectionKind
}

// EncodeTuple encodes items positionally. Null items are allowed.
func EncodeTuple(items []Value) (Value, Code) {
	info := gocql.TupleTypeInfo{NativeType: NativeType(gocql.TypeTuple), Elems: make([]gocql.TypeInfo, len(items))}
	wire := gocql.TupleTypeInfo{NativeType: NativeType(gocql.TypeTuple), Elems: make([]gocql.TypeInfo, len(items))}
	raw := make([]interface{}, len(items))
	for i, item := range items {
		wire.Elems[i] = blobType
		info.Elems[i] = blobType
		if item.IsNull() {
			continue
		}
		info.Elems[i] = item.Type
		raw[i] = item.Data
	}
	v, code := marshal(wire, raw)
	v.Type = info
	return v, code
}

type udtFields map[string][]byte

// MarshalUDT implements gocql.UDTMarshaler. Missing fields are null.
func (f udtFields) MarshalUDT(name string, _ gocql.TypeInfo) ([]byte, error) {
	return f[name], nil
}

// EncodeUserType encodes a user-defined type. fields and items are parallel;
// null items are allowed.
func EncodeUserType(keyspace, name string, fields []string, items []Value) (Value, Code) {
	if len(fields) != len(items) {
		return Value{}, CodeBadParams
	}
	if !ValidText(keyspace) || !ValidText(name) {
		return Value{}, CodeInvalidText
	}

	info := gocql.UDTTypeInfo{NativeType: NativeType(gocql.TypeUDT), KeySpace: keyspace, Name: name}
	wire := gocql.UDTTypeInfo{NativeType: NativeType(gocql.TypeUDT), KeySpace: keyspace, Name: name}
	raw := make(udtFields, len(items))
	for i, item := range items {
		t := gocql.TypeInfo(blobType)
		if !item.IsNull() {
			t = item.Type
			raw[fields[i]] = item.Data
		}
		info.Elements = append(info.Elements, gocql.UDTField{Name: fields[i], Type: t})
		wire.Elements = append(wire.Elements, gocql.UDTField{Name: fields[i], Type: blobType})
	}
	v, code := marshal(wire, raw)
	v.Type = info
	return v, code
}
