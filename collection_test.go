package cassandra

import (
	"testing"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/require"
)

func TestBindList(t *testing.T) {
	defer VerifyAllocationCounters()

	s, err := NewStatement(`INSERT INTO t (l) VALUES (?)`, 1)
	require.NoError(t, err)
	defer closeWrapper(t, s)

	l := NewList(3)
	for _, v := range []string{"a", "b", "a"} {
		require.NoError(t, l.Append(Text(v)))
	}
	require.Equal(t, 3, l.Len())
	require.Equal(t, gocql.TypeList, l.Kind())

	_, err = s.BindList(0, l)
	require.NoError(t, err)

	v := boundValue(t, s, 0)
	require.Equal(t, gocql.TypeList, v.Type.Type())
	require.Equal(t, gocql.TypeVarchar, v.Type.(gocql.CollectionType).Elem.Type())
	require.Equal(t, []string{"a", "b", "a"}, unmarshalBound[[]string](t, v))
}

func TestBindEmptyList(t *testing.T) {
	defer VerifyAllocationCounters()

	s, err := NewStatement(`INSERT INTO t (l) VALUES (?)`, 1)
	require.NoError(t, err)
	defer closeWrapper(t, s)

	_, err = s.BindList(0, NewList(0))
	require.NoError(t, err)
	v := boundValue(t, s, 0)
	require.False(t, v.IsNull())
	require.Empty(t, unmarshalBound[[]int32](t, v))

	var nilList *Collection
	_, err = s.BindList(0, nilList)
	require.NoError(t, err)
	require.True(t, boundValue(t, s, 0).IsNull())
}

func TestBindSetAndMap(t *testing.T) {
	defer VerifyAllocationCounters()

	s, err := NewStatement(`INSERT INTO t (s, m) VALUES (?, ?)`, 2)
	require.NoError(t, err)
	defer closeWrapper(t, s)

	set := NewSet(2)
	require.NoError(t, set.Append(Int64(1)))
	require.NoError(t, set.Append(Int64(2)))
	_, err = s.BindSet(0, set)
	require.NoError(t, err)

	m := NewMap(2)
	require.NoError(t, m.Append(Text("one")))
	require.NoError(t, m.Append(Int32(1)))
	require.NoError(t, m.Append(Text("two")))
	require.NoError(t, m.Append(Int32(2)))
	require.Equal(t, 2, m.Len())
	_, err = s.BindMap(1, m)
	require.NoError(t, err)

	req, err := s.Request()
	require.NoError(t, err)
	require.Equal(t, gocql.TypeSet, req.Values[0].Type.Type())
	require.ElementsMatch(t, []int64{1, 2}, unmarshalBound[[]int64](t, req.Values[0]))

	mt := req.Values[1].Type.(gocql.CollectionType)
	require.Equal(t, gocql.TypeVarchar, mt.Key.Type())
	require.Equal(t, gocql.TypeInt, mt.Elem.Type())
	require.Equal(t, map[string]int32{"one": 1, "two": 2}, unmarshalBound[map[string]int32](t, req.Values[1]))
}

func TestBindSetOfMixedUUIDVersions(t *testing.T) {
	defer VerifyAllocationCounters()

	s, err := NewStatement(`INSERT INTO t (ids) VALUES (?)`, 1)
	require.NoError(t, err)
	defer closeWrapper(t, s)

	random := RandomUUID()
	tid, err := NewTimeUUID()
	require.NoError(t, err)

	set := NewSet(2)
	require.NoError(t, set.Append(random))
	require.NoError(t, set.Append(tid.UUID()))

	// A timeuuid does not belong in a set<uuid>.
	err = set.Append(tid)
	require.ErrorIs(t, err, ErrEncoding)
	var codeErr *CodeError
	require.ErrorAs(t, err, &codeErr)
	require.Equal(t, ErrorCodeInvalidItemType, codeErr.Code)
	require.Equal(t, 2, set.Len())

	_, err = s.BindSet(0, set)
	require.NoError(t, err)

	v := boundValue(t, s, 0)
	require.Equal(t, gocql.TypeUUID, v.Type.(gocql.CollectionType).Elem.Type())
	require.ElementsMatch(t, []gocql.UUID{gocql.UUID(random), gocql.UUID(tid)}, unmarshalBound[[]gocql.UUID](t, v))
}

func TestCollectionErrors(t *testing.T) {
	defer VerifyAllocationCounters()

	l := NewList(0)
	require.NoError(t, l.Append(Int32(1)))
	err := l.Append(Int64(2))
	require.ErrorIs(t, err, ErrEncoding)
	var codeErr *CodeError
	require.ErrorAs(t, err, &codeErr)
	require.Equal(t, ErrorCodeInvalidItemType, codeErr.Code)

	err = l.Append(Null())
	require.ErrorIs(t, err, ErrEncoding)
	require.ErrorAs(t, err, &codeErr)
	require.Equal(t, ErrorCodeNullItem, codeErr.Code)

	require.ErrorIs(t, l.Append(Text("\x00")), ErrEncoding)
	require.Equal(t, 1, l.Len())

	m := NewMap(1)
	require.NoError(t, m.Append(Text("k")))
	require.NoError(t, m.Append(Int32(1)))
	require.ErrorIs(t, m.Append(Int32(2)), ErrEncoding)

	s, err := NewStatement(`INSERT INTO t (m) VALUES (?)`, 1)
	require.NoError(t, err)
	defer closeWrapper(t, s)

	// A key without a value cannot be encoded.
	require.NoError(t, m.Append(Text("dangling")))
	_, err = s.BindMap(0, m)
	require.ErrorIs(t, err, ErrRejected)

	_, err = s.BindSet(0, l)
	require.ErrorIs(t, err, ErrEncoding)
	require.ErrorAs(t, err, &codeErr)
	require.Equal(t, ErrorCodeCollectionKind, codeErr.Code)

	_, err = s.BindSet(3, l)
	require.ErrorIs(t, err, ErrAddressing)

	// Any collection binds through the generic path.
	_, err = s.Bind(0, l)
	require.NoError(t, err)
}

func TestBindTuple(t *testing.T) {
	defer VerifyAllocationCounters()

	s, err := NewStatement(`INSERT INTO t (tup) VALUES (?)`, 1)
	require.NoError(t, err)
	defer closeWrapper(t, s)

	tup := NewTuple(3)
	require.Equal(t, 3, tup.Len())
	require.NoError(t, tup.Set(0, Text("x")))
	require.NoError(t, tup.Set(2, Int32(9)))
	require.ErrorIs(t, tup.Set(3, Int32(9)), ErrAddressing)
	require.ErrorIs(t, tup.Set(0, Text("\xff")), ErrEncoding)

	_, err = s.BindTuple(0, tup)
	require.NoError(t, err)

	v := boundValue(t, s, 0)
	tt := v.Type.(gocql.TupleTypeInfo)
	require.Len(t, tt.Elems, 3)
	require.Equal(t, gocql.TypeVarchar, tt.Elems[0].Type())
	require.Equal(t, gocql.TypeInt, tt.Elems[2].Type())

	var (
		a string
		b []byte
		c int32
	)
	require.NoError(t, gocql.Unmarshal(v.Type, v.Data, []interface{}{&a, &b, &c}))
	require.Equal(t, "x", a)
	require.Nil(t, b)
	require.Equal(t, int32(9), c)
}

type homeAddress struct {
	Street string `cql:"street"`
	Zip    int32  `cql:"zip"`
	Ignore bool   `cql:"-"`
}

func TestBindUserType(t *testing.T) {
	defer VerifyAllocationCounters()

	s, err := NewStatement(`INSERT INTO t (addr) VALUES (?)`, 1)
	require.NoError(t, err)
	defer closeWrapper(t, s)

	u, err := NewUserType("ks", "address", "street", "zip", "note")
	require.NoError(t, err)
	require.Equal(t, []string{"street", "zip", "note"}, u.Fields())
	require.NoError(t, u.SetStruct(homeAddress{Street: "Main St", Zip: 12345}))
	require.ErrorIs(t, u.SetByName("missing", Int32(1)), ErrAddressing)

	_, err = s.BindUserType(0, u)
	require.NoError(t, err)

	v := boundValue(t, s, 0)
	ut := v.Type.(gocql.UDTTypeInfo)
	require.Equal(t, "ks", ut.KeySpace)
	require.Equal(t, "address", ut.Name)
	require.Equal(t, gocql.TypeInt, ut.Elements[1].Type.Type())

	var got struct {
		Street string  `cql:"street"`
		Zip    int32   `cql:"zip"`
		Note   *string `cql:"note"`
	}
	require.NoError(t, gocql.Unmarshal(v.Type, v.Data, &got))
	require.Equal(t, "Main St", got.Street)
	require.Equal(t, int32(12345), got.Zip)
	require.Nil(t, got.Note)

	require.NoError(t, u.SetByName("NOTE", Text("front door")))
	require.NoError(t, u.SetStruct(map[string]interface{}{"zip": int32(1)}))
	_, err = s.BindUserTypeByName("addr", u)
	require.ErrorIs(t, err, ErrAddressing)
	_, err = s.BindUserType(0, u)
	require.NoError(t, err)
	v = boundValue(t, s, 0)
	require.NoError(t, gocql.Unmarshal(v.Type, v.Data, &got))
	require.Equal(t, int32(1), got.Zip)
	require.Equal(t, "front door", *got.Note)
}

func TestNewUserTypeErrors(t *testing.T) {
	_, err := NewUserType("ks", "t", "a", "A")
	require.ErrorIs(t, err, ErrConstruction)

	_, err = NewUserType("ks\x00", "t")
	require.ErrorIs(t, err, ErrConstruction)

	_, err = NewUserType("ks", "t", "")
	require.ErrorIs(t, err, ErrConstruction)

	u, err := NewUserType("ks", "t", "a")
	require.NoError(t, err)
	require.ErrorIs(t, u.SetStruct(struct{ A chan int }{}), ErrEncoding)
}
