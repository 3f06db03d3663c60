package cassandra

import (
	"sync"
	"testing"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/require"
)

func TestPreparedStatement(t *testing.T) {
	defer VerifyAllocationCounters()

	p := preparedFixture(t)
	defer closeWrapper(t, p)

	require.Equal(t, 2, p.ParameterCount())
	require.Equal(t, `INSERT INTO ks.t (key, val) VALUES (?, ?)`, p.Query())
	require.Equal(t, []byte{0x01, 0x02}, p.ID())
	require.Equal(t, "ks", p.Keyspace())

	name, err := p.ParameterName(0)
	require.NoError(t, err)
	require.Equal(t, "key", name)

	typ, err := p.ParameterDataType(0)
	require.NoError(t, err)
	require.Equal(t, gocql.TypeVarchar, typ.Type())
	require.True(t, typ.Valid())

	typ, err = p.ParameterDataTypeByName("val")
	require.NoError(t, err)
	require.Equal(t, gocql.TypeInt, typ.Type())
	require.Equal(t, "int", typ.String())

	typ, err = p.ParameterDataTypeByName(`VAL`)
	require.NoError(t, err)
	require.Equal(t, gocql.TypeInt, typ.TypeInfo().Type())

	_, err = p.ParameterDataTypeByName(`"VAL"`)
	require.ErrorIs(t, err, ErrAddressing)

	_, err = p.ParameterName(2)
	require.ErrorIs(t, err, ErrAddressing)
	_, err = p.ParameterDataType(-1)
	require.ErrorIs(t, err, ErrAddressing)
	_, err = p.ParameterDataTypeByName("missing")
	require.ErrorIs(t, err, ErrAddressing)
}

func TestPreparedBind(t *testing.T) {
	defer VerifyAllocationCounters()

	p := preparedFixture(t)
	defer closeWrapper(t, p)

	s, err := p.Bind()
	require.NoError(t, err)
	defer closeWrapper(t, s)

	require.True(t, s.FromPrepared())
	require.Equal(t, 2, s.ParameterCount())

	_, err = s.BindStringByName("KEY", "k1")
	require.NoError(t, err)
	_, err = s.BindInt32(1, 7)
	require.NoError(t, err)

	_, err = s.BindInt32ByName("nope", 1)
	require.ErrorIs(t, err, ErrAddressing)
	_, err = s.BindInt32(2, 1)
	require.ErrorIs(t, err, ErrAddressing)

	req, err := s.Request()
	require.NoError(t, err)
	require.True(t, req.Prepared)
	require.Equal(t, []byte{0x01, 0x02}, req.PreparedID)
	require.Equal(t, "ks", req.Keyspace)
	require.Equal(t, []int{0}, req.KeyIndices)
	require.Len(t, req.Parameters, 2)
	require.Equal(t, "val", req.Parameters[1].Name)
	require.Equal(t, "k1", unmarshalBound[string](t, req.Values[0]))
	require.Equal(t, int32(7), unmarshalBound[int32](t, req.Values[1]))
	require.Equal(t, []byte("k1"), req.RoutingKey())

	// Each Bind yields an independent statement.
	s2, err := p.Bind()
	require.NoError(t, err)
	defer closeWrapper(t, s2)
	require.False(t, boundValue(t, s2, 0).Bound)
}

func TestPreparedDuplicateNames(t *testing.T) {
	defer VerifyAllocationCounters()

	p, err := NewPreparedStatement(PreparedMetadata{
		Query: `SELECT * FROM t WHERE a > ? AND a < ? AND "A" = ?`,
		Parameters: []ParameterInfo{
			{Name: "a", Type: nativeType(gocql.TypeInt)},
			{Name: "a", Type: nativeType(gocql.TypeBigInt)},
			{Name: "A", Type: nativeType(gocql.TypeVarchar)},
		},
	})
	require.NoError(t, err)
	defer closeWrapper(t, p)

	typ, err := p.ParameterDataTypeByName("a")
	require.NoError(t, err)
	require.Equal(t, gocql.TypeInt, typ.Type())

	s, err := p.Bind()
	require.NoError(t, err)
	defer closeWrapper(t, s)

	_, err = s.BindNullByName("a")
	require.NoError(t, err)
	req, err := s.Request()
	require.NoError(t, err)
	for _, v := range req.Values {
		require.True(t, v.Bound)
	}

	_, err = s.BindStringByName(`"A"`, "exact")
	require.NoError(t, err)
	require.Equal(t, "exact", unmarshalBound[string](t, boundValue(t, s, 2)))
	require.True(t, boundValue(t, s, 0).IsNull())
}

func TestPreparedClose(t *testing.T) {
	defer VerifyAllocationCounters()

	p := preparedFixture(t)
	typ, err := p.ParameterDataType(1)
	require.NoError(t, err)

	s, err := p.Bind()
	require.NoError(t, err)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	// Statements outlive their template.
	_, err = s.BindInt32ByName("val", 3)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = p.Bind()
	require.ErrorIs(t, err, ErrClosed)
	_, err = p.ParameterName(0)
	require.ErrorIs(t, err, ErrClosed)
	require.Equal(t, 0, p.ParameterCount())

	require.False(t, typ.Valid())
	require.Panics(t, func() { typ.Type() })
	require.Panics(t, func() { _ = typ.String() })
	require.Panics(t, func() { (DataType{}).TypeInfo() })
}

func TestPreparedConcurrentBind(t *testing.T) {
	defer VerifyAllocationCounters()

	p := preparedFixture(t)
	defer closeWrapper(t, p)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := p.Bind()
			require.NoError(t, err)
			defer s.Close()

			_, err = s.BindInt32ByName("val", int32(i))
			require.NoError(t, err)
			require.Equal(t, int32(i), unmarshalBound[int32](t, boundValue(t, s, 1)))
		}(i)
	}
	wg.Wait()
}

func TestNewPreparedStatementErrors(t *testing.T) {
	defer VerifyAllocationCounters()

	_, err := NewPreparedStatement(PreparedMetadata{Query: "SELECT \x00"})
	require.ErrorIs(t, err, ErrConstruction)

	_, err = NewPreparedStatement(PreparedMetadata{
		Query:        "SELECT * FROM t WHERE k = ?",
		Parameters:   []ParameterInfo{{Name: "k", Type: nativeType(gocql.TypeInt)}},
		PartitionKey: []int{1},
	})
	require.ErrorIs(t, err, ErrAddressing)

	_, err = NewPreparedStatement(PreparedMetadata{
		Query:      "SELECT * FROM t WHERE k = ?",
		Parameters: []ParameterInfo{{Name: "k"}},
	})
	require.ErrorIs(t, err, ErrRejected)

	p, err := NewPreparedStatement(PreparedMetadata{
		Query:      "SELECT * FROM t WHERE k = ?",
		Parameters: []ParameterInfo{{Name: "k\xff", Type: nativeType(gocql.TypeInt)}},
	})
	require.NoError(t, err)
	defer closeWrapper(t, p)

	_, err = p.ParameterName(0)
	require.ErrorIs(t, err, ErrConstruction)
}
