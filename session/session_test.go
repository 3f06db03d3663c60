package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/cassandra-go/cassandra"
)

func nativeType(t gocql.Type) gocql.TypeInfo {
	return gocql.NewNativeType(4, t, "")
}

func TestPreparedMetadata(t *testing.T) {
	info := &gocql.QueryInfo{
		Id: []byte{0xca, 0xfe},
		Args: []gocql.ColumnInfo{
			{Keyspace: "examples", Table: "basic", Name: "key", TypeInfo: nativeType(gocql.TypeVarchar)},
			{Keyspace: "examples", Table: "basic", Name: "i32", TypeInfo: nativeType(gocql.TypeInt)},
		},
		PKeyColumns: []int{0},
	}
	md := preparedMetadata("INSERT INTO examples.basic (key, i32) VALUES (?, ?)", "other", info)
	require.Equal(t, "examples", md.Keyspace)
	require.Equal(t, []byte{0xca, 0xfe}, md.ID)
	require.Equal(t, []int{0}, md.PartitionKey)
	require.Len(t, md.Parameters, 2)
	require.Equal(t, "i32", md.Parameters[1].Name)

	p, err := cassandra.NewPreparedStatement(md)
	require.NoError(t, err)
	defer p.Close()

	typ, err := p.ParameterDataTypeByName("I32")
	require.NoError(t, err)
	require.Equal(t, gocql.TypeInt, typ.Type())

	md = preparedMetadata("SELECT now() FROM system.local", "fallback", &gocql.QueryInfo{})
	require.Equal(t, "fallback", md.Keyspace)
}

func TestQueryArgs(t *testing.T) {
	stmt, err := cassandra.NewStatement("INSERT INTO t (a, b, c) VALUES (?, ?, ?)", 3)
	require.NoError(t, err)
	defer stmt.Close()

	_, err = stmt.BindInt32(0, 7)
	require.NoError(t, err)
	_, err = stmt.BindNull(2)
	require.NoError(t, err)

	req, err := stmt.Request()
	require.NoError(t, err)
	args := queryArgs(req)
	require.Len(t, args, 3)

	data, err := gocql.Marshal(nativeType(gocql.TypeInt), args[0])
	require.NoError(t, err)
	var got int32
	require.NoError(t, gocql.Unmarshal(nativeType(gocql.TypeInt), data, &got))
	require.Equal(t, int32(7), got)

	require.Equal(t, gocql.UnsetValue, args[1])

	data, err = gocql.Marshal(nativeType(gocql.TypeInt), args[2])
	require.NoError(t, err)
	require.Nil(t, data)
}

func TestObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newMetrics(reg)
	o := observer{m: m}

	start := time.Now()
	o.ObserveQuery(context.Background(), gocql.ObservedQuery{Keyspace: "examples", Start: start, End: start.Add(time.Millisecond)})
	o.ObserveQuery(context.Background(), gocql.ObservedQuery{Keyspace: "examples", Start: start, End: start, Err: errors.New("timeout")})
	o.ObserveQuery(context.Background(), gocql.ObservedQuery{Keyspace: "examples", Start: start, End: start, Err: errPrepared})

	require.Equal(t, 1.0, testutil.ToFloat64(m.requestFailures.WithLabelValues("examples")))
	require.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
}

func TestPreparable(t *testing.T) {
	for _, tc := range []struct {
		query string
		want  bool
	}{
		{"SELECT * FROM t WHERE k = ?", true},
		{"  select * from t;", true},
		{"INSERT INTO t (k) VALUES (?)", true},
		{"update t SET v = ? WHERE k = ?", true},
		{"DELETE FROM t WHERE k = ?", true},
		{"BEGIN BATCH INSERT INTO t (k) VALUES (?) APPLY BATCH;", true},
		{"BEGIN UNLOGGED BATCH UPDATE t SET v = 1 WHERE k = ?; APPLY BATCH ;", true},
		{"TRUNCATE t", false},
		{"CREATE TABLE t (k int PRIMARY KEY)", false},
		{"DROP KEYSPACE ks", false},
		{"USE ks", false},
		{"ALTER TABLE t ADD v int", false},
		{"SELECT", false},
		{"", false},
		{" ;; ", false},
	} {
		require.Equal(t, tc.want, preparable(tc.query), tc.query)
	}
}

func TestPrepareRejectsBeforeContactingCluster(t *testing.T) {
	// A Session without a driver session fails if anything reaches gocql.
	s := &Session{}
	_, err := s.Prepare(context.Background(), "TRUNCATE examples.kv")
	require.Error(t, err)
	require.Contains(t, err.Error(), "only SELECT, INSERT, UPDATE, DELETE and BATCH")
}

func TestPage(t *testing.T) {
	p := &Page{}
	require.Nil(t, p.FirstRow())
	require.Nil(t, p.PagingState())

	p = &Page{Rows: []map[string]interface{}{{"key": "test"}}, pagingState: []byte{1}}
	require.Equal(t, "test", p.FirstRow()["key"])

	stmt, err := cassandra.NewStatementFromQuery("SELECT * FROM t")
	require.NoError(t, err)
	defer stmt.Close()
	_, err = stmt.SetPagingState(p)
	require.NoError(t, err)
	req, err := stmt.Request()
	require.NoError(t, err)
	require.Equal(t, []byte{1}, req.PagingState)
}
