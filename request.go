package cassandra

import (
	"encoding/binary"
	"math"

	"github.com/gocql/gocql"

	"github.com/cassandra-go/cassandra/internal/mapping"
)

// BoundValue is the content of one parameter slot. Unbound slots have Bound
// false; a bound null has Bound true and nil Data.
type BoundValue struct {
	Type  gocql.TypeInfo
	Data  []byte
	Bound bool
}

// IsNull reports whether the slot holds null or nothing.
func (v BoundValue) IsNull() bool {
	return v.Data == nil
}

// Request is an immutable snapshot of a Statement, taken when it is handed to
// an Executor. Later changes to the Statement do not affect it.
type Request struct {
	Query      string
	PreparedID []byte
	Prepared   bool

	// Parameters is empty for ad hoc statements.
	Parameters []ParameterInfo
	Values     []BoundValue
	KeyIndices []int
	Keyspace   string

	Consistency          Consistency
	HasConsistency       bool
	SerialConsistency    Consistency
	HasSerialConsistency bool

	// PageSize is -1 when paging is disabled.
	PageSize    int
	PagingState []byte

	Timestamp    int64
	HasTimestamp bool

	RetryPolicy   gocql.RetryPolicy
	CustomPayload map[string][]byte
}

// Request snapshots the statement.
func (s *Statement) Request() (Request, error) {
	snap, code := mapping.StatementSnapshot(s.handle)
	if code != mapping.CodeOK {
		if code == mapping.CodeInvalidHandle {
			return Request{}, closedError("request")
		}
		return Request{}, codeError("request", code, ErrRejected)
	}

	req := Request{
		Query:                snap.Query,
		PreparedID:           snap.PreparedID,
		Prepared:             s.fromPrepared,
		Values:               make([]BoundValue, len(snap.Values)),
		KeyIndices:           snap.KeyIndices,
		Keyspace:             snap.Keyspace,
		Consistency:          Consistency(snap.Consistency),
		HasConsistency:       snap.ConsistencySet,
		SerialConsistency:    Consistency(snap.SerialConsistency),
		HasSerialConsistency: snap.SerialSet,
		PageSize:             int(snap.PageSize),
		PagingState:          snap.PagingState,
		Timestamp:            snap.Timestamp,
		HasTimestamp:         snap.TimestampSet,
		RetryPolicy:          snap.RetryPolicy,
		CustomPayload:        snap.CustomPayload,
	}
	for i, v := range snap.Values {
		req.Values[i] = BoundValue{Type: v.Type, Data: v.Data, Bound: snap.Bound[i]}
	}
	for _, p := range snap.Params {
		req.Parameters = append(req.Parameters, ParameterInfo(p))
	}
	return req, nil
}

// RoutingKey returns the partition key used for token-aware routing, or nil
// if no key indices are set or a key component is unbound or null. A single
// component is used as is; a composite key concatenates each component as a
// 16-bit length, the data and a zero byte, and is nil if a component does not
// fit the length prefix.
func (r Request) RoutingKey() []byte {
	if len(r.KeyIndices) == 0 {
		return nil
	}
	for _, idx := range r.KeyIndices {
		if idx < 0 || idx >= len(r.Values) || !r.Values[idx].Bound || r.Values[idx].IsNull() {
			return nil
		}
	}
	if len(r.KeyIndices) == 1 {
		return r.Values[r.KeyIndices[0]].Data
	}

	var key []byte
	for _, idx := range r.KeyIndices {
		data := r.Values[idx].Data
		if len(data) > math.MaxUint16 {
			return nil
		}
		key = binary.BigEndian.AppendUint16(key, uint16(len(data)))
		key = append(key, data...)
		key = append(key, 0)
	}
	return key
}
