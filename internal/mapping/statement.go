package mapping

import (
	"strings"

	"github.com/gocql/gocql"
	"go.uber.org/atomic"
)

// Param is the metadata of one slot of a prepared statement.
type Param struct {
	Name     string
	Keyspace string
	Table    string
	Type     gocql.TypeInfo
}

type statement struct {
	query      string
	preparedID []byte
	params     []Param

	values []Value
	bound  []bool

	keyIndices        []int
	keyspace          string
	consistency       uint16
	consistencySet    bool
	serialConsistency uint16
	serialSet         bool
	pageSize          int32
	pagingState       []byte
	timestamp         int64
	timestampSet      bool
	retryPolicy       gocql.RetryPolicy
	customPayload     map[string][]byte

	freed atomic.Bool
}

// Statement is an opaque statement handle. The zero value is the null handle.
type Statement struct {
	ptr *statement
}

// IsNull reports whether s is the null handle.
func (s Statement) IsNull() bool {
	return s.ptr == nil
}

func (s Statement) live() bool {
	return s.ptr != nil && !s.ptr.freed.Load()
}

func newStatement(query string, count int) Statement {
	liveStatements.Inc()
	return Statement{ptr: &statement{
		query:    query,
		values:   make([]Value, count),
		bound:    make([]bool, count),
		pageSize: -1,
	}}
}

// NewStatement allocates an ad hoc statement with count parameter slots.
func NewStatement(query string, count int) (Statement, Code) {
	if count < 0 {
		return Statement{}, CodeBadParams
	}
	if !ValidText(query) {
		return Statement{}, CodeInvalidText
	}
	return newStatement(query, count), CodeOK
}

// DestroyStatement releases the handle and nulls it. Destroying a null or
// already released handle reports CodeInvalidHandle.
func DestroyStatement(s *Statement) Code {
	if s.ptr == nil {
		return CodeInvalidHandle
	}
	if !s.ptr.freed.CompareAndSwap(false, true) {
		s.ptr = nil
		return CodeInvalidHandle
	}
	s.ptr.values = nil
	s.ptr.bound = nil
	s.ptr = nil
	liveStatements.Dec()
	return CodeOK
}

func StatementParamCount(s Statement) int {
	if !s.live() {
		return 0
	}
	return len(s.ptr.values)
}

func StatementQuery(s Statement) string {
	if !s.live() {
		return ""
	}
	return s.ptr.query
}

// ------------------------------------------------------------------ //
// Binding
// ------------------------------------------------------------------ //

func Bind(s Statement, idx int, v Value) Code {
	if !s.live() {
		return CodeInvalidHandle
	}
	if idx < 0 || idx >= len(s.ptr.values) {
		return CodeIndexOutOfBounds
	}
	s.ptr.values[idx] = v
	s.ptr.bound[idx] = true
	return CodeOK
}

// BindByName assigns v to every slot named name. Ad hoc statements carry no
// names and always report CodeNameDoesNotExist.
func BindByName(s Statement, name string, v Value) Code {
	if !s.live() {
		return CodeInvalidHandle
	}
	if !ValidText(name) {
		return CodeInvalidText
	}
	indices := lookupName(s.ptr.params, name)
	if len(indices) == 0 {
		return CodeNameDoesNotExist
	}
	for _, idx := range indices {
		s.ptr.values[idx] = v
		s.ptr.bound[idx] = true
	}
	return CodeOK
}

// LookupName reports whether any slot is named name without binding it.
func LookupName(s Statement, name string) Code {
	if !s.live() {
		return CodeInvalidHandle
	}
	if !ValidText(name) {
		return CodeInvalidText
	}
	if len(lookupName(s.ptr.params, name)) == 0 {
		return CodeNameDoesNotExist
	}
	return CodeOK
}

// lookupName follows CQL identifier rules: a double-quoted name matches
// exactly, anything else case-insensitively.
func lookupName(params []Param, name string) []int {
	exact := false
	if len(name) >= 2 && name[0] == '"' && name[len(name)-1] == '"' {
		name = strings.ReplaceAll(name[1:len(name)-1], `""`, `"`)
		exact = true
	}

	var indices []int
	for i, p := range params {
		if exact && p.Name == name || !exact && strings.EqualFold(p.Name, name) {
			indices = append(indices, i)
		}
	}
	return indices
}

// ------------------------------------------------------------------ //
// Options
// ------------------------------------------------------------------ //

func AddKeyIndex(s Statement, idx int) Code {
	if !s.live() {
		return CodeInvalidHandle
	}
	if idx < 0 || idx >= len(s.ptr.values) {
		return CodeIndexOutOfBounds
	}
	s.ptr.keyIndices = append(s.ptr.keyIndices, idx)
	return CodeOK
}

func SetKeyspace(s Statement, keyspace string) Code {
	if !s.live() {
		return CodeInvalidHandle
	}
	if !ValidText(keyspace) {
		return CodeInvalidText
	}
	s.ptr.keyspace = keyspace
	return CodeOK
}

const (
	consistencyLocalOne    = 0x0A
	consistencySerial      = 0x08
	consistencyLocalSerial = 0x09
)

func SetConsistency(s Statement, c uint16) Code {
	if !s.live() {
		return CodeInvalidHandle
	}
	if c > consistencyLocalOne {
		return CodeBadParams
	}
	s.ptr.consistency = c
	s.ptr.consistencySet = true
	return CodeOK
}

func SetSerialConsistency(s Statement, c uint16) Code {
	if !s.live() {
		return CodeInvalidHandle
	}
	if c != consistencySerial && c != consistencyLocalSerial {
		return CodeBadParams
	}
	s.ptr.serialConsistency = c
	s.ptr.serialSet = true
	return CodeOK
}

// SetPagingSize accepts -1 (paging disabled) or a positive page size.
func SetPagingSize(s Statement, n int32) Code {
	if !s.live() {
		return CodeInvalidHandle
	}
	if n == 0 || n < -1 {
		return CodeBadParams
	}
	s.ptr.pageSize = n
	return CodeOK
}

func SetPagingState(s Statement, token []byte) Code {
	if !s.live() {
		return CodeInvalidHandle
	}
	if len(token) == 0 {
		s.ptr.pagingState = nil
		return CodeOK
	}
	s.ptr.pagingState = append([]byte(nil), token...)
	return CodeOK
}

func SetTimestamp(s Statement, ts int64) Code {
	if !s.live() {
		return CodeInvalidHandle
	}
	s.ptr.timestamp = ts
	s.ptr.timestampSet = true
	return CodeOK
}

// SetRetryPolicy stores a reference to p. A nil policy restores the default.
func SetRetryPolicy(s Statement, p gocql.RetryPolicy) Code {
	if !s.live() {
		return CodeInvalidHandle
	}
	s.ptr.retryPolicy = p
	return CodeOK
}

func SetCustomPayload(s Statement, payload map[string][]byte) Code {
	if !s.live() {
		return CodeInvalidHandle
	}
	if payload == nil {
		s.ptr.customPayload = nil
		return CodeOK
	}
	cp := make(map[string][]byte, len(payload))
	for k, v := range payload {
		if !ValidText(k) {
			return CodeInvalidText
		}
		cp[k] = append([]byte(nil), v...)
	}
	s.ptr.customPayload = cp
	return CodeOK
}

// ------------------------------------------------------------------ //
// Snapshot
// ------------------------------------------------------------------ //

// Snapshot is a copy of everything an executor needs from a statement.
type Snapshot struct {
	Query             string
	PreparedID        []byte
	Params            []Param
	Values            []Value
	Bound             []bool
	KeyIndices        []int
	Keyspace          string
	Consistency       uint16
	ConsistencySet    bool
	SerialConsistency uint16
	SerialSet         bool
	PageSize          int32
	PagingState       []byte
	Timestamp         int64
	TimestampSet      bool
	RetryPolicy       gocql.RetryPolicy
	CustomPayload     map[string][]byte
}

func StatementSnapshot(s Statement) (Snapshot, Code) {
	if !s.live() {
		return Snapshot{}, CodeInvalidHandle
	}
	p := s.ptr
	snap := Snapshot{
		Query:             p.query,
		PreparedID:        p.preparedID,
		Params:            p.params,
		Values:            append([]Value(nil), p.values...),
		Bound:             append([]bool(nil), p.bound...),
		KeyIndices:        append([]int(nil), p.keyIndices...),
		Keyspace:          p.keyspace,
		Consistency:       p.consistency,
		ConsistencySet:    p.consistencySet,
		SerialConsistency: p.serialConsistency,
		SerialSet:         p.serialSet,
		PageSize:          p.pageSize,
		PagingState:       p.pagingState,
		Timestamp:         p.timestamp,
		TimestampSet:      p.timestampSet,
		RetryPolicy:       p.retryPolicy,
	}
	if p.customPayload != nil {
		snap.CustomPayload = make(map[string][]byte, len(p.customPayload))
		for k, v := range p.customPayload {
			snap.CustomPayload[k] = v
		}
	}
	return snap, CodeOK
}
