package cassandra

import (
	"math"
	"runtime"

	"github.com/gocql/gocql"

	"github.com/cassandra-go/cassandra/internal/mapping"
)

// Statement is an executable query: an ad hoc query with a fixed number of
// parameter slots, or a statement derived from a PreparedStatement. It holds
// the bound values and query options.
//
// A Statement owns one resource handle and must be released with Close. It
// is not safe for concurrent use; binding must be serialized by its owner.
type Statement struct {
	handle       mapping.Statement
	fromPrepared bool
}

// NewStatement creates an ad hoc statement with parameterCount slots. It
// fails with ErrConstruction if query is not valid UTF-8 or contains a NUL
// byte; no handle is allocated in that case.
func NewStatement(query string, parameterCount int) (*Statement, error) {
	h, code := mapping.NewStatement(query, parameterCount)
	if code != mapping.CodeOK {
		return nil, codeError("new statement", code, ErrConstruction)
	}
	return newStatement(h, false), nil
}

// NewStatementFromQuery creates an ad hoc statement with one slot per '?'
// placeholder in query.
func NewStatementFromQuery(query string) (*Statement, error) {
	return NewStatement(query, CountPlaceholders(query))
}

func newStatement(h mapping.Statement, fromPrepared bool) *Statement {
	s := &Statement{handle: h, fromPrepared: fromPrepared}
	runtime.SetFinalizer(s, (*Statement).Close)
	return s
}

// Close releases the statement's handle. It is safe to call more than once;
// only the first call has an effect. The returned error is always nil;
// release failures go to the fault handler.
func (s *Statement) Close() error {
	if s == nil || s.handle.IsNull() {
		return nil
	}
	runtime.SetFinalizer(s, nil)
	if code := mapping.DestroyStatement(&s.handle); code != mapping.CodeOK {
		reportFault(codeError("release statement", code, ErrRejected))
	}
	return nil
}

// Closed reports whether the statement has been released.
func (s *Statement) Closed() bool {
	return s.handle.IsNull()
}

// Query returns the query text.
func (s *Statement) Query() string {
	return mapping.StatementQuery(s.handle)
}

// FromPrepared reports whether the statement was created by
// PreparedStatement.Bind.
func (s *Statement) FromPrepared() bool {
	return s.fromPrepared
}

// ParameterCount returns the number of parameter slots, fixed at creation.
func (s *Statement) ParameterCount() int {
	return mapping.StatementParamCount(s.handle)
}

func (s *Statement) apply(op string, code mapping.Code, textKind error) (*Statement, error) {
	if code != mapping.CodeOK {
		if code == mapping.CodeInvalidHandle {
			return nil, closedError(op)
		}
		return nil, codeError(op, code, textKind)
	}
	return s, nil
}

// AddKeyIndex marks the parameter at idx as part of the partition key for
// token-aware routing. Call it once per component of a composite key, in key
// order. Statements derived from a PreparedStatement already carry the
// partition key from the prepare metadata.
func (s *Statement) AddKeyIndex(idx int) (*Statement, error) {
	return s.apply("add key index", mapping.AddKeyIndex(s.handle, idx), ErrConstruction)
}

// SetKeyspace sets the keyspace used for token-aware routing.
func (s *Statement) SetKeyspace(keyspace string) (*Statement, error) {
	return s.apply("set keyspace", mapping.SetKeyspace(s.handle, keyspace), ErrConstruction)
}

// SetConsistency sets the consistency level. Unset, the executor's default
// applies.
func (s *Statement) SetConsistency(c Consistency) (*Statement, error) {
	return s.apply("set consistency", mapping.SetConsistency(s.handle, uint16(c)), ErrConstruction)
}

// SetSerialConsistency sets the serial consistency level of conditional
// updates. Only ConsistencySerial and ConsistencyLocalSerial are accepted.
func (s *Statement) SetSerialConsistency(c Consistency) (*Statement, error) {
	return s.apply("set serial consistency", mapping.SetSerialConsistency(s.handle, uint16(c)), ErrConstruction)
}

// SetPagingSize sets the page size. -1, the default, disables paging.
func (s *Statement) SetPagingSize(n int) (*Statement, error) {
	if n > math.MaxInt32 {
		return s.apply("set paging size", mapping.CodeBadParams, ErrConstruction)
	}
	return s.apply("set paging size", mapping.SetPagingSize(s.handle, int32(n)), ErrConstruction)
}

// SetPagingState continues a paged query from the page following result.
func (s *Statement) SetPagingState(result Result) (*Statement, error) {
	if result == nil {
		return s.apply("set paging state", mapping.CodeBadParams, ErrConstruction)
	}
	return s.SetPagingStateToken(result.PagingState())
}

// SetPagingStateToken continues a paged query from an opaque token previously
// obtained from Result.PagingState.
//
// The token must not be exposed to or accepted from untrusted sources: a
// forged token can grant access to data outside the originating query.
func (s *Statement) SetPagingStateToken(token []byte) (*Statement, error) {
	return s.apply("set paging state", mapping.SetPagingState(s.handle, token), ErrConstruction)
}

// SetTimestamp sets the write timestamp in microseconds since the epoch.
func (s *Statement) SetTimestamp(ts int64) (*Statement, error) {
	return s.apply("set timestamp", mapping.SetTimestamp(s.handle, ts), ErrConstruction)
}

// SetRetryPolicy sets the retry policy. The policy is stored by reference and
// never inspected. nil restores the executor's default.
func (s *Statement) SetRetryPolicy(policy gocql.RetryPolicy) (*Statement, error) {
	return s.apply("set retry policy", mapping.SetRetryPolicy(s.handle, policy), ErrConstruction)
}

// SetCustomPayload sets the custom payload sent with the request. The payload
// is copied. nil clears it.
func (s *Statement) SetCustomPayload(payload *CustomPayload) (*Statement, error) {
	var items map[string][]byte
	if payload != nil {
		items = payload.items
	}
	return s.apply("set custom payload", mapping.SetCustomPayload(s.handle, items), ErrConstruction)
}
