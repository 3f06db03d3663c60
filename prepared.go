package cassandra

import (
	"runtime"

	"github.com/gocql/gocql"
	"go.uber.org/atomic"

	"github.com/cassandra-go/cassandra/internal/mapping"
)

// ParameterInfo describes one parameter slot of a prepared statement.
type ParameterInfo struct {
	Name     string
	Keyspace string
	Table    string
	Type     gocql.TypeInfo
}

// PreparedMetadata is what a prepare round-trip returns.
type PreparedMetadata struct {
	Query      string
	ID         []byte
	Keyspace   string
	Parameters []ParameterInfo
	// PartitionKey lists the parameter positions forming the partition key,
	// in key order.
	PartitionKey []int
}

// PreparedStatement is a query template validated by the server. It is
// immutable and may be shared between goroutines; each Bind yields an
// independent Statement.
type PreparedStatement struct {
	handle mapping.PreparedStatement
	closed atomic.Bool
}

// NewPreparedStatement creates a PreparedStatement from prepare metadata.
// Executor implementations call it; applications get prepared statements
// from Executor.Prepare.
func NewPreparedStatement(md PreparedMetadata) (*PreparedStatement, error) {
	params := make([]mapping.Param, len(md.Parameters))
	for i, p := range md.Parameters {
		params[i] = mapping.Param(p)
	}
	h, code := mapping.Prepare(md.Query, md.ID, md.Keyspace, params, md.PartitionKey)
	if code != mapping.CodeOK {
		return nil, codeError("prepare", code, ErrConstruction)
	}

	p := &PreparedStatement{handle: h}
	runtime.SetFinalizer(p, (*PreparedStatement).Close)
	return p, nil
}

// Close releases the handle. It is idempotent. Statements already bound from
// p stay valid; DataType values obtained from p must no longer be used.
func (p *PreparedStatement) Close() error {
	if p == nil || !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	runtime.SetFinalizer(p, nil)
	if code := mapping.DestroyPrepared(&p.handle); code != mapping.CodeOK {
		reportFault(codeError("release prepared statement", code, ErrRejected))
	}
	return nil
}

func (p *PreparedStatement) live() bool {
	return !p.closed.Load()
}

// Bind creates a new Statement with the template's parameter layout and no
// values bound. The Statement outlives p.
func (p *PreparedStatement) Bind() (*Statement, error) {
	if !p.live() {
		return nil, closedError("bind prepared")
	}
	h, code := mapping.PreparedBind(p.handle)
	if code != mapping.CodeOK {
		if code == mapping.CodeInvalidHandle {
			return nil, closedError("bind prepared")
		}
		return nil, codeError("bind prepared", code, ErrConstruction)
	}
	return newStatement(h, true), nil
}

func (p *PreparedStatement) Query() string {
	if !p.live() {
		return ""
	}
	return mapping.PreparedQuery(p.handle)
}

// ID returns the server-assigned statement id.
func (p *PreparedStatement) ID() []byte {
	if !p.live() {
		return nil
	}
	return append([]byte(nil), mapping.PreparedID(p.handle)...)
}

func (p *PreparedStatement) Keyspace() string {
	if !p.live() {
		return ""
	}
	return mapping.PreparedKeyspace(p.handle)
}

func (p *PreparedStatement) ParameterCount() int {
	if !p.live() {
		return 0
	}
	return mapping.PreparedParamCount(p.handle)
}

// ParameterName returns the name of the parameter at idx. It fails with
// ErrAddressing if idx is out of range and with ErrConstruction if the stored
// name is not valid UTF-8.
func (p *PreparedStatement) ParameterName(idx int) (string, error) {
	if !p.live() {
		return "", closedError("parameter name")
	}
	name, code := mapping.PreparedParamName(p.handle, idx)
	if code != mapping.CodeOK {
		return "", codeError("parameter name", code, ErrConstruction)
	}
	return name, nil
}

// ParameterDataType returns the type of the parameter at idx.
func (p *PreparedStatement) ParameterDataType(idx int) (DataType, error) {
	if !p.live() {
		return DataType{}, closedError("parameter type")
	}
	info, code := mapping.PreparedParamType(p.handle, idx)
	if code != mapping.CodeOK {
		return DataType{}, codeError("parameter type", code, ErrConstruction)
	}
	return DataType{owner: p, info: info}, nil
}

// ParameterDataTypeByName returns the type of the first parameter named
// name.
func (p *PreparedStatement) ParameterDataTypeByName(name string) (DataType, error) {
	if !p.live() {
		return DataType{}, closedError("parameter type")
	}
	info, code := mapping.PreparedParamTypeByName(p.handle, name)
	if code != mapping.CodeOK {
		return DataType{}, codeError("parameter type", code, ErrConstruction)
	}
	return DataType{owner: p, info: info}, nil
}

// DataType is a read-only view of a parameter's type, valid only while the
// PreparedStatement it came from is open. Using it afterwards panics.
type DataType struct {
	owner *PreparedStatement
	info  gocql.TypeInfo
}

// Valid reports whether the view can still be used.
func (d DataType) Valid() bool {
	return d.owner != nil && d.owner.live()
}

func (d DataType) check() {
	if !d.Valid() {
		panic("cassandra: use of DataType after its PreparedStatement was closed")
	}
}

// Type returns the CQL type code, such as gocql.TypeInt.
func (d DataType) Type() gocql.Type {
	d.check()
	return d.info.Type()
}

// TypeInfo returns the full type descriptor, including element types of
// collections, tuples and user types.
func (d DataType) TypeInfo() gocql.TypeInfo {
	d.check()
	return d.info
}

func (d DataType) String() string {
	d.check()
	return mapping.TypeString(d.info)
}
