package mapping

import (
	"unicode/utf8"

	"github.com/gocql/gocql"
	"go.uber.org/atomic"
)

type preparedStatement struct {
	query      string
	id         []byte
	keyspace   string
	params     []Param
	keyIndices []int

	freed atomic.Bool
}

// PreparedStatement is an opaque prepared statement handle. The zero value
// is the null handle. Everything behind it is immutable, so a handle may be
// read from many goroutines.
type PreparedStatement struct {
	ptr *preparedStatement
}

func (p PreparedStatement) IsNull() bool {
	return p.ptr == nil
}

func (p PreparedStatement) live() bool {
	return p.ptr != nil && !p.ptr.freed.Load()
}

// Prepare allocates a prepared statement from the metadata returned by a
// prepare round-trip. Parameter names are stored as received.
func Prepare(query string, id []byte, keyspace string, params []Param, keyIndices []int) (PreparedStatement, Code) {
	if !ValidText(query) || !ValidText(keyspace) {
		return PreparedStatement{}, CodeInvalidText
	}
	for _, idx := range keyIndices {
		if idx < 0 || idx >= len(params) {
			return PreparedStatement{}, CodeIndexOutOfBounds
		}
	}
	for _, p := range params {
		if p.Type == nil {
			return PreparedStatement{}, CodeBadParams
		}
	}

	livePrepared.Inc()
	return PreparedStatement{ptr: &preparedStatement{
		query:      query,
		id:         append([]byte(nil), id...),
		keyspace:   keyspace,
		params:     append([]Param(nil), params...),
		keyIndices: append([]int(nil), keyIndices...),
	}}, CodeOK
}

func DestroyPrepared(p *PreparedStatement) Code {
	if p.ptr == nil {
		return CodeInvalidHandle
	}
	if !p.ptr.freed.CompareAndSwap(false, true) {
		p.ptr = nil
		return CodeInvalidHandle
	}
	p.ptr = nil
	livePrepared.Dec()
	return CodeOK
}

// PreparedBind allocates a new statement from the template. The statement
// shares the immutable parameter metadata but not the prepared handle.
func PreparedBind(p PreparedStatement) (Statement, Code) {
	if !p.live() {
		return Statement{}, CodeInvalidHandle
	}
	s := newStatement(p.ptr.query, len(p.ptr.params))
	s.ptr.preparedID = p.ptr.id
	s.ptr.params = p.ptr.params
	s.ptr.keyspace = p.ptr.keyspace
	s.ptr.keyIndices = append([]int(nil), p.ptr.keyIndices...)
	return s, CodeOK
}

func PreparedQuery(p PreparedStatement) string {
	if !p.live() {
		return ""
	}
	return p.ptr.query
}

func PreparedID(p PreparedStatement) []byte {
	if !p.live() {
		return nil
	}
	return p.ptr.id
}

func PreparedKeyspace(p PreparedStatement) string {
	if !p.live() {
		return ""
	}
	return p.ptr.keyspace
}

func PreparedParamCount(p PreparedStatement) int {
	if !p.live() {
		return 0
	}
	return len(p.ptr.params)
}

// PreparedParamName returns the stored name of a slot. A name that is not
// valid UTF-8 reports CodeInvalidText.
func PreparedParamName(p PreparedStatement, idx int) (string, Code) {
	if !p.live() {
		return "", CodeInvalidHandle
	}
	if idx < 0 || idx >= len(p.ptr.params) {
		return "", CodeIndexOutOfBounds
	}
	name := p.ptr.params[idx].Name
	if !utf8.ValidString(name) {
		return "", CodeInvalidText
	}
	return name, CodeOK
}

func PreparedParamType(p PreparedStatement, idx int) (gocql.TypeInfo, Code) {
	if !p.live() {
		return nil, CodeInvalidHandle
	}
	if idx < 0 || idx >= len(p.ptr.params) {
		return nil, CodeIndexOutOfBounds
	}
	return p.ptr.params[idx].Type, CodeOK
}

// PreparedParamTypeByName returns the type of the first slot named name.
func PreparedParamTypeByName(p PreparedStatement, name string) (gocql.TypeInfo, Code) {
	if !p.live() {
		return nil, CodeInvalidHandle
	}
	if !ValidText(name) {
		return nil, CodeInvalidText
	}
	indices := lookupName(p.ptr.params, name)
	if len(indices) == 0 {
		return nil, CodeNameDoesNotExist
	}
	return p.ptr.params[indices[0]].Type, CodeOK
}
