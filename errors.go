package cassandra

import (
	"errors"
	"fmt"

	"github.com/cassandra-go/cassandra/internal/mapping"
)

// ErrorCode is the status code reported by the resource layer.
type ErrorCode mapping.Code

const (
	ErrorCodeBadParams        = ErrorCode(mapping.CodeBadParams)
	ErrorCodeIndexOutOfBounds = ErrorCode(mapping.CodeIndexOutOfBounds)
	ErrorCodeNameDoesNotExist = ErrorCode(mapping.CodeNameDoesNotExist)
	ErrorCodeInvalidText      = ErrorCode(mapping.CodeInvalidText)
	ErrorCodeInvalidValue     = ErrorCode(mapping.CodeInvalidValue)
	ErrorCodeInvalidItemType  = ErrorCode(mapping.CodeInvalidItemType)
	ErrorCodeNullItem         = ErrorCode(mapping.CodeNullItem)
	ErrorCodeCollectionKind   = ErrorCode(mapping.CodeCollectionKind)
	ErrorCodeInvalidHandle    = ErrorCode(mapping.CodeInvalidHandle)
)

func (c ErrorCode) String() string {
	return mapping.Code(c).String()
}

// CodeError carries the resource-layer code of a failed operation. Use
// errors.As to retrieve it.
type CodeError struct {
	Op   string
	Code ErrorCode
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

func getError(kind error, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", driverErrMsg, kind)
	}
	return fmt.Errorf("%s: %w: %w", driverErrMsg, kind, err)
}

// codeError classifies a resource-layer code. textKind is the kind reported
// for CodeInvalidText, which depends on whether the offending text was a
// value or a query, keyspace or parameter name.
func codeError(op string, code mapping.Code, textKind error) error {
	var kind error
	switch code {
	case mapping.CodeIndexOutOfBounds, mapping.CodeNameDoesNotExist:
		kind = ErrAddressing
	case mapping.CodeInvalidText:
		kind = textKind
	case mapping.CodeInvalidValue, mapping.CodeInvalidItemType, mapping.CodeNullItem, mapping.CodeCollectionKind:
		kind = ErrEncoding
	default:
		kind = ErrRejected
	}
	return getError(kind, &CodeError{Op: op, Code: ErrorCode(code)})
}

func closedError(op string) error {
	return getError(ErrRejected, fmt.Errorf("%w: %s", ErrClosed, op))
}

func unsupportedTypeError(v any) error {
	return getError(ErrEncoding, fmt.Errorf("%s: %T", unsupportedTypeErrMsg, v))
}

const (
	driverErrMsg          = "cassandra"
	unsupportedTypeErrMsg = "unsupported value type"
)

var (
	// ErrConstruction reports text that cannot be represented in the resource
	// layer's encoding: a query string, keyspace, payload name or parameter name.
	ErrConstruction = errors.New("construction error")
	// ErrAddressing reports an out-of-range position or an unknown parameter
	// name. Name-based operations on ad hoc statements always fail this way.
	ErrAddressing = errors.New("addressing error")
	// ErrEncoding reports a value that cannot be represented in wire form.
	ErrEncoding = errors.New("encoding error")
	// ErrRejected reports any other failure of the resource layer.
	ErrRejected = errors.New("rejected by resource layer")
	// ErrClosed is reported, together with ErrRejected, by operations on a
	// released Statement or PreparedStatement.
	ErrClosed = errors.New("use of released handle")
)
