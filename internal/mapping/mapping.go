// Package mapping is the resource layer behind statements and prepared
// statements. It hands out opaque handles, reports failures as status codes
// and never interprets them further.
package mapping

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/atomic"
)

// ------------------------------------------------------------------ //
// Enums
// ------------------------------------------------------------------ //

// Code is a status code returned by every fallible resource-layer call.
type Code uint32

const (
	CodeOK Code = iota
	CodeBadParams
	CodeIndexOutOfBounds
	CodeNameDoesNotExist
	CodeInvalidText
	CodeInvalidValue
	CodeInvalidItemType
	CodeNullItem
	CodeCollectionKind
	CodeInvalidHandle
)

var codeNames = map[Code]string{
	CodeOK:               "OK",
	CodeBadParams:        "LIB_BAD_PARAMS",
	CodeIndexOutOfBounds: "LIB_INDEX_OUT_OF_BOUNDS",
	CodeNameDoesNotExist: "LIB_NAME_DOES_NOT_EXIST",
	CodeInvalidText:      "LIB_INVALID_TEXT",
	CodeInvalidValue:     "LIB_INVALID_VALUE",
	CodeInvalidItemType:  "LIB_INVALID_ITEM_TYPE",
	CodeNullItem:         "LIB_NULL_ITEM",
	CodeCollectionKind:   "LIB_INVALID_COLLECTION_KIND",
	CodeInvalidHandle:    "LIB_INVALID_HANDLE",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CODE(%d)", uint32(c))
}

// ProtoVersion is the native protocol version used to encode values.
const ProtoVersion = 4

// ------------------------------------------------------------------ //
// Allocation counters
// ------------------------------------------------------------------ //

var (
	liveStatements = atomic.NewInt64(0)
	livePrepared   = atomic.NewInt64(0)
)

// AllocationCounters returns the number of live statement and prepared
// statement handles.
func AllocationCounters() (statements int64, prepared int64) {
	return liveStatements.Load(), livePrepared.Load()
}

// VerifyAllocationCounters panics if any handle is still allocated.
func VerifyAllocationCounters() {
	statements, prepared := AllocationCounters()
	if statements != 0 || prepared != 0 {
		panic(fmt.Sprintf("mapping: leaked handles: statements=%d prepared=%d", statements, prepared))
	}
}

// ------------------------------------------------------------------ //
// Text
// ------------------------------------------------------------------ //

// ValidText reports whether s can be represented in the resource layer's
// text encoding: valid UTF-8 without an embedded NUL terminator.
func ValidText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}
