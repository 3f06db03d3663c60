package cassandra

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cassandra-go/cassandra/internal/mapping"
)

func testError(t *testing.T, actual error, contains ...string) {
	require.Error(t, actual)
	for _, msg := range contains {
		require.Contains(t, actual.Error(), msg)
	}
	levels := strings.Count(actual.Error(), driverErrMsg+":")
	require.Equal(t, 1, levels)
}

func TestErrorKinds(t *testing.T) {
	for code, kind := range map[mapping.Code]error{
		mapping.CodeIndexOutOfBounds: ErrAddressing,
		mapping.CodeNameDoesNotExist: ErrAddressing,
		mapping.CodeInvalidValue:     ErrEncoding,
		mapping.CodeInvalidItemType:  ErrEncoding,
		mapping.CodeNullItem:         ErrEncoding,
		mapping.CodeCollectionKind:   ErrEncoding,
		mapping.CodeBadParams:        ErrRejected,
		mapping.CodeInvalidHandle:    ErrRejected,
	} {
		t.Run(code.String(), func(t *testing.T) {
			err := codeError("op", code, ErrConstruction)
			require.ErrorIs(t, err, kind)
			testError(t, err, kind.Error(), "op", code.String())

			var codeErr *CodeError
			require.ErrorAs(t, err, &codeErr)
			require.Equal(t, ErrorCode(code), codeErr.Code)
		})
	}

	require.ErrorIs(t, codeError("op", mapping.CodeInvalidText, ErrConstruction), ErrConstruction)
	require.ErrorIs(t, codeError("op", mapping.CodeInvalidText, ErrEncoding), ErrEncoding)
}

func TestErrorMessages(t *testing.T) {
	defer VerifyAllocationCounters()

	s, err := NewStatement(`SELECT * FROM t WHERE k = ?`, 1)
	require.NoError(t, err)

	_, err = s.BindInt32(1, 0)
	testError(t, err, ErrAddressing.Error(), "LIB_INDEX_OUT_OF_BOUNDS")

	_, err = s.BindInt32ByName("k", 0)
	testError(t, err, ErrAddressing.Error(), "LIB_NAME_DOES_NOT_EXIST")

	require.NoError(t, s.Close())
	_, err = s.BindInt32(0, 0)
	testError(t, err, ErrRejected.Error(), ErrClosed.Error())
	require.False(t, errors.Is(err, ErrAddressing))

	err = unsupportedTypeError(struct{}{})
	testError(t, err, unsupportedTypeErrMsg, "struct {}")
}

func TestFaultHandler(t *testing.T) {
	var faults []error
	restore := SetFaultHandler(func(err error) {
		faults = append(faults, err)
	})
	defer restore()

	reportFault(codeError("release statement", mapping.CodeInvalidHandle, ErrRejected))
	require.Len(t, faults, 1)
	require.ErrorIs(t, faults[0], ErrRejected)

	restore()
	require.Panics(t, func() { reportFault(errors.New("boom")) })

	// nil installs the default handler.
	restoreDefault := SetFaultHandler(nil)
	require.Panics(t, func() { reportFault(errors.New("boom")) })
	restoreDefault()
}

func TestCloseCopyReportsFault(t *testing.T) {
	defer VerifyAllocationCounters()

	var faults []error
	defer SetFaultHandler(func(err error) { faults = append(faults, err) })()

	s, err := NewStatement(`SELECT 1`, 0)
	require.NoError(t, err)
	// A copy shares the handle; the second release sees it already freed.
	dup := *s
	require.NoError(t, s.Close())
	require.Empty(t, faults)

	require.NoError(t, dup.Close())
	require.Len(t, faults, 1)
	require.ErrorIs(t, faults[0], ErrRejected)

	var codeErr *CodeError
	require.ErrorAs(t, faults[0], &codeErr)
	require.Equal(t, ErrorCodeInvalidHandle, codeErr.Code)
}
