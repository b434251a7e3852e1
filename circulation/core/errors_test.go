package core_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
)

func Test_Errors_KindAndCode(t *testing.T) {
	tests := []struct {
		err          error
		expectedKind error
		expectedCode core.ErrorCode
	}{
		{err: core.ErrCopyNotFound, expectedKind: core.ErrNotFound, expectedCode: core.CodeCopyNotFound},
		{err: fmt.Errorf("copy %s: %w", "c1", core.ErrCopyNotAvailable), expectedKind: core.ErrConflict, expectedCode: core.CodeCopyNotAvailable},
		{err: core.ErrBorrowingLimitExceeded, expectedKind: core.ErrPolicyViolation, expectedCode: core.CodeBorrowingLimitExceeded},
		{err: errors.Join(core.ErrBusy, errors.New("deadline")), expectedKind: core.ErrBusy, expectedCode: core.CodeBusy},
		{err: errors.New("disk on fire"), expectedKind: nil, expectedCode: ""},
	}

	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			assert.Equal(t, tc.expectedKind, core.KindOf(tc.err))
			assert.Equal(t, tc.expectedCode, core.CodeOf(tc.err))
		})
	}

	assert.True(t, core.IsDomainError(core.ErrNoActiveIssue))
	assert.False(t, core.IsDomainError(core.ErrBusy))
	assert.False(t, errors.Is(core.ErrNoActiveIssue, core.ErrAlreadyReturned))
}
