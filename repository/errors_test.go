package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsConflictCoversLockFamily(t *testing.T) {
	for _, err := range []error{
		ErrBagFinalized, ErrShipmentLocked, ErrClubLocked, ErrAlreadyClubbed,
		ErrNotClubbable, ErrAlreadyBilled, ErrNoRunAssigned, ErrEmptyInvoice,
		ErrDuplicateRecord,
	} {
		require.True(t, IsConflict(err), err.Error())
		require.True(t, IsConflict(fmt.Errorf("append sale rows: %w", err)))
	}

	require.False(t, IsConflict(ErrNotFound))
	require.False(t, IsConflict(ErrValidation))
	require.False(t, IsConflict(nil))
}
