package hma

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectExhaustsClientSlots(t *testing.T) {
	t.Parallel()

	_, pager := newTestDB(t)
	opts := []Option{WithClientSlots(2), WithPageLockSlots(4)}

	a, err := Connect(pager, opts...)
	require.NoError(t, err)
	defer a.Disconnect(nil)

	b, err := Connect(pager, opts...)
	require.NoError(t, err)
	defer b.Disconnect(nil)

	require.NotEqual(t, a.clientID, b.clientID)

	_, err = Connect(pager, opts...)
	require.Error(t, err)
	require.True(t, IsBusy(err))
}

func TestDisconnectReusesClientSlot(t *testing.T) {
	t.Parallel()

	_, pager := newTestDB(t)
	opts := []Option{WithClientSlots(1), WithPageLockSlots(4)}

	a, err := Connect(pager, opts...)
	require.NoError(t, err)
	require.Equal(t, 0, a.clientID)

	require.NoError(t, a.Disconnect(nil))

	b, err := Connect(pager, opts...)
	require.NoError(t, err)
	defer b.Disconnect(nil)
	require.Equal(t, 0, b.clientID)

	// I5: the stored word for the new index is exactly 1 on return.
	require.Equal(t, uint32(1), loadWord(b.entry.hf.clientWordPtr(0)))
}
