package hma

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestPageLockWordEncoding(t *testing.T) {
	t.Parallel()

	const clientSlots = 16

	var v uint32
	assert.Equal(t, -1, writeField(v, clientSlots))

	v = setReaderBit(v, 3)
	assert.True(t, hasReaderBit(v, 3))
	assert.False(t, hasReaderBit(v, 4))

	v = setWriteField(v, 5, clientSlots)
	assert.Equal(t, 5, writeField(v, clientSlots))
	// Reader bit 3 survives setting the write field (RESERVED keeps
	// existing readers per §3 invariant 2).
	assert.True(t, hasReaderBit(v, 3))

	v = clearWriteField(v, clientSlots)
	assert.Equal(t, -1, writeField(v, clientSlots))
	assert.True(t, hasReaderBit(v, 3))

	v = clearReaderBit(v, 3)
	assert.False(t, hasReaderBit(v, 3))
	assert.Equal(t, uint32(0), v)
}

func TestPageLockSlotHashing(t *testing.T) {
	t.Parallel()

	const pageLockSlots = 8
	if diff := cmp.Diff(uint32(2), pageLockSlot(10, pageLockSlots)); diff != "" {
		t.Errorf("pageLockSlot mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, pageLockSlot(2, pageLockSlots), pageLockSlot(10, pageLockSlots))
}

func TestFileSizeLayout(t *testing.T) {
	t.Parallel()

	// §6: 4*(1+C+P) bytes.
	assert.Equal(t, int64(4*(1+16+262144)), fileSize(16, 262144))
	assert.Equal(t, int64(4), clientSlotOffset(0))
	assert.Equal(t, int64(4*17), pageLockSlotOffset(0, 16, 8))
}
