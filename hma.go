package hma

import (
	"sync/atomic"
	"unsafe"

	"github.com/heaparea/hma/mmap"
)

// hmaFile is the memory-mapped HMA control file: one DMS word, C
// client-slot words, P page-lock words, all 32-bit and accessed through
// atomic load/store/CAS per §5 (the initializer's zeroAll is the one
// plain write) — no other read/write discipline is imposed on them.
type hmaFile struct {
	m             *mmap.Map
	clientSlots   int
	pageLockSlots int
}

func openHmaFile(m *mmap.Map, clientSlots, pageLockSlots int) *hmaFile {
	return &hmaFile{m: m, clientSlots: clientSlots, pageLockSlots: pageLockSlots}
}

// wordPtr returns an atomic-accessible pointer to the 32-bit word at
// the given byte offset within the mapped file. offset must be word
// (4-byte) aligned, which every caller in this package guarantees by
// construction.
func (h *hmaFile) wordPtr(offset int64) *uint32 {
	data := h.m.Data()
	return (*uint32)(unsafe.Pointer(&data[offset]))
}

func (h *hmaFile) dmsWordPtr() *uint32 {
	return h.wordPtr(0)
}

func (h *hmaFile) clientWordPtr(i int) *uint32 {
	return h.wordPtr(clientSlotOffset(i))
}

func (h *hmaFile) pageLockWordPtr(page uint32) *uint32 {
	return h.wordPtr(pageLockSlotOffset(page, h.clientSlots, h.pageLockSlots))
}

func loadWord(ptr *uint32) uint32 {
	return atomic.LoadUint32(ptr)
}

func storeWord(ptr *uint32, v uint32) {
	atomic.StoreUint32(ptr, v)
}

func casWord(ptr *uint32, old, new uint32) bool {
	return atomic.CompareAndSwapUint32(ptr, old, new)
}

// zeroAll zeros every word in the file. Called only by the process
// that wins DMS initialization (§4.2 step 4).
func (h *hmaFile) zeroAll() {
	data := h.m.Data()
	for i := range data {
		data[i] = 0
	}
}

// --- page-lock word encoding (§3) ---
//
// Bits 0..clientSlots-1: shared-reader bitmask.
// Bits clientSlots..31:  write field. 0 = no writer, k>0 = client k-1
// holds RESERVED or EXCLUSIVE (the two are indistinguishable at the
// byte level; see §4.4).

// writeField extracts the write field from a page-lock word: the
// writing client's index, or -1 if there is no writer.
func writeField(v uint32, clientSlots int) int {
	k := int(v >> writeFieldShift(clientSlots))
	return k - 1
}

// hasReaderBit reports whether clientID's bit is set in v's reader
// bitmask.
func hasReaderBit(v uint32, clientID int) bool {
	return v&(1<<uint(clientID)) != 0
}

// setReaderBit returns v with clientID's bit set.
func setReaderBit(v uint32, clientID int) uint32 {
	return v | (1 << uint(clientID))
}

// clearReaderBit returns v with clientID's bit cleared.
func clearReaderBit(v uint32, clientID int) uint32 {
	return v &^ (1 << uint(clientID))
}

// setWriteField returns v with the write field set to clientID+1.
func setWriteField(v uint32, clientID, clientSlots int) uint32 {
	mask := uint32(1)<<uint(32-writeFieldShift(clientSlots)) - 1
	mask <<= writeFieldShift(clientSlots)
	v &^= mask
	return v | (uint32(clientID+1) << writeFieldShift(clientSlots))
}

// clearWriteField returns v with the write field reset to 0 (no
// writer).
func clearWriteField(v uint32, clientSlots int) uint32 {
	mask := uint32(1)<<uint(32-writeFieldShift(clientSlots)) - 1
	mask <<= writeFieldShift(clientSlots)
	return v &^ mask
}
