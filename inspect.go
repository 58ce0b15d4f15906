package hma

import (
	"fmt"
	"os"

	"github.com/heaparea/hma/mmap"
)

// Snapshot is a point-in-time, read-only view of an HMA file, for
// diagnostic tooling (cmd/hmactl). It is produced without joining the
// HMA as a client and without taking the DMS lock, so it must not be
// used as a liveness probe for other connections: a snapshot can be
// taken concurrently with live traffic and simply races with it.
type Snapshot struct {
	DMS           uint32
	ClientSlots   []uint32
	ClientCount   int
	PageLockSlots int
}

// Inspect opens the HMA file for dbPath read-only and returns a
// Snapshot of its current contents (§6 "added" diagnostic CLI).
func Inspect(dbPath string, opts ...Option) (*Snapshot, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	hmaPath := dbPath + HmaSuffix
	f, err := os.Open(hmaPath)
	if err != nil {
		return nil, WrapError(ErrCantOpen, err)
	}
	defer f.Close()

	want := fileSize(o.clientSlots, o.pageLockSlots)
	fi, err := f.Stat()
	if err != nil {
		return nil, WrapError(ErrCantOpen, err)
	}
	if fi.Size() != want {
		return nil, WrapError(ErrGeneric, fmt.Errorf("HMA file %s has size %d, expected %d for clientSlots=%d pageLockSlots=%d", hmaPath, fi.Size(), want, o.clientSlots, o.pageLockSlots))
	}

	m, err := mmap.New(int(f.Fd()), 0, int(want), false)
	if err != nil {
		return nil, WrapError(ErrGeneric, err)
	}
	defer m.Close()

	hf := openHmaFile(m, o.clientSlots, o.pageLockSlots)

	snap := &Snapshot{
		DMS:           loadWord(hf.dmsWordPtr()),
		ClientSlots:   make([]uint32, o.clientSlots),
		ClientCount:   o.clientSlots,
		PageLockSlots: o.pageLockSlots,
	}
	for i := 0; i < o.clientSlots; i++ {
		snap.ClientSlots[i] = loadWord(hf.clientWordPtr(i))
	}

	return snap, nil
}

// InspectPage returns the raw page-lock word for page and its decoded
// reader bitmask / writer index (-1 if none), re-opening the HMA file
// to compute it against the same clientSlots/pageLockSlots geometry.
func InspectPage(dbPath string, page uint32, opts ...Option) (word uint32, readers []int, writer int, err error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	hmaPath := dbPath + HmaSuffix
	f, oerr := os.Open(hmaPath)
	if oerr != nil {
		return 0, nil, -1, WrapError(ErrCantOpen, oerr)
	}
	defer f.Close()

	size := fileSize(o.clientSlots, o.pageLockSlots)
	m, merr := mmap.New(int(f.Fd()), 0, int(size), false)
	if merr != nil {
		return 0, nil, -1, WrapError(ErrGeneric, merr)
	}
	defer m.Close()

	hf := openHmaFile(m, o.clientSlots, o.pageLockSlots)
	v := loadWord(hf.pageLockWordPtr(page))

	for i := 0; i < o.clientSlots; i++ {
		if hasReaderBit(v, i) {
			readers = append(readers, i)
		}
	}
	return v, readers, writeField(v, o.clientSlots), nil
}
