package hma

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/heaparea/hma/mmap"
)

// hmaEntry is one process-wide registry node: the open HMA file
// backing one database, shared by every in-process connection to that
// database (§3 "process-wide registry", §4.2).
type hmaEntry struct {
	path          string // database path
	hmaPath       string // path + HmaSuffix
	file          *os.File
	hf            *hmaFile
	identity      fileIdentity
	clientSlots   int
	pageLockSlots int
	refcount      int
	clients       []*Server // aClient[]: in-process back-pointers, index by client id
	logger        *slog.Logger

	next *hmaEntry
}

// registry is the process-wide table of open HMA files, keyed by
// (device, inode), guarded by one mutex (§5).
type registry struct {
	mu   sync.Mutex
	head *hmaEntry
}

var globalRegistry = &registry{}

// openHMA implements §4.2 open_hma. pager supplies the database path
// and the journal-rollback hook used when this process wins DMS
// initialization.
func (r *registry) openHMA(pager Pager, opts *Options) (*hmaEntry, error) {
	dbPath := pager.Filename()

	id, err := statIdentity(dbPath)
	if err != nil {
		return nil, WrapError(ErrCantOpen, err)
	}

	r.mu.Lock()
	for e := r.head; e != nil; e = e.next {
		if e.identity == id {
			e.refcount++
			r.mu.Unlock()
			return e, nil
		}
	}

	entry := &hmaEntry{
		path:          dbPath,
		hmaPath:       dbPath + HmaSuffix,
		identity:      id,
		clientSlots:   opts.clientSlots,
		pageLockSlots: opts.pageLockSlots,
		refcount:      1,
		clients:       make([]*Server, opts.clientSlots),
		logger:        opts.logger,
	}
	entry.next = r.head
	r.head = entry

	// The mutex stays held until the file is open and mapped, so a
	// concurrent openHMA never returns a half-initialized entry.
	if err := entry.open(pager); err != nil {
		r.unlink(entry)
		r.mu.Unlock()
		return nil, err
	}
	r.mu.Unlock()

	return entry, nil
}

// unlink removes entry from the list. Caller holds r.mu.
func (r *registry) unlink(entry *hmaEntry) {
	if r.head == entry {
		r.head = entry.next
		return
	}
	for e := r.head; e != nil; e = e.next {
		if e.next == entry {
			e.next = entry.next
			return
		}
	}
}

// closeHMA implements §4.2 close_hma.
func (r *registry) closeHMA(entry *hmaEntry) error {
	r.mu.Lock()
	entry.refcount--
	if entry.refcount > 0 {
		r.mu.Unlock()
		return nil
	}
	r.unlink(entry)
	r.mu.Unlock()

	return entry.close()
}

// open opens-or-creates the HMA file, claims DMS initialization if no
// peer holds it, and downgrades to the long-lived reader lock (§4.2
// steps 4-5).
func (e *hmaEntry) open(pager Pager) error {
	f, err := os.OpenFile(e.hmaPath, os.O_RDWR|os.O_CREATE, HmaFileMode)
	if err != nil {
		return WrapError(ErrCantOpen, err)
	}
	e.file = f

	dms := newSlotLock(f.Fd(), dmsSlotIndex)
	size := fileSize(e.clientSlots, e.pageLockSlots)

	if err := dms.tryWriteLock(); err == nil {
		// We are the initializer: no other process holds even a
		// reader lock on the DMS slot.
		if err := f.Truncate(size); err != nil {
			f.Close()
			return WrapError(ErrCantOpen, err)
		}

		m, err := mmap.New(int(f.Fd()), 0, int(size), true)
		if err != nil {
			f.Close()
			return WrapError(ErrGeneric, err)
		}
		e.hf = openHmaFile(m, e.clientSlots, e.pageLockSlots)
		e.hf.zeroAll()

		for i := 0; i < e.clientSlots; i++ {
			if err := pager.RollbackJournal(i); err != nil {
				e.logger.Warn("rollback during DMS initialization failed", "client", i, "err", err)
			}
		}
		e.logger.Info("initialized HMA file", "path", e.hmaPath, "clientSlots", e.clientSlots, "pageLockSlots", e.pageLockSlots)
	} else if !IsBusy(err) {
		f.Close()
		return err
	} else {
		// A peer is alive; just map the existing file.
		fi, err := f.Stat()
		if err != nil {
			f.Close()
			return WrapError(ErrCantOpen, err)
		}
		if fi.Size() != size {
			f.Close()
			return WrapError(ErrGeneric, fmt.Errorf("HMA file %s has unexpected size %d, want %d", e.hmaPath, fi.Size(), size))
		}
		m, err := mmap.New(int(f.Fd()), 0, int(size), true)
		if err != nil {
			f.Close()
			return WrapError(ErrGeneric, err)
		}
		e.hf = openHmaFile(m, e.clientSlots, e.pageLockSlots)
	}

	if err := dms.blockingReadLock(); err != nil {
		e.hf.m.Close()
		f.Close()
		return err
	}

	return nil
}

// close unmaps and closes the HMA file. The DMS reader lock is
// released implicitly when the fd is closed.
func (e *hmaEntry) close() error {
	if e.hf != nil {
		e.hf.m.Close()
	}
	if e.file != nil {
		return e.file.Close()
	}
	return nil
}
