package hma

import (
	"log/slog"
	"os"
	"time"
)

// Server is one connection's private, in-process state (§3
// "Per-connection state"). It is not safe for concurrent use by more
// than one goroutine at a time, matching §5's "owning thread" model.
type Server struct {
	clientID int
	entry    *hmaEntry
	pager    Pager

	locks []uint32 // lock-history: page numbers this connection has a bit set for

	writerStart     time.Time
	writerHeldTotal time.Duration
	loggedSeconds   int64

	ownSlotHeld bool // whether the writer token from Begin is currently held
}

// Connect implements §4.3 connect: it joins the HMA backing pager's
// database, claiming a free client slot and recovering it first if
// the previous holder exited abnormally.
func Connect(pager Pager, opts ...Option) (*Server, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	entry, err := globalRegistry.openHMA(pager, o)
	if err != nil {
		return nil, err
	}

	server := &Server{entry: entry, pager: pager}

	for i := 0; i < entry.clientSlots; i++ {
		// OS locks never conflict within one process, so an index held by
		// an in-process connection is skipped, and reserved, under the mutex.
		globalRegistry.mu.Lock()
		if entry.clients[i] != nil {
			globalRegistry.mu.Unlock()
			continue
		}
		entry.clients[i] = server
		globalRegistry.mu.Unlock()

		lk := newSlotLock(entry.file.Fd(), i+1)
		if err := lk.tryWriteLock(); err != nil {
			globalRegistry.mu.Lock()
			entry.clients[i] = nil
			globalRegistry.mu.Unlock()
			if IsBusy(err) {
				continue
			}
			return nil, err
		}

		if v := loadWord(entry.hf.clientWordPtr(i)); v != 0 {
			if rerr := pager.RollbackJournal(i); rerr != nil {
				entry.logger.Warn("rollback of stale client slot failed", "client", i, "err", rerr)
			}
			scrubClientLocks(entry.hf, i)
			storeWord(entry.hf.clientWordPtr(i), 0)
		}

		if err := lk.blockingReadLock(); err != nil {
			return nil, err
		}

		storeWord(entry.hf.clientWordPtr(i), 1)

		server.clientID = i
		return server, nil
	}

	globalRegistry.closeHMA(entry)
	return nil, NewError(ErrBusy)
}

// Disconnect implements §4.3 disconnect. locker, if non-nil, is used
// for best-effort last-closer cleanup of the HMA file (§4.2's unlink
// condition).
func (s *Server) Disconnect(locker ExclusiveLocker) error {
	entry := s.entry

	globalRegistry.mu.Lock()
	storeWord(entry.hf.clientWordPtr(s.clientID), 0)
	entry.clients[s.clientID] = nil
	globalRegistry.mu.Unlock()

	lk := newSlotLock(entry.file.Fd(), s.clientID+1)
	if err := lk.unlock(); err != nil {
		entry.logger.Warn("failed to release client slot lock", "client", s.clientID, "err", err)
	}

	isLast := false
	globalRegistry.mu.Lock()
	if entry.refcount == 1 {
		isLast = true
	}
	globalRegistry.mu.Unlock()

	if isLast && locker != nil {
		if err := locker.LockExclusive(); err == nil {
			removeHmaFile(entry.hmaPath, entry.logger)
			locker.Unlock()
		}
	}

	return globalRegistry.closeHMA(entry)
}

func removeHmaFile(path string, logger *slog.Logger) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to unlink HMA file on last close", "path", path, "err", err)
	}
}
