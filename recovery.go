package hma

// scrubClientLocks clears every bit and write-field reference to
// clientID across all P page-lock slots, via a CAS loop per slot
// (§4.3 step 3, §4.5 "Scrubbing a dead client's locks").
func scrubClientLocks(hf *hmaFile, clientID int) {
	for slot := 0; slot < hf.pageLockSlots; slot++ {
		ptr := hf.wordPtr(int64(wordSize)*int64(1+hf.clientSlots) + int64(wordSize)*int64(slot))
		for {
			v := loadWord(ptr)
			n := clearReaderBit(v, clientID)
			if writeField(v, hf.clientSlots) == clientID {
				n = clearWriteField(n, hf.clientSlots)
			}
			if n == v {
				break
			}
			if casWord(ptr, v, n) {
				break
			}
		}
	}
}

// overcomeLock implements §4.5: given an observed conflicting word v
// on some page-lock slot, attempt to make progress against the
// blocking client. It returns (true, nil) when the blocker was found
// dead and recovered, or when a blocking wait on a live remote blocker
// has returned; (false, nil) when no progress is possible from here (a
// live in-process peer, or a live remote peer on a non-blocking
// request), which Lock reports as ErrBusyDeadlock. A non-nil error
// (never with retry) means an OS lock call failed unexpectedly.
func (s *Server) overcomeLock(v uint32, write, blocking bool) (bool, error) {
	hf := s.entry.hf
	clientSlots := hf.clientSlots

	var blocker int
	if w := writeField(v, clientSlots); w >= 0 && w != s.clientID {
		blocker = w
	} else {
		found := false
		for j := 0; j < clientSlots; j++ {
			if j != s.clientID && hasReaderBit(v, j) {
				blocker = j
				found = true
				break
			}
		}
		if !found {
			// No concrete blocker identifiable; nothing to do.
			return false, nil
		}
	}

	globalRegistry.mu.Lock()
	local := s.entry.clients[blocker]
	globalRegistry.mu.Unlock()

	if local != nil {
		// §9 open question, resolved: a live local peer never yields a
		// retry here, even for blocking requests.
		return false, nil
	}

	lk := newSlotLock(s.entry.file.Fd(), blocker+1)
	err := lk.tryWriteLock()
	if err == nil {
		// The peer is dead: recover its state.
		if rerr := s.pager.RollbackJournal(blocker); rerr != nil {
			s.entry.logger.Warn("rollback of dead peer's journal failed", "client", blocker, "err", rerr)
		}
		scrubClientLocks(hf, blocker)
		lk.unlock()
		s.entry.logger.Info("recovered dead client", "client", blocker)
		return true, nil
	}
	if !IsBusy(err) {
		return false, err
	}

	// The peer is alive.
	if blocking {
		if err := lk.blockingReadLock(); err != nil {
			return false, err
		}
		lk.unlock()
		return true, nil
	}

	return false, nil
}
