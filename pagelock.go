package hma

import "time"

// Begin implements §4.4 begin: it takes the blocking WRITER token on
// this connection's own client slot (serializing this connection's
// own transactions) and then the SHARED lock on page 0.
func (s *Server) Begin() error {
	lk := newSlotLock(s.entry.file.Fd(), s.clientID+1)
	if err := lk.lock(LockWrite, true); err != nil {
		return err
	}
	s.ownSlotHeld = true

	if err := s.Lock(0, false, true); err != nil {
		lk.blockingReadLock()
		s.ownSlotHeld = false
		return err
	}
	return nil
}

// HasLock implements §4.4 has_lock: a read-only inspection of the
// slot word, no atomicity needed for the answer itself.
func (s *Server) HasLock(page uint32, write bool) bool {
	v := loadWord(s.entry.hf.pageLockWordPtr(page))
	clientSlots := s.entry.hf.clientSlots
	if write {
		return writeField(v, clientSlots) == s.clientID
	}
	return hasReaderBit(v, s.clientID)
}

// Lock implements §4.4 lock, the central acquisition algorithm.
func (s *Server) Lock(page uint32, write, blocking bool) error {
	hf := s.entry.hf
	clientSlots := hf.clientSlots
	ptr := hf.pageLockWordPtr(page)

	v := loadWord(ptr)

	// Fast path: already held.
	if write && writeField(v, clientSlots) == s.clientID {
		return nil
	}
	if !write && hasReaderBit(v, s.clientID) {
		return nil
	}

	s.locks = append(s.locks, page)

	reservedInstalled := false

	for {
		w := writeField(v, clientSlots)

		conflict := w >= 0 && w != s.clientID
		if write && !conflict {
			for j := 0; j < clientSlots; j++ {
				if j != s.clientID && hasReaderBit(v, j) {
					conflict = true
					break
				}
			}
		}

		for conflict {
			if write && blocking && w < 0 && !reservedInstalled {
				nv := setWriteField(v, s.clientID, clientSlots)
				if !casWord(ptr, v, nv) {
					v = loadWord(ptr)
					w = writeField(v, clientSlots)
					continue
				}
				v = nv
				reservedInstalled = true
				w = s.clientID
				// Re-evaluate conflict under RESERVED: readers other
				// than ourselves still block EXCLUSIVE.
				conflict = false
				for j := 0; j < clientSlots; j++ {
					if j != s.clientID && hasReaderBit(v, j) {
						conflict = true
						break
					}
				}
				if !conflict {
					break
				}
			}

			retry, err := s.overcomeLock(v, write, blocking)
			if err != nil {
				if reservedInstalled {
					rv := loadWord(ptr)
					for {
						nv := clearWriteField(rv, clientSlots)
						if casWord(ptr, rv, nv) {
							break
						}
						rv = loadWord(ptr)
					}
				}
				s.locks = s.locks[:len(s.locks)-1]
				return err
			}
			if retry {
				v = loadWord(ptr)
				w = writeField(v, clientSlots)
				conflict = w >= 0 && w != s.clientID
				if write && !conflict {
					for j := 0; j < clientSlots; j++ {
						if j != s.clientID && hasReaderBit(v, j) {
							conflict = true
							break
						}
					}
				}
				continue
			}

			blocker := w
			if blocker < 0 || blocker == s.clientID {
				for j := 0; j < clientSlots; j++ {
					if j != s.clientID && hasReaderBit(v, j) {
						blocker = j
						break
					}
				}
			}
			s.entry.logger.Warn("lock conflict, no progress possible", "page", page, "blockedBy", blocker)
			if reservedInstalled {
				rv := loadWord(ptr)
				for {
					nv := clearWriteField(rv, clientSlots)
					if casWord(ptr, rv, nv) {
						break
					}
					rv = loadWord(ptr)
				}
			}
			s.locks = s.locks[:len(s.locks)-1]
			return NewError(ErrBusyDeadlock)
		}

		newV := setReaderBit(v, s.clientID)
		if write {
			newV = setWriteField(newV, s.clientID, clientSlots)
		}
		if casWord(ptr, v, newV) {
			break
		}
		v = loadWord(ptr)
	}

	if page == 0 {
		s.writerStart = time.Now()
	}

	return nil
}

// End implements §4.4 end: releases every lock recorded in this
// connection's history and folds WRITER time accounting.
func (s *Server) End() error {
	hf := s.entry.hf
	clientSlots := hf.clientSlots

	for _, page := range s.locks {
		ptr := hf.pageLockWordPtr(page)
		for {
			v := loadWord(ptr)
			n := clearReaderBit(v, s.clientID)
			if writeField(v, clientSlots) == s.clientID {
				n = clearWriteField(n, clientSlots)
			}
			if n == v {
				break
			}
			if casWord(ptr, v, n) {
				break
			}
		}

		if page == 0 && !s.writerStart.IsZero() {
			s.writerHeldTotal += time.Since(s.writerStart)
			s.writerStart = time.Time{}
			if secs := int64(s.writerHeldTotal / time.Second); secs > s.loggedSeconds {
				s.loggedSeconds = secs
				s.entry.logger.Info("cumulative WRITER time crossed a second boundary", "client", s.clientID, "totalSeconds", secs)
			}
		}
	}

	s.locks = s.locks[:0]

	if s.ownSlotHeld {
		lk := newSlotLock(s.entry.file.Fd(), s.clientID+1)
		if err := lk.blockingReadLock(); err != nil {
			return err
		}
		s.ownSlotHeld = false
	}

	return nil
}

// ReleaseWriteLocks is exposed for API symmetry with the original
// design but is a documented no-op (§9).
func (s *Server) ReleaseWriteLocks() error {
	return nil
}
