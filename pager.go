package hma

// Pager is the narrow interface the HMA core consumes from the
// surrounding SQL engine's pager/B-tree layer. The engine itself is an
// external collaborator and is never reimplemented here.
type Pager interface {
	// Filename returns the path of the database file this pager backs.
	Filename() string

	// RollbackJournal rolls back and clears the journal owned by the
	// given client index. It must be safe to call for any index,
	// including ones that were never used.
	RollbackJournal(clientID int) error
}

// ExclusiveLocker grants best-effort exclusive OS-level access to the
// database file. It is consumed only by last-closer cleanup
// (Disconnect) when deciding whether to unlink the HMA file.
type ExclusiveLocker interface {
	LockExclusive() error
	Unlock() error
}
