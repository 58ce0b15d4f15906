// Package journalpager is a minimal, file-backed stand-in for the SQL
// engine's pager. It exists so the integration tests can exercise a
// real Pager implementation — real files, real rollback —
// without pulling in a full pager/B-tree engine that is explicitly out
// of scope for the lock manager.
package journalpager

import (
	"fmt"
	"os"
)

// Pager implements hma.Pager against a database file on disk, with one
// journal file per client index.
type Pager struct {
	dbPath string
}

// New returns a Pager backing the database at dbPath. dbPath must
// already exist.
func New(dbPath string) *Pager {
	return &Pager{dbPath: dbPath}
}

// Filename returns the database path this pager backs.
func (p *Pager) Filename() string {
	return p.dbPath
}

func (p *Pager) journalPath(clientID int) string {
	return fmt.Sprintf("%s-journal-%d", p.dbPath, clientID)
}

// BeginWrite records pending page data for clientID's in-flight
// transaction, creating the journal file if needed.
func (p *Pager) BeginWrite(clientID int, pageData []byte) error {
	f, err := os.OpenFile(p.journalPath(clientID), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(pageData)
	return err
}

// RollbackJournal implements hma.Pager: it removes clientID's journal
// file, if one exists. Safe to call for an index that was never used.
func (p *Pager) RollbackJournal(clientID int) error {
	err := os.Remove(p.journalPath(clientID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
