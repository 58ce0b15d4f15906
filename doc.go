// Package hma implements a multi-process, page-granularity lock
// manager: a shared memory-mapped file that coordinates several OS
// processes opening the same database file, so that connections from
// different processes serialize access to individual pages while
// allowing safe concurrent readers, and a crashed connection never
// blocks the ones that remain.
//
// The package consumes the surrounding SQL engine's pager and B-tree
// layer only through the narrow Pager and ExclusiveLocker interfaces;
// it does not implement a pager itself.
//
// Basic usage:
//
//	conn, err := hma.Connect(pager)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Disconnect(nil)
//
//	if err := conn.Begin(); err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.End()
//
//	if err := conn.Lock(42, false, true); err != nil {
//	    log.Fatal(err)
//	}
package hma
