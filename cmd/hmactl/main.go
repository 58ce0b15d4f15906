// Command hmactl is a read-only diagnostic tool for inspecting a live
// HMA file. It never joins the HMA as a client and never takes the
// DMS lock, so it must not be used as a liveness probe for other
// connections.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/heaparea/hma"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] != "inspect" {
		fmt.Fprintln(os.Stderr, "usage: hmactl inspect --db PATH [--page N]")
		os.Exit(2)
	}

	fs := pflag.NewFlagSet("inspect", pflag.ExitOnError)
	dbPath := fs.String("db", "", "path to the database file")
	page := fs.Int64("page", -1, "page number to decode (optional)")
	clientSlots := fs.Int("client-slots", hma.DefaultClientSlots, "number of client slots the HMA file was created with")
	pageLockSlots := fs.Int("pagelock-slots", hma.DefaultPageLockSlots, "number of page-lock slots the HMA file was created with")
	if err := fs.Parse(os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "--db is required")
		os.Exit(2)
	}

	logger := slog.Default()

	opts := []hma.Option{
		hma.WithClientSlots(*clientSlots),
		hma.WithPageLockSlots(*pageLockSlots),
		hma.WithLogger(logger),
	}

	snap, err := hma.Inspect(*dbPath, opts...)
	if err != nil {
		logger.Error("inspect failed", "err", err)
		os.Exit(1)
	}

	fmt.Printf("DMS: %#08x\n", snap.DMS)
	for i, w := range snap.ClientSlots {
		state := "dead"
		if w != 0 {
			state = "alive"
		}
		fmt.Printf("client[%d]: %#08x (%s)\n", i, w, state)
	}

	if *page >= 0 {
		word, readers, writer, err := hma.InspectPage(*dbPath, uint32(*page), opts...)
		if err != nil {
			logger.Error("page inspect failed", "err", err)
			os.Exit(1)
		}
		fmt.Printf("page %d: word=%#08x readers=%v writer=%d\n", *page, word, readers, writer)
	}
}
