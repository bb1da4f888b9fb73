//go:build !tinygo

// Command profstat summarises profiler reports: sample counts, sample rate
// and bin-edge percentiles per profiler.
//
//	profstat report.json
//	acorn -headless | grep '^[[{]' | profstat
//	profstat -db acorn.db -list
//	profstat -db acorn.db -id 12
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"acorn/acornos/profiler"
	"acorn/acornos/services/logger"
	"acorn/internal/storage"
)

func main() {
	var (
		dbPath string
		id     int64
		list   bool
		limit  int
	)
	flag.StringVar(&dbPath, "db", "", "Read from this sqlite report store instead of a JSON report.")
	flag.Int64Var(&id, "id", 0, "Stored report id (0 = latest). Needs -db.")
	flag.BoolVar(&list, "list", false, "List stored reports. Needs -db.")
	flag.IntVar(&limit, "limit", 20, "Number of reports listed by -list.")
	flag.Parse()

	if dbPath == "" && (list || id != 0) {
		fmt.Fprintln(os.Stderr, "error: -list and -id need -db")
		os.Exit(2)
	}

	var err error
	if dbPath != "" {
		err = runStore(context.Background(), os.Stdout, dbPath, id, list, limit)
	} else {
		err = runFile(os.Stdout, flag.Arg(0))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runFile(w io.Writer, path string) error {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	snaps, err := profiler.ParseReport(r)
	if err != nil {
		return err
	}
	return writeStats(w, snaps)
}

func runStore(ctx context.Context, w io.Writer, path string, id int64, list bool, limit int) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	st, err := storage.Open(storage.Config{Driver: "sqlite", Path: path}, logger.Nop())
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if list {
		reps, err := st.ListReports(ctx, limit)
		if err != nil {
			return err
		}
		return writeList(w, reps)
	}

	var rep storage.Report
	if id == 0 {
		rep, err = st.LatestReport(ctx)
	} else {
		rep, err = st.Report(ctx, id)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no report %d in %s", id, path)
	}
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "report %d at %s\n", rep.ID, rep.At.Format("2006-01-02 15:04:05")); err != nil {
		return err
	}
	return writeStats(w, rep.Snapshots)
}
