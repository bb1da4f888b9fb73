//go:build !tinygo

package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"acorn/acornos/profiler"
	"acorn/internal/storage"
)

// samplesPerSecond is count*1000/runtime_ms, or 0 before the first
// millisecond.
func samplesPerSecond(s profiler.Snapshot) float64 {
	if s.RuntimeMs == 0 {
		return 0
	}
	return float64(s.Count()) * 1000 / float64(s.RuntimeMs)
}

// unit names the sample unit: wait samples are µs late, run samples are
// cycles at hz.
func unit(s profiler.Snapshot) string {
	if s.Type == "wait" {
		return "us"
	}
	switch s.Hz {
	case 1_000_000:
		return "us"
	case 1_000_000_000:
		return "ns"
	}
	return "cyc"
}

func writeStats(w io.Writer, snaps []profiler.Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "name\ttype\thist\tsamples\trate/s\tp50\tp90\tp99\tunit\t")
	for _, s := range snaps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			s.Name, s.Type, histName(s),
			humanize.Comma(int64(s.Count())),
			humanize.CommafWithDigits(samplesPerSecond(s), 1),
			edge(s.Percentile(50)), edge(s.Percentile(90)), edge(s.Percentile(99)),
			unit(s))
	}
	return tw.Flush()
}

func histName(s profiler.Snapshot) string {
	if s.Hist == "lin" {
		return fmt.Sprintf("lin/%d", s.Div)
	}
	return fmt.Sprintf("log%g", s.Exp)
}

func edge(v float64) string {
	value, prefix := humanize.ComputeSI(v)
	return humanize.FtoaWithDigits(value, 1) + prefix
}

func writeList(w io.Writer, reps []storage.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "id\tat\tage")
	now := time.Now()
	for _, r := range reps {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.ID, r.At.Format("2006-01-02 15:04:05"), humanize.RelTime(r.At, now, "ago", "from now"))
	}
	return tw.Flush()
}
