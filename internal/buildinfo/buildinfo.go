// Package buildinfo identifies the running binary.
package buildinfo

import (
	"runtime/debug"
	"strings"
	"sync"
)

// Set at build time with -ldflags "-X acorn/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

var vcsOnce sync.Once

// fillFromVCS takes the commit and time stamped by the go tool when the
// linker flags left them unset.
func fillFromVCS() {
	vcsOnce.Do(func() {
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		dirty := false
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if Commit == "unknown" && s.Value != "" {
					Commit = s.Value
					if len(Commit) > 12 {
						Commit = Commit[:12]
					}
				}
			case "vcs.time":
				if Date == "unknown" && s.Value != "" {
					Date = s.Value
				}
			case "vcs.modified":
				dirty = s.Value == "true"
			}
		}
		if dirty && Commit != "unknown" && !strings.HasSuffix(Commit, "+dirty") {
			Commit += "+dirty"
		}
	})
}

// Short returns a compact build identifier for titles and logs.
func Short() string {
	fillFromVCS()
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}

// String returns "version (commit, date)".
func String() string {
	fillFromVCS()
	return Version + " (" + Commit + ", " + Date + ")"
}
