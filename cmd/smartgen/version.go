package main

import (
	_ "embed"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var embeddedVersion string

// buildInfo is replaced in tests.
var buildInfo = debug.ReadBuildInfo

// Version returns "smartgen <version>". A module version from go install
// wins over the embedded VERSION file; development builds add the first
// seven characters of the VCS revision and mark uncommitted changes.
func Version() string {
	version := strings.TrimSpace(embeddedVersion)
	info, ok := buildInfo()
	if !ok {
		return "smartgen " + version
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return "smartgen " + v
	}

	var rev string
	var modified bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if len(s.Value) >= 7 {
				rev = s.Value[:7]
			}
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	version = "devel-" + version
	if rev != "" {
		version += "+" + rev
		if modified {
			version += ".dirty"
		}
	}
	return "smartgen " + version
}
