// Package version reports which markgen build is running and checks it
// against a project's min_version.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Set at build time via -ldflags "-X github.com/teranos/markgen/version.Version=...".
var (
	Version    = "dev"
	CommitHash = "dev"
	BuildTime  = "unknown"
)

// Info describes the running binary.
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get returns the build information. Binaries installed with `go install`
// carry no ldflags; their module version and VCS stamp are used instead.
func Get() Info {
	info := Info{
		Version:    Version,
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		fillFromBuildInfo(&info, bi)
	}
	return info
}

func fillFromBuildInfo(info *Info, bi *debug.BuildInfo) {
	if info.IsDev() && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = strings.TrimPrefix(bi.Main.Version, "v")
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.CommitHash == "dev" {
				info.CommitHash = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = s.Value
			}
		}
	}
}

// String returns a human-readable version string
func (i Info) String() string {
	return fmt.Sprintf("markgen %s (commit %s, built %s)", i.Version, i.CommitHash, i.BuildTime)
}

// Short returns the version and an abbreviated commit.
func (i Info) Short() string {
	commit := i.CommitHash
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return i.Version + "+" + commit
}

// IsDev reports an untagged build.
func (i Info) IsDev() bool {
	return i.Version == "dev" || i.Version == ""
}

// Satisfies reports whether this build meets a config's min_version.
// Development builds satisfy every requirement.
func (i Info) Satisfies(minVersion string) (bool, error) {
	if minVersion == "" || i.IsDev() {
		return true, nil
	}
	constraint, err := semver.NewConstraint(">= " + minVersion)
	if err != nil {
		return false, fmt.Errorf("invalid min_version %q: %w", minVersion, err)
	}
	current, err := semver.NewVersion(i.Version)
	if err != nil {
		return false, fmt.Errorf("invalid build version %q: %w", i.Version, err)
	}
	return constraint.Check(current), nil
}
