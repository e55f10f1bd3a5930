package agrivaani

import (
	"runtime"
	"runtime/debug"
	"sync"
)

const (
	// Name is the application name, also used for the config directory.
	Name = "agrivaani"

	// Description is shown in CLI usage.
	Description = "multilingual translation, speech synthesis and recognition for farmers"

	// Version is the semantic version of the client.
	Version = "0.1.0"

	// Repository is the source code repository URL.
	Repository = "https://github.com/ZaguanLabs/agrivaani"
)

// Release builds stamp these with
//
//	go build -ldflags "-X github.com/ZaguanLabs/agrivaani.GitCommit=abc1234"
//
// When left empty, Build falls back to the VCS stamp Go embeds in binaries.
var (
	GitCommit = ""
	BuildDate = ""
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
}

var (
	buildOnce sync.Once
	buildInfo BuildInfo
)

// Build returns the build information, resolved once.
func Build() BuildInfo {
	buildOnce.Do(func() {
		buildInfo = resolveBuild(GitCommit, BuildDate, debug.ReadBuildInfo)
	})
	return buildInfo
}

func resolveBuild(commit, date string, read func() (*debug.BuildInfo, bool)) BuildInfo {
	b := BuildInfo{
		Version:   Version,
		Commit:    commit,
		BuildDate: date,
		GoVersion: runtime.Version(),
	}

	info, ok := read()
	if !ok {
		return b
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.Commit == "" {
				b.Commit = s.Value
			}
		case "vcs.time":
			if b.BuildDate == "" {
				b.BuildDate = s.Value
			}
		}
	}
	return b
}

// ShortCommit returns the first seven characters of the commit.
func (b BuildInfo) ShortCommit() string {
	if len(b.Commit) > 7 {
		return b.Commit[:7]
	}
	return b.Commit
}

// String returns the version with the short commit appended, e.g. 0.1.0+abc1234.
func (b BuildInfo) String() string {
	if c := b.ShortCommit(); c != "" {
		return b.Version + "+" + c
	}
	return b.Version
}

// UserAgent returns the User-Agent sent to remote services.
func UserAgent() string {
	return Name + "/" + Build().String()
}
