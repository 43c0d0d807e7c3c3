package app

import "fmt"

// Version, Commit, and BuildTime are stamped at build time:
//
//	go build -ldflags "-X github.com/termpipe/termpipe/internal/app.Version=1.0.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion formats the build identity for startup logs and the health
// endpoint.
func BuildVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime)
}
