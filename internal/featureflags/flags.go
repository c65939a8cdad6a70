package featureflags

import (
	"os"
	"strings"
)

// Known flags.
const (
	// DemoLogin exposes POST /api/auth/demo-login.
	DemoLogin = "DEMO_LOGIN"
	// GenerativeChat lets the chat fall back to a remote model when no rule
	// matches.
	GenerativeChat = "GENERATIVE_CHAT"
)

// Flags answers whether a named flag is on.
type Flags struct {
	lookup func(string) string
}

// FromEnv reads flags from FLAG_<NAME> environment variables.
func FromEnv() Flags {
	return Flags{lookup: os.Getenv}
}

// Static returns flags fixed to the given values, keyed by flag name.
func Static(values map[string]bool) Flags {
	return Flags{lookup: func(key string) string {
		if values[strings.TrimPrefix(key, "FLAG_")] {
			return "true"
		}
		return ""
	}}
}

// Enabled returns true if the flag is set to true/1/yes/on (case-insensitive)
func (f Flags) Enabled(name string) bool {
	if f.lookup == nil {
		return false
	}
	v := f.lookup("FLAG_" + strings.ToUpper(name))
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Enabled checks a flag against the process environment.
func Enabled(name string) bool {
	return FromEnv().Enabled(name)
}
