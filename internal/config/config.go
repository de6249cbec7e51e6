// Package config resolves runtime settings for a run. Precedence is
// flag, then environment, then a .env file in the working directory.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	envBaseURL = "CONVOCHECK_BASE_URL"
	envTimeout = "CONVOCHECK_TIMEOUT"
)

// Settings is the resolved configuration for one invocation.
type Settings struct {
	BaseURL string
	Timeout time.Duration
}

// Resolve produces the effective settings. flagBaseURL wins when set;
// otherwise the environment is consulted, with .env loaded first so
// local development does not need exported variables. A missing base
// URL is a setup failure.
func Resolve(flagBaseURL string, flagTimeout time.Duration) (Settings, error) {
	// Ignore a missing .env; it is optional.
	_ = godotenv.Load()

	s := Settings{
		BaseURL: firstNonEmpty(flagBaseURL, os.Getenv(envBaseURL)),
		Timeout: flagTimeout,
	}

	if s.Timeout <= 0 {
		if v := os.Getenv(envTimeout); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return Settings{}, fmt.Errorf("invalid %s %q: %w", envTimeout, v, err)
			}
			s.Timeout = d
		}
	}

	if s.BaseURL == "" {
		return Settings{}, fmt.Errorf("no backend URL: pass --base-url or set %s", envBaseURL)
	}
	return s, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
