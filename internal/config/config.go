// Package config loads .env and environment-variable configuration and the
// --voice CLI flag, per spec.md §6.
package config

import (
	"flag"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const demoAPIKey = "demo-key"

// Config is the merged runtime configuration.
type Config struct {
	// Voice selects voice mode; when false the REPL text mode runs instead.
	Voice bool

	// InferenceAPIKey is the credential for the inference backend. Falls
	// back to a bundled demo key when unset.
	InferenceAPIKey string

	// UseSpeculative enables the speculative dispatcher at startup. It may
	// still auto-disable itself at runtime (§4.2).
	UseSpeculative bool

	// UseOnDeviceSTT prefers the on-device STT backend, falling back to the
	// cloud backend on setup failure.
	UseOnDeviceSTT bool

	// DisableAutoMaximize opts out of the once-per-session foreground-window
	// maximize side effect (§9 open question).
	DisableAutoMaximize bool
}

// Load parses .env (without overriding already-set process env vars, which
// is godotenv's default behavior), parses CLI flags, and returns the merged
// Config.
func Load(args []string) (Config, error) {
	// Load is a no-op (returns an error only on a malformed .env file) when
	// no .env file is present, matching the teacher's startup sequence.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return Config{}, err
		}
	}

	fs := flag.NewFlagSet("agent", flag.ContinueOnError)
	voice := fs.Bool("voice", false, "run in voice mode instead of the text REPL")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Voice:               *voice,
		InferenceAPIKey:     envOr("INFERENCE_API_KEY", demoAPIKey),
		UseSpeculative:      envBool("USE_SPECULATIVE"),
		UseOnDeviceSTT:      envBool("USE_ON_DEVICE_STT"),
		DisableAutoMaximize: envBool("DISABLE_AUTO_MAXIMIZE"),
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v, err := strconv.Atoi(os.Getenv(key))
	return err == nil && v == 1
}
