package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const envFileOverride = "VTT_TRANSLATOR_ENV_FILE"

// EnvLoader loads .env files before configuration is read. Variables already
// present in the process environment win over file values.
type EnvLoader struct {
	value       string
	defaultPath string
}

// AddEnvFlag registers a persistent --env flag on cmd and returns an EnvLoader.
func AddEnvFlag(cmd *cobra.Command, defaultPath string) *EnvLoader {
	if defaultPath == "" {
		defaultPath = ".env"
	}
	l := &EnvLoader{defaultPath: defaultPath}
	cmd.PersistentFlags().StringVar(&l.value, "env", defaultPath, "Path to the .env file")
	return l
}

// Load resolves and loads the env file. A missing default file is not an
// error; a missing file that was asked for explicitly is.
func (l *EnvLoader) Load() (string, error) {
	if l == nil {
		return "", fmt.Errorf("env loader is nil")
	}

	if custom := strings.TrimSpace(os.Getenv(envFileOverride)); custom != "" {
		if err := godotenv.Load(custom); err != nil {
			return "", fmt.Errorf("load %s=%s: %w", envFileOverride, custom, err)
		}
		return custom, nil
	}

	requested := strings.TrimSpace(l.value)
	if requested == "" {
		requested = l.defaultPath
	}

	if err := godotenv.Load(requested); err != nil {
		if requested == l.defaultPath && os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load env file from %s: %w", requested, err)
	}
	return requested, nil
}
