package cli

import (
	"github.com/spf13/cobra"

	"github.com/vtt-translator/backend/internal/config"
)

type commandContext struct {
	env     *EnvLoader
	envFile string
	version string
}

// loadConfig reads the environment, validating it when strict is set
func (c *commandContext) loadConfig(strict bool) (*config.Config, error) {
	if strict {
		return config.Load()
	}
	return config.Parse()
}

// NewRootCommand builds the vtt-translator command tree. Running it without a
// subcommand starts the server.
func NewRootCommand(version string) *cobra.Command {
	ctx := &commandContext{version: version}

	rootCmd := &cobra.Command{
		Use:           "vtt-translator",
		Short:         "Translate WebVTT subtitles into several languages",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, err := ctx.env.Load()
			if err != nil {
				return err
			}
			ctx.envFile = path
			return nil
		},
	}
	ctx.env = AddEnvFlag(rootCmd, ".env")

	serveCmd := newServeCommand(ctx)
	rootCmd.RunE = serveCmd.RunE

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newTranslateCommand(ctx))
	rootCmd.AddCommand(newTokenCommand(ctx))
	rootCmd.AddCommand(newLanguagesCommand(ctx))

	return rootCmd
}
