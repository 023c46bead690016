package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vtt-translator/backend/internal/auth"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	var ttl time.Duration
	var subject string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token signed with API_BEARER",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig(false)
			if err != nil {
				return err
			}
			secret := strings.TrimSpace(cfg.APIBearer)
			if secret == "" {
				return fmt.Errorf("API_BEARER is required to sign tokens")
			}
			token, err := auth.NewJWTService(secret).GenerateToken(subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	cmd.Flags().StringVar(&subject, "subject", "gpt-action", "Token subject")
	return cmd
}
