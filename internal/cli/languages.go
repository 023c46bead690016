package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language/display"

	"github.com/vtt-translator/backend/internal/subtitle/translate"
)

func newLanguagesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "languages [tag...]",
		Short: "Show how target language tags are resolved",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := args
			if len(raw) == 0 {
				cfg, err := ctx.loadConfig(false)
				if err != nil {
					return err
				}
				raw = cfg.DefaultLanguageList()
			}
			tags, err := translate.ParseLanguages(raw)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(tags))
			for _, tag := range tags {
				rows = append(rows, []string{tag.String(), translate.DisplayName(tag), display.Self.Name(tag)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Tag", "Language", "Native"}, rows))
			return nil
		},
	}
}
