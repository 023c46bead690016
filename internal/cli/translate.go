package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vtt-translator/backend/internal/bundle"
	"github.com/vtt-translator/backend/internal/logging"
	"github.com/vtt-translator/backend/internal/subtitle/translate"
	"github.com/vtt-translator/backend/internal/subtitle/vtt"
)

type translateFlags struct {
	langs  []string
	model  string
	engine string
	preset string
	wrap   int
	out    string
	zip    bool
}

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	var flags translateFlags

	cmd := &cobra.Command{
		Use:   "translate <file.vtt>",
		Short: "Translate a local WebVTT file into <name>.<lang>.vtt files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig(true)
			if err != nil {
				return err
			}
			logger, err := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Environment, cfg.LogLevel)
			if err != nil {
				return err
			}

			infile := args[0]
			data, err := os.ReadFile(infile)
			if err != nil {
				return fmt.Errorf("read %s: %w", infile, err)
			}
			doc, err := vtt.Parse(data)
			if err != nil {
				return fmt.Errorf("parse %s: %w", infile, err)
			}

			raw := cfg.DefaultLanguageList()
			if len(flags.langs) > 0 {
				raw = nil
				for _, l := range flags.langs {
					raw = append(raw, translate.SplitLanguages(l)...)
				}
			}
			tags, err := translate.ParseLanguages(raw)
			if err != nil {
				return err
			}

			wrap := cfg.Wrap
			if flags.wrap != 0 {
				if flags.wrap < 10 || flags.wrap > 200 {
					return fmt.Errorf("--wrap must be between 10 and 200")
				}
				wrap = flags.wrap
			}
			if !translate.ValidPreset(flags.preset) {
				return fmt.Errorf("unknown preset %q, expected one of %s", flags.preset, strings.Join(translate.Presets(), ", "))
			}

			pipeline := newPipeline(cfg, logger)
			results, err := pipeline.TranslateAll(cmd.Context(), doc, translate.Request{
				Engine:    flags.engine,
				Model:     flags.model,
				Preset:    flags.preset,
				Wrap:      wrap,
				Languages: tags,
			})
			if err != nil {
				return fmt.Errorf("%s", translate.Redact(err.Error(), cfg.Secrets()...))
			}
			return writeOutputs(cmd, infile, flags, results)
		},
	}

	cmd.Flags().StringSliceVar(&flags.langs, "langs", nil, "Target language tags (default DEFAULT_LANGS)")
	cmd.Flags().StringVar(&flags.model, "model", "", "Provider model (default TRANSLATE_MODEL)")
	cmd.Flags().StringVar(&flags.engine, "engine", "", "Translation engine (default TRANSLATE_ENGINE)")
	cmd.Flags().StringVar(&flags.preset, "preset", translate.DefaultPreset, "Prompt preset")
	cmd.Flags().IntVar(&flags.wrap, "wrap", 0, "Line wrap length (default TRANSLATE_WRAP)")
	cmd.Flags().StringVar(&flags.out, "out", "", "Output directory (default next to the input)")
	cmd.Flags().BoolVar(&flags.zip, "zip", false, "Write "+bundle.ArchiveName+" instead of separate files")
	return cmd
}

func writeOutputs(cmd *cobra.Command, infile string, flags translateFlags, results []translate.Result) error {
	dir := flags.out
	if dir == "" {
		dir = filepath.Dir(infile)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(infile), filepath.Ext(infile))
	files := make([]bundle.File, 0, len(results))
	for _, res := range results {
		files = append(files, bundle.File{
			Name: bundle.FileName(base, res.Language.String()),
			Data: vtt.Format(res.Document),
		})
	}

	if flags.zip {
		var buf bytes.Buffer
		if err := bundle.Write(&buf, files, time.Now()); err != nil {
			return err
		}
		path := filepath.Join(dir, bundle.ArchiveName)
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	}

	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	}
	return nil
}
