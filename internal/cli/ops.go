package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"go.aimuz.me/quill/cache"
	"go.aimuz.me/quill/clipboard"
	"go.aimuz.me/quill/config"
	"go.aimuz.me/quill/internal/app"
	"go.aimuz.me/quill/selection"
	"go.aimuz.me/quill/usage"
)

// oneShot holds the flags shared by the text commands.
type oneShot struct {
	copy bool
}

func (o *oneShot) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.copy, "copy", false, "also copy the result to the clipboard")
}

func newCorrectCmd(opts *options) *cobra.Command {
	var (
		shot oneShot
		tone string
	)
	cmd := &cobra.Command{
		Use:   "correct [text...]",
		Short: "Correct spelling and grammar",
		Long:  "Correct spelling and grammar, rewriting in the selected tone preset. Reads stdin when no text is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAssistant(cmd, opts, args, func(cfg *config.Settings) error {
				if tone == "" {
					return nil
				}
				return cfg.SelectTonePreset(tone)
			}, func(ctx context.Context, a *app.Assistant, text string) (string, error) {
				res, err := a.CorrectSpelling(ctx, text)
				if err != nil {
					return "", err
				}
				if res.AppliedToneName != "" {
					slog.Debug("tone applied", "tone", res.AppliedToneName)
				}
				return res.CorrectedText, nil
			}, shot)
		},
	}
	shot.bind(cmd)
	cmd.Flags().StringVar(&tone, "tone", "", "tone preset id for this request")
	return cmd
}

func newTranslateCmd(opts *options) *cobra.Command {
	var (
		shot   oneShot
		target string
	)
	cmd := &cobra.Command{
		Use:   "translate [text...]",
		Short: "Translate between the native and target languages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAssistant(cmd, opts, args, func(cfg *config.Settings) error {
				if target != "" {
					cfg.TargetLanguage = target
				}
				return nil
			}, func(ctx context.Context, a *app.Assistant, text string) (string, error) {
				res, err := a.Translate(ctx, text)
				if err != nil {
					return "", err
				}
				slog.Debug("translated", "from", res.SourceLanguage, "to", res.TargetLanguage)
				return res.TranslatedText, nil
			}, shot)
		},
	}
	shot.bind(cmd)
	cmd.Flags().StringVar(&target, "target", "", "target language code for native-language input")
	return cmd
}

func newNamesCmd(opts *options) *cobra.Command {
	var (
		shot      oneShot
		functions bool
	)
	cmd := &cobra.Command{
		Use:   "names [text...]",
		Short: "Suggest variable or function names for a description",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAssistant(cmd, opts, args, nil, func(ctx context.Context, a *app.Assistant, text string) (string, error) {
				suggest := a.SuggestVariableNames
				if functions {
					suggest = a.SuggestFunctionNames
				}
				res, err := suggest(ctx, text)
				if err != nil {
					return "", err
				}
				return app.FormatNames(res.SuggestedNames), nil
			}, shot)
		},
	}
	shot.bind(cmd)
	cmd.Flags().BoolVar(&functions, "function", false, "suggest PascalCase function names")
	return cmd
}

func newAskCmd(opts *options) *cobra.Command {
	var shot oneShot
	cmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: "Answer a question",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAssistant(cmd, opts, args, nil, func(ctx context.Context, a *app.Assistant, text string) (string, error) {
				res, err := a.AnswerQuestion(ctx, text)
				if err != nil {
					return "", err
				}
				return res.Answer, nil
			}, shot)
		},
	}
	shot.bind(cmd)
	return cmd
}

type operation func(ctx context.Context, a *app.Assistant, text string) (string, error)

// withAssistant reads the input, builds an Assistant from the saved settings
// (adjusted by override, which is not persisted) and prints op's result.
func withAssistant(cmd *cobra.Command, opts *options, args []string, override func(*config.Settings) error, op operation, shot oneShot) error {
	text, err := inputText(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	_, cfg, err := opts.settings()
	if err != nil {
		return err
	}
	if override != nil {
		if err := override(cfg); err != nil {
			return err
		}
	}

	completer, err := newCompleter(cfg.Provider, cfg.CompleterConfig())
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Provider.DisplayName(), err)
	}

	dir, err := opts.dir()
	if err != nil {
		return err
	}

	var c *cache.Cache
	if cfg.CacheEnabled {
		// The background service holds the cache lock while it runs.
		if c, err = cache.New(filepath.Join(dir, "cache")); err != nil {
			slog.Debug("cache unavailable", "error", err)
			c = nil
		} else {
			defer c.Close()
		}
	}

	a := app.NewAssistant(completer, app.ProfileFrom(cfg), c, usage.NewTracker(filepath.Join(dir, usage.FileName)))

	out, err := op(cmd.Context(), a, text)
	if err != nil {
		return err
	}
	if out == "" {
		return fmt.Errorf("the AI service returned an empty response")
	}

	fmt.Fprintln(cmd.OutOrStdout(), out)

	if shot.copy {
		if err := selection.Copy(clipboard.New(), out); err != nil {
			return err
		}
	}
	return nil
}

// inputText joins args, or reads r when there are none.
func inputText(r io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	text := strings.TrimRight(string(data), "\r\n")
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no input text")
	}
	return text, nil
}
