// Package cli provides the quill command line interface.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"go.aimuz.me/quill/config"
	"go.aimuz.me/quill/llm"
	"go.aimuz.me/quill/secret"
)

const (
	configDirFlag = "config-dir"
	logLevelFlag  = "log-level"
	logFileName   = "quill.log"
)

// Indirections replaced in tests.
var (
	newProtector = secret.New
	newCompleter = llm.NewCompleter
)

// options carries the persistent flags.
type options struct {
	configDir string
	logLevel  string
	version   string
}

// Execute runs the root command and returns the process exit code.
func Execute(version string) int {
	if err := newRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func newRootCmd(version string) *cobra.Command {
	opts := &options{version: version}

	root := &cobra.Command{
		Use:   "quill",
		Short: "AI writing helper for selected text",
		Long: `quill runs in the background and reacts to global hotkeys: it captures the
selected text, sends it to OpenAI, Anthropic or Gemini for spelling
correction, translation, identifier naming or a quick answer, and copies the
result or pastes it over the selection.

Run without a subcommand to start the background service.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := parseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

			dir, err := opts.dir()
			if err != nil {
				return err
			}
			if err := config.LoadEnv(dir); err != nil {
				slog.Warn("load env", "error", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runService(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configDir, configDirFlag, "", "settings and data directory (default: user config dir)")
	root.PersistentFlags().StringVar(&opts.logLevel, logLevelFlag, "info", "log level: debug, info, warn, error")

	root.AddCommand(
		newRunCmd(opts),
		newCorrectCmd(opts),
		newTranslateCmd(opts),
		newNamesCmd(opts),
		newAskCmd(opts),
		newConfigCmd(opts),
		newToneCmd(opts),
		newUsageCmd(opts),
		newCacheCmd(opts),
		newHotkeyCmd(),
	)
	return root
}

func (o *options) dir() (string, error) {
	if o.configDir != "" {
		return o.configDir, nil
	}
	return config.Dir()
}

// store opens the sealed settings store.
func (o *options) store() (*config.Store, error) {
	dir, err := o.dir()
	if err != nil {
		return nil, err
	}
	p, err := newProtector()
	if err != nil {
		return nil, fmt.Errorf("init settings protection: %w", err)
	}
	return config.NewStore(config.SettingsPath(dir), p), nil
}

// settings loads the settings, logging and continuing with defaults when the
// file is unreadable.
func (o *options) settings() (*config.Store, *config.Settings, error) {
	st, err := o.store()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := st.Load()
	if err != nil {
		slog.Error("load settings", "path", st.Path(), "error", err)
	}
	return st, cfg, nil
}

func (o *options) update(fn func(*config.Settings) error) error {
	st, err := o.store()
	if err != nil {
		return err
	}
	return st.Update(fn)
}

// fileLogger adds a rotating log file next to the settings.
func fileLogger(dir string, level slog.Level, stderr io.Writer) io.Closer {
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "logs", logFileName),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
	w := io.MultiWriter(stderr, rotator)
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	return rotator
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
