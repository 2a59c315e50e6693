package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"go.aimuz.me/quill/cache"
	"go.aimuz.me/quill/clipboard"
	"go.aimuz.me/quill/hotkey"
	"go.aimuz.me/quill/internal/app"
	"go.aimuz.me/quill/keys"
	"go.aimuz.me/quill/notify"
	"go.aimuz.me/quill/selection"
	"go.aimuz.me/quill/singleinstance"
	"go.aimuz.me/quill/usage"
)

const instanceName = "quill-service"

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the background hotkey service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runService(cmd, opts)
		},
	}
}

func runService(cmd *cobra.Command, opts *options) error {
	dir, err := opts.dir()
	if err != nil {
		return err
	}
	level, _ := parseLevel(opts.logLevel)
	logFile := fileLogger(dir, level, cmd.ErrOrStderr())
	defer logFile.Close()

	lock, err := singleinstance.Acquire(instanceName)
	if errors.Is(err, singleinstance.ErrAlreadyRunning) {
		return fmt.Errorf("quill is already running")
	}
	if err != nil {
		return err
	}
	defer lock.Close()

	slog.Info("starting quill", "version", opts.version, "dir", dir)

	st, err := opts.store()
	if err != nil {
		return err
	}

	var c *cache.Cache
	cachePath := filepath.Join(dir, "cache")
	if c, err = cache.New(cachePath); err != nil {
		slog.Error("init cache", "error", err)
		c = nil
	} else {
		slog.Info("cache initialized", "path", cachePath)
		defer func() {
			if err := c.Close(); err != nil {
				slog.Error("close cache", "error", err)
			}
		}()
	}

	cb := clipboard.New()
	k, err := keys.New()
	if err != nil {
		return fmt.Errorf("init keyboard: %w", err)
	}

	svc := app.New(app.Options{
		Store:        st,
		Selection:    selection.NewCapturer(selection.DefaultStrategies(cb, k)...),
		Clipboard:    cb,
		Keys:         k,
		Hotkeys:      hotkey.NewManager(),
		Notifier:     notify.Desktop{},
		Cache:        c,
		Usage:        usage.NewTracker(filepath.Join(dir, usage.FileName)),
		NewCompleter: newCompleter,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := svc.Run(ctx); err != nil {
		return err
	}
	slog.Info("quill stopped")
	return nil
}
