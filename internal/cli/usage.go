package cli

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"go.aimuz.me/quill/cache"
	"go.aimuz.me/quill/internal/types"
	"go.aimuz.me/quill/usage"
)

const dateLayout = "2006-01-02"

func newUsageCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Token usage and cost history",
	}

	var since, until string
	show := &cobra.Command{
		Use:   "show",
		Short: "Summarize recorded usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, err := parseDate(since, false)
			if err != nil {
				return err
			}
			to, err := parseDate(until, true)
			if err != nil {
				return err
			}
			t, err := tracker(opts)
			if err != nil {
				return err
			}
			stats, err := t.Statistics(from, to)
			if err != nil {
				return err
			}
			printStatistics(cmd, stats)
			return nil
		},
	}
	show.Flags().StringVar(&since, "since", "", "first day to include (YYYY-MM-DD)")
	show.Flags().StringVar(&until, "until", "", "last day to include (YYYY-MM-DD)")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the usage history",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			t, err := tracker(opts)
			if err != nil {
				return err
			}
			return t.Clear()
		},
	}

	cmd.AddCommand(show, clearCmd)
	return cmd
}

func newCacheCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached response",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			dir, err := opts.dir()
			if err != nil {
				return err
			}
			c, err := cache.New(filepath.Join(dir, "cache"))
			if err != nil {
				return fmt.Errorf("open cache (is the service running?): %w", err)
			}
			defer c.Close()
			return c.Clear()
		},
	})
	return cmd
}

func tracker(opts *options) (*usage.Tracker, error) {
	dir, err := opts.dir()
	if err != nil {
		return nil, err
	}
	return usage.NewTracker(filepath.Join(dir, usage.FileName)), nil
}

// parseDate reads a local calendar day. endOfDay moves the bound to the last
// instant of that day.
func parseDate(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}

func printStatistics(cmd *cobra.Command, s types.UsageStatistics) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "requests:           %d\n", s.TotalRequests)

	ops := make([]types.Operation, 0, len(s.Operations))
	for op := range s.Operations {
		ops = append(ops, op)
	}
	slices.Sort(ops)
	for _, op := range ops {
		fmt.Fprintf(w, "  %-18s %d\n", op, s.Operations[op])
	}

	fmt.Fprintf(w, "prompt tokens:      %d\n", s.TotalPromptTokens)
	fmt.Fprintf(w, "completion tokens:  %d\n", s.TotalCompletionTokens)
	fmt.Fprintf(w, "total tokens:       %d\n", s.TotalTokens)
	fmt.Fprintf(w, "cost (USD):         $%.6f\n", s.TotalCost)
}
