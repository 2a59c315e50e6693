package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.aimuz.me/quill/config"
)

func newToneCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tone",
		Short: "Manage tone presets used by correction",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List tone presets",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, cfg, err := opts.settings()
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				for _, p := range cfg.TonePresets {
					marker := " "
					if p.ID == cfg.SelectedTonePresetID {
						marker = "*"
					}
					fmt.Fprintf(w, "%s %-24s %s: %s\n", marker, p.ID, p.Name, p.Description)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <name> <description>",
			Short: "Add a tone preset",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.update(func(s *config.Settings) error {
					p, err := s.AddTonePreset(args[0], args[1])
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), p.ID)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "update <id> <name> <description>",
			Short: "Rename or redescribe a tone preset",
			Args:  cobra.ExactArgs(3),
			RunE: func(_ *cobra.Command, args []string) error {
				return opts.update(func(s *config.Settings) error {
					return s.UpdateTonePreset(args[0], args[1], args[2])
				})
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a tone preset",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return opts.update(func(s *config.Settings) error {
					return s.DeleteTonePreset(args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "select <id>",
			Short: "Use a tone preset for correction (" + config.NoToneID + " keeps the original tone)",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return opts.update(func(s *config.Settings) error {
					return s.SelectTonePreset(args[0])
				})
			},
		},
	)
	return cmd
}
