package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.aimuz.me/quill/hotkey"
)

func newHotkeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hotkey",
		Short: "Hotkey helpers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <accelerator>",
		Short: "Parse an accelerator such as Ctrl+Shift+Alt+Y",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := hotkey.Parse(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (modifiers 0x%X, key 0x%02X)\n", b, b.Modifiers, b.Key)
			return nil
		},
	})
	return cmd
}
