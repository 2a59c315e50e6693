package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"go.aimuz.me/quill/config"
	"go.aimuz.me/quill/hotkey"
	"go.aimuz.me/quill/llm"
)

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the current settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				st, cfg, err := opts.settings()
				if err != nil {
					return err
				}
				printSettings(cmd.OutOrStdout(), st.Path(), cfg)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set-provider <openai|anthropic|gemini>",
			Short: "Select the AI provider",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				p, err := llm.ParseProvider(args[0])
				if err != nil {
					return err
				}
				return opts.update(func(s *config.Settings) error {
					s.SetProvider(p)
					return nil
				})
			},
		},
		providerScoped(opts, "set-key <key>", "Store the API key (empty string removes it)",
			func(s *config.Settings, p llm.Provider, v string) error {
				s.SetAPIKey(p, v)
				return nil
			}),
		providerScoped(opts, "set-endpoint <url>", "Override the API base URL (empty string resets it)",
			func(s *config.Settings, p llm.Provider, v string) error {
				s.SetEndpoint(p, v)
				return nil
			}),
		&cobra.Command{
			Use:   "set-model <model>",
			Short: "Select the model for the active provider",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return opts.update(func(s *config.Settings) error {
					return s.SetModel(args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "models",
			Short: "List models for the active provider",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, cfg, err := opts.settings()
				if err != nil {
					return err
				}
				for _, m := range cfg.ModelsFor(cfg.Provider) {
					marker := " "
					if m == cfg.Model {
						marker = "*"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, m)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "set-hotkey <action> <accelerator>",
			Short: "Change a hotkey (common-question, correction, translation, variable-names)",
			Args:  cobra.ExactArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				action, err := parseAction(args[0])
				if err != nil {
					return err
				}
				b, err := hotkey.Parse(args[1])
				if err != nil {
					return err
				}
				return opts.update(func(s *config.Settings) error {
					setHotkey(&s.Hotkeys, action, b.String())
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "set-timeout <seconds>",
			Short: "Set the per-request timeout",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("timeout must be a positive number of seconds: %q", args[0])
				}
				return opts.update(func(s *config.Settings) error {
					s.RequestTimeoutSeconds = n
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "set <name> <value>",
			Short: "Set a general option",
			Long: `Set a general option. Names:
  result-action                copy | replace
  show-notifications           true | false
  show-progress-notifications  true | false
  cache                        true | false
  native-language              ISO 639-1 code, e.g. ko
  target-language              ISO 639-1 code, e.g. en`,
			Args: cobra.ExactArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				return opts.update(func(s *config.Settings) error {
					return setOption(s, args[0], args[1])
				})
			},
		},
	)
	return cmd
}

// providerScoped builds a command taking one value and an optional
// --provider (default: the active provider).
func providerScoped(opts *options, use, short string, apply func(*config.Settings, llm.Provider, string) error) *cobra.Command {
	var provider string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return opts.update(func(s *config.Settings) error {
				p := s.Provider
				if provider != "" {
					var err error
					if p, err = llm.ParseProvider(provider); err != nil {
						return err
					}
				}
				return apply(s, p, args[0])
			})
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "provider to change (default: active provider)")
	return cmd
}

func setOption(s *config.Settings, name, value string) error {
	value = strings.TrimSpace(value)
	switch strings.ToLower(name) {
	case "result-action":
		switch config.ResultAction(strings.ToLower(value)) {
		case config.ResultCopy:
			s.ResultAction = config.ResultCopy
		case config.ResultReplace:
			s.ResultAction = config.ResultReplace
		default:
			return fmt.Errorf("result-action must be copy or replace: %q", value)
		}
	case "show-notifications":
		return parseBool(value, &s.ShowNotifications)
	case "show-progress-notifications":
		return parseBool(value, &s.ShowProgressNotifications)
	case "cache":
		return parseBool(value, &s.CacheEnabled)
	case "native-language":
		if value == "" {
			return fmt.Errorf("language code required")
		}
		s.NativeLanguage = strings.ToLower(value)
	case "target-language":
		if value == "" {
			return fmt.Errorf("language code required")
		}
		s.TargetLanguage = strings.ToLower(value)
	default:
		return fmt.Errorf("unknown option %q", name)
	}
	return nil
}

func parseBool(value string, dst *bool) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean %q", value)
	}
	*dst = b
	return nil
}

func parseAction(name string) (hotkey.Action, error) {
	for _, a := range hotkey.Actions {
		if strings.EqualFold(a.String(), name) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", name)
}

func setHotkey(h *config.Hotkeys, a hotkey.Action, accel string) {
	switch a {
	case hotkey.ActionCommonQuestion:
		h.CommonQuestion = accel
	case hotkey.ActionCorrection:
		h.Correction = accel
	case hotkey.ActionTranslation:
		h.Translation = accel
	case hotkey.ActionVariableNames:
		h.VariableNames = accel
	}
}

func printSettings(w io.Writer, path string, s *config.Settings) {
	fmt.Fprintf(w, "settings:       %s\n", path)
	fmt.Fprintf(w, "provider:       %s\n", s.Provider.DisplayName())
	fmt.Fprintf(w, "model:          %s\n", s.Model)
	fmt.Fprintf(w, "endpoint:       %s\n", s.EndpointFor(s.Provider))
	for _, p := range llm.Providers {
		fmt.Fprintf(w, "api key %-9s %s\n", string(p)+":", maskKey(s.APIKeyFor(p)))
	}
	fmt.Fprintf(w, "timeout:        %s\n", s.Timeout())
	fmt.Fprintf(w, "result action:  %s\n", s.ResultAction)
	fmt.Fprintf(w, "notifications:  %t (progress %t)\n", s.ShowNotifications, s.ShowProgressNotifications)
	fmt.Fprintf(w, "cache:          %t\n", s.CacheEnabled)
	fmt.Fprintf(w, "languages:      native %s, target %s\n", s.NativeLanguage, s.TargetLanguage)
	if tone := s.SelectedTonePreset(); tone != nil {
		fmt.Fprintf(w, "tone:           %s (%s)\n", tone.Name, tone.ID)
	}
	fmt.Fprintln(w, "hotkeys:")
	fmt.Fprintf(w, "  common-question  %s\n", s.Hotkeys.CommonQuestion)
	fmt.Fprintf(w, "  correction       %s\n", s.Hotkeys.Correction)
	fmt.Fprintf(w, "  translation      %s\n", s.Hotkeys.Translation)
	fmt.Fprintf(w, "  variable-names   %s\n", s.Hotkeys.VariableNames)
}

func maskKey(key string) string {
	switch {
	case key == "":
		return "(not set)"
	case len(key) <= 8:
		return "****"
	}
	return key[:3] + "..." + key[len(key)-4:]
}
