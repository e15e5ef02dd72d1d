package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/purrfect/internal/config"
)

// secretKeys are masked when shown
var secretKeys = map[string]bool{"api_key": true, "client_key": true}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
		Long: `Show the effective configuration, including environment overrides
(PURRFECT_BASE_URL, GURU_CLIENT_KEY, API_KEY). Secrets are masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.deps.LoadConfig()
			if err != nil {
				return err
			}
			for _, key := range config.Keys() {
				fmt.Fprintf(a.deps.Out, "%-18s %s\n", key, displayValue(cfg, key))
			}
			return nil
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print one setting",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := a.deps.LoadConfig()
				if err != nil {
					return err
				}
				if _, err := cfg.Get(args[0]); err != nil {
					return err
				}
				fmt.Fprintln(a.deps.Out, displayValue(cfg, args[0]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Change one setting in the config file",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				// The file alone, so environment values are not persisted
				cfg, err := config.LoadFile()
				if err != nil {
					return err
				}
				if err := cfg.Set(args[0], args[1]); err != nil {
					return err
				}
				if err := config.SaveConfig(cfg); err != nil {
					return err
				}
				fmt.Fprintf(a.deps.Out, "%s = %s\n", args[0], displayValue(cfg, args[0]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := config.GetConfigPath()
				if err != nil {
					return err
				}
				fmt.Fprintln(a.deps.Out, path)
				return nil
			},
		},
	)

	return cmd
}

func displayValue(cfg config.Config, key string) string {
	v, err := cfg.Get(key)
	if err != nil {
		return ""
	}
	if secretKeys[key] {
		return config.MaskSecret(v)
	}
	return v
}
