package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"tessera/internal/config"
	"tessera/internal/store"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigSetCommand(ctx))
	configCmd.AddCommand(newConfigSettingsCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}
			if err := config.WriteSample(target); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to point paths at your storage before processing.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if flag := cmd.Flags().Lookup("config"); flag != nil {
				path = flag.Value.String()
			}
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", resolved)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigSetCommand(ctx *commandContext) *cobra.Command {
	var valueType string

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Save a processor setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				if err := st.SaveSetting(cmd.Context(), args[0], args[1], valueType); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", args[0], valueType)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&valueType, "type", "t", store.SettingString, "Value type (string, bool, int, float, json)")
	return cmd
}

func newConfigSettingsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "List stored processor settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				settings, err := st.LoadSettings(cmd.Context())
				if err != nil {
					return err
				}
				if len(settings) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No settings stored")
					return nil
				}
				keys := make([]string, 0, len(settings))
				for key := range settings {
					keys = append(keys, key)
				}
				sort.Strings(keys)
				rows := make([][]string, 0, len(keys))
				for _, key := range keys {
					rows = append(rows, []string{key, fmt.Sprintf("%v", settings[key])})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Key", "Value"},
					rows,
					[]columnAlignment{alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}
