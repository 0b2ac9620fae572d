package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rorical/CodeAssist/internal/config"
)

var useCmd = &cobra.Command{
	Use:   "use [profile-name|ask]",
	Short: "Select the backend used for analyses",
	Long: `Switch analyses to an OpenAI-compatible profile, or back to the default
ask endpoint with "codeassist use ask". A running host picks up the change
without a restart.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		name, err := argOrSelect(args, "Select backend", append([]string{config.BackendAsk}, profileNames(cfg, "")...))
		if err != nil {
			return err
		}

		if name == config.BackendAsk {
			cfg.Backend = config.BackendAsk
		} else {
			profile, ok := cfg.Profiles[name]
			if !ok {
				return fmt.Errorf("profile '%s' does not exist", name)
			}
			if profile.APIKey == "" {
				return fmt.Errorf("profile '%s' has no API key; set one with \"codeassist profile edit %s\"", name, name)
			}
			cfg.Backend = config.BackendOpenAI
			cfg.ActiveProfile = name
		}

		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Now using %s\n", name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(useCmd)
}
