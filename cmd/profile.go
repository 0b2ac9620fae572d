package cmd

import (
	"errors"
	"fmt"
	"sort"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Rorical/CodeAssist/internal/config"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage OpenAI-compatible backend profiles",
	Long: `Profiles hold the credentials used when backend is "openai". The
default "ask" backend needs no profile.`,
}

var listProfilesCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Backend: %s\n", cfg.Backend)
		fmt.Fprintf(out, "Active Profile: %s\n\n", cfg.ActiveProfile)
		for _, name := range profileNames(cfg, "") {
			marker := ""
			if name == cfg.ActiveProfile {
				marker = " (active)"
			}
			fmt.Fprintf(out, "  %s%s\n", name, marker)
			describeProfile(cmd, cfg.Profiles[name], "    ")
			fmt.Fprintln(out)
		}
		return nil
	},
}

var showProfileCmd = &cobra.Command{
	Use:   "show [profile-name]",
	Short: "Show profile details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		profile, ok := cfg.Profiles[args[0]]
		if !ok {
			return fmt.Errorf("profile '%s' does not exist", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Profile: %s\n", args[0])
		describeProfile(cmd, profile, "")
		return nil
	},
}

var addProfileCmd = &cobra.Command{
	Use:   "add [profile-name]",
	Short: "Add a new profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		name, err := argOrPrompt(args, "Profile name")
		if err != nil {
			return err
		}
		if _, exists := cfg.Profiles[name]; exists {
			return fmt.Errorf("profile '%s' already exists", name)
		}

		profile, err := promptProfile(config.Profile{Model: "gpt-4o-mini"})
		if err != nil {
			return err
		}
		cfg.Profiles[name] = profile
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' added. Run \"codeassist use %s\" to select it.\n", name, name)
		return nil
	},
}

var editProfileCmd = &cobra.Command{
	Use:   "edit [profile-name]",
	Short: "Edit an existing profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		name, err := argOrSelect(args, "Select profile to edit", profileNames(cfg, ""))
		if err != nil {
			return err
		}
		current, ok := cfg.Profiles[name]
		if !ok {
			return fmt.Errorf("profile '%s' does not exist", name)
		}

		profile, err := promptProfile(current)
		if err != nil {
			return err
		}
		cfg.Profiles[name] = profile
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' updated.\n", name)
		return nil
	},
}

var deleteProfileCmd = &cobra.Command{
	Use:   "delete [profile-name]",
	Short: "Delete a profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		name, err := argOrSelect(args, "Select profile to delete", profileNames(cfg, ""))
		if err != nil {
			return err
		}
		if _, ok := cfg.Profiles[name]; !ok {
			return fmt.Errorf("profile '%s' does not exist", name)
		}

		confirm := promptui.Prompt{
			Label:     fmt.Sprintf("Delete profile '%s'", name),
			IsConfirm: true,
		}
		if _, err := confirm.Run(); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled")
			return nil
		}

		delete(cfg.Profiles, name)
		if cfg.ActiveProfile == name {
			// the active profile must always resolve
			if rest := profileNames(cfg, ""); len(rest) > 0 {
				cfg.ActiveProfile = rest[0]
			} else {
				cfg.ActiveProfile = "default"
				cfg.Profiles["default"] = config.Profile{Model: "gpt-4o-mini"}
			}
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' deleted.\n", name)
		return nil
	},
}

func describeProfile(cmd *cobra.Command, p config.Profile, indent string) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%sModel: %s\n", indent, p.Model)
	if p.BaseURL != "" {
		fmt.Fprintf(out, "%sBase URL: %s\n", indent, p.BaseURL)
	}
	key := "Not set"
	if p.APIKey != "" {
		key = "Set (hidden)"
	}
	fmt.Fprintf(out, "%sAPI Key: %s\n", indent, key)
}

// profileNames returns the sorted profile names, leaving out skip
func profileNames(cfg *config.Config, skip string) []string {
	names := make([]string, 0, len(cfg.Profiles))
	for name := range cfg.Profiles {
		if name != skip {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func argOrPrompt(args []string, label string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	prompt := promptui.Prompt{
		Label: label,
		Validate: func(s string) error {
			if s == "" {
				return errors.New("required")
			}
			return nil
		},
	}
	v, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return v, nil
}

func argOrSelect(args []string, label string, items []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if len(items) == 0 {
		return "", errors.New("no profiles available")
	}
	sel := promptui.Select{Label: label, Items: items}
	_, v, err := sel.Run()
	if err != nil {
		return "", fmt.Errorf("selection failed: %w", err)
	}
	return v, nil
}

// promptProfile asks for each field, offering the current values
func promptProfile(p config.Profile) (config.Profile, error) {
	fields := []struct {
		label string
		dst   *string
		mask  rune
	}{
		{"API Key", &p.APIKey, '*'},
		{"Model", &p.Model, 0},
		{"Base URL (optional)", &p.BaseURL, 0},
	}
	for _, f := range fields {
		prompt := promptui.Prompt{Label: f.label, Default: *f.dst, Mask: f.mask}
		v, err := prompt.Run()
		if err != nil {
			return p, fmt.Errorf("prompt failed: %w", err)
		}
		*f.dst = v
	}
	return p, nil
}

func init() {
	profileCmd.AddCommand(listProfilesCmd)
	profileCmd.AddCommand(showProfileCmd)
	profileCmd.AddCommand(addProfileCmd)
	profileCmd.AddCommand(editProfileCmd)
	profileCmd.AddCommand(deleteProfileCmd)
}
