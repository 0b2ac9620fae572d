package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rorical/CodeAssist/internal/app"
	"github.com/Rorical/CodeAssist/internal/surface"
)

var hostAddr string

var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Attach the floating panel to a running host",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSurface(cmd, surface.KindPanel)
	},
}

var sidebarCmd = &cobra.Command{
	Use:   "sidebar",
	Short: "Attach the docked sidebar to a running host",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSurface(cmd, surface.KindSidebar)
	},
}

func runSurface(cmd *cobra.Command, kind surface.Kind) error {
	cfg, logger, err := setup(string(kind))
	if err != nil {
		return err
	}
	defer logger.Sync()

	addr := hostAddr
	if addr == "" {
		addr = "http://" + cfg.ListenAddr
	}

	application, err := app.NewApplication(cmd.Context(), app.Options{
		Kind:    kind,
		HostURL: addr,
		Config:  cfg,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer application.Stop()

	return application.Start(cmd.Context())
}

func init() {
	for _, c := range []*cobra.Command{panelCmd, sidebarCmd} {
		c.Flags().StringVar(&hostAddr, "addr", "", "host surface server (default http://<listen_addr>)")
		rootCmd.AddCommand(c)
	}
}
