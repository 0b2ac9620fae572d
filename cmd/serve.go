package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Rorical/CodeAssist/internal/editor"
	"github.com/Rorical/CodeAssist/internal/host"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the host for an editor plugin",
	Long: `Run the host process. The editor plugin talks to it as JSON lines on
stdin/stdout; panels and sidebars attach over the surface server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup("serve")
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ed := editor.NewStdio(os.Stdin, os.Stdout, logger)
		h, err := host.New(cfg, ed, logger)
		if err != nil {
			return err
		}
		logger.Info("host starting",
			zap.String("listen", cfg.ListenAddr),
			zap.String("backend", cfg.Backend),
			zap.String("endpoint", cfg.Endpoint))
		return h.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
