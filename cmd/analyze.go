package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Rorical/CodeAssist/internal/backend"
	"github.com/Rorical/CodeAssist/internal/editor"
	"github.com/Rorical/CodeAssist/internal/panel"
	"github.com/Rorical/CodeAssist/ui/components"
)

var (
	analyzeFile  string
	analyzeLines string
	analyzeMode  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze code without opening a panel",
	Long: `Run one analysis kind, or the automatic hints, error fixing and
explanation set, on a file range and print the results.`,
	Example: `  codeassist analyze --file main.go --lines 10:42 --mode explanation
  codeassist analyze --file main.go`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup("analyze")
		if err != nil {
			return err
		}
		defer logger.Sync()

		caller, err := backend.FromConfig(cfg, logger, nil)
		if err != nil {
			return err
		}

		start, end, err := parseLineRange(analyzeLines)
		if err != nil {
			return err
		}
		ed, err := editor.NewFileEditor(analyzeFile, start, end, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		code, err := ed.Selection(cmd.Context())
		if err != nil {
			return err
		}

		ctrl := panel.NewController(nil, panel.Options{
			Direct:   caller,
			Endpoint: cfg.Endpoint,
			Logger:   logger,
		})

		modes := []backend.Mode{backend.ModeHints, backend.ModeErrorFixing, backend.ModeExplanation}
		if analyzeMode == "" {
			err = ctrl.AutoAnalyze(cmd.Context(), code)
		} else {
			mode, perr := backend.ParseMode(analyzeMode)
			if perr != nil {
				return perr
			}
			modes = []backend.Mode{mode}
			ctrl.SetInput(mode, code)
			err = ctrl.Analyze(cmd.Context(), mode)
		}

		printResults(cmd.OutOrStdout(), ctrl.Snapshot(), modes)
		return err
	},
}

func printResults(out io.Writer, s panel.Snapshot, modes []backend.Mode) {
	color := isatty.IsTerminal(os.Stdout.Fd())
	for _, m := range modes {
		tab := s.Tab(m)
		if tab.Phase == panel.PhaseIdle {
			continue
		}
		text := components.RenderResult(tab, "")
		if !color {
			text = ansi.Strip(text)
		}
		fmt.Fprintln(out, text)
		fmt.Fprintln(out)
	}
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "file to analyze")
	analyzeCmd.Flags().StringVarP(&analyzeLines, "lines", "l", "", "line range A:B (1-based, inclusive)")
	analyzeCmd.Flags().StringVarP(&analyzeMode, "mode", "m", "", "analysis kind: hints, suggestions, explanation, cleancode, solutions, errorfixing")
	_ = analyzeCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(analyzeCmd)
}
