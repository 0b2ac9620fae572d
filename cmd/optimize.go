package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Rorical/CodeAssist/internal/backend"
	"github.com/Rorical/CodeAssist/internal/editor"
	"github.com/Rorical/CodeAssist/internal/host"
)

var (
	optimizeFile  string
	optimizeLines string
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Replace code with a cleaned-up version",
	Long: `Send code to the backend and replace it with the optimized version.

With --file the given line range is rewritten in place. Without it, code is
read from stdin and the result is written to stdout.`,
	Example: `  codeassist optimize --file main.go --lines 10:42
  pbpaste | codeassist optimize`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup("optimize")
		if err != nil {
			return err
		}
		defer logger.Sync()

		caller, err := backend.FromConfig(cfg, logger, nil)
		if err != nil {
			return err
		}

		if optimizeFile == "" {
			if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
				return fmt.Errorf("no --file given and nothing piped on stdin")
			}
			return optimizeStream(cmd, caller, os.Stdin, cmd.OutOrStdout())
		}

		start, end, err := parseLineRange(optimizeLines)
		if err != nil {
			return err
		}
		ed, err := editor.NewFileEditor(optimizeFile, start, end, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		return host.Optimize(cmd.Context(), ed, caller)
	},
}

func optimizeStream(cmd *cobra.Command, caller backend.Caller, in io.Reader, out io.Writer) error {
	code, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	if strings.TrimSpace(string(code)) == "" {
		return host.ErrNoSelection
	}
	data, err := caller.Call(cmd.Context(), backend.NewOptimizeRequest(string(code)), "")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, backend.ResultText(data))
	return err
}

// parseLineRange reads "A:B", "A:" or "A". Empty means the whole file.
func parseLineRange(s string) (int, int, error) {
	if s == "" {
		return 1, 0, nil
	}
	from, to, hasTo := strings.Cut(s, ":")
	start, err := strconv.Atoi(from)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start line %q", from)
	}
	if !hasTo {
		return start, start, nil
	}
	if to == "" {
		return start, 0, nil
	}
	end, err := strconv.Atoi(to)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end line %q", to)
	}
	return start, end, nil
}

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeFile, "file", "f", "", "file to rewrite in place")
	optimizeCmd.Flags().StringVarP(&optimizeLines, "lines", "l", "", "line range A:B (1-based, inclusive)")
	rootCmd.AddCommand(optimizeCmd)
}
