package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Output formats.
const (
	formatAuto = "auto"
	formatText = "text"
	formatJSON = "json"
)

// wantJSON resolves a --format flag. Auto picks JSON unless stdout is a terminal.
func wantJSON(cmd *cobra.Command, format string) (bool, error) {
	switch format {
	case formatJSON:
		return true, nil
	case formatText:
		return false, nil
	case formatAuto, "":
		return !isTerminal(cmd.OutOrStdout()), nil
	default:
		return false, fmt.Errorf("unknown format %q (want auto, text or json)", format)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// truncate shortens s to n runes, adding an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
