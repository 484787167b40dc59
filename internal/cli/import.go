package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ImportResult is the payload of the import command.
type ImportResult struct {
	File     string `json:"file"`
	Imported int    `json:"imported"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import invoices from a legacy JSON list",
		Long: `Import invoices from a JSON array, the format older releases kept as a
single "offline_invoices" list.

All entries are written in one transaction. Entries sharing an id collapse,
the later one winning. One entry without a usable id rejects the whole file.

Example:
  smartinvoice import offline_invoices.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runImport(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return formatter.FailWith(ErrCodeNotFound, "import file not found", err)
		}
		return formatter.FailWith(ErrCodeInvalidInput, "opening import file", err)
	}
	defer f.Close()

	st := opts.openStore()
	defer st.Close()

	n, err := st.ImportLegacy(cmd.Context(), f)
	if err != nil {
		return formatter.Fail(err)
	}
	formatter.VerboseLog("Imported %d invoice(s) from %s", n, path)

	if formatter.Format == "json" {
		return formatter.Success(ImportResult{File: path, Imported: n})
	}
	fmt.Fprintf(formatter.Writer, "✓ Imported %d invoice(s) from %s\n", n, path)
	return nil
}
