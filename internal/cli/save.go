package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/smartinvoice/internal/offline"
	"github.com/roach88/smartinvoice/internal/record"
)

// SaveOptions holds flags for the save command.
type SaveOptions struct {
	*RootOptions
	File  string
	NewID bool
}

// SaveResult is the payload of a successful save.
type SaveResult struct {
	ID          string `json:"id"`
	Fingerprint string `json:"fingerprint"`
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save [invoice-json]",
		Short: "Save an invoice to the offline store",
		Long: `Save an invoice to the offline store, replacing any invoice with the same id.

The invoice is read from the argument, from --file, or from stdin.

Examples:
  smartinvoice save '{"id":"inv-1","total":42}'
  smartinvoice save --file invoice.json
  echo '{"total":7}' | smartinvoice save --new-id`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "read the invoice from a file")
	cmd.Flags().BoolVar(&opts.NewID, "new-id", false, "assign a UUIDv7 id when the invoice has none")

	return cmd
}

func runSave(opts *SaveOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	data, err := readInvoiceInput(opts, args, cmd)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return formatter.FailWith(ErrCodeNotFound, "invoice file not found", err)
		}
		return formatter.FailWith(ErrCodeInvalidInput, "reading invoice", err)
	}

	rec, err := record.FromJSON(data)
	if err != nil {
		return formatter.FailWith(ErrCodeInvalidInput, "invoice is not a JSON object", err)
	}

	if _, ok := rec[offline.KeyPath]; !ok && opts.NewID {
		id, err := uuid.NewV7()
		if err != nil {
			return formatter.FailWith(ErrCodeGeneric, "generating id", err)
		}
		rec[offline.KeyPath] = record.String(id.String())
		formatter.VerboseLog("Assigned id %s", id)
	}

	st := opts.openStore()
	defer st.Close()

	if err := st.Save(cmd.Context(), rec); err != nil {
		return formatter.Fail(err)
	}

	key, err := rec.Key(offline.KeyPath)
	if err != nil {
		return formatter.Fail(err)
	}
	fp, err := record.Fingerprint(rec)
	if err != nil {
		return formatter.FailWith(ErrCodeGeneric, "fingerprint", err)
	}
	result := SaveResult{ID: key.String(), Fingerprint: fp}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Saved invoice %s (%s)\n", result.ID, shortFingerprint(fp))
	return nil
}

// readInvoiceInput picks the invoice source: argument, then --file, then stdin.
func readInvoiceInput(opts *SaveOptions, args []string, cmd *cobra.Command) ([]byte, error) {
	switch {
	case len(args) == 1 && opts.File != "":
		return nil, fmt.Errorf("pass the invoice as an argument or with --file, not both")
	case len(args) == 1:
		return []byte(args[0]), nil
	case opts.File != "":
		return os.ReadFile(opts.File)
	default:
		return io.ReadAll(cmd.InOrStdin())
	}
}

// shortFingerprint abbreviates a fingerprint for text output.
func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
