package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/smartinvoice/internal/offline"
	"github.com/roach88/smartinvoice/internal/record"
)

// ListResult is the payload of the list command.
type ListResult struct {
	Count    int             `json:"count"`
	Invoices []record.Record `json:"invoices"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every invoice in the offline store",
		Long: `List every invoice in the offline store, ordered by id.

Numeric ids sort before string ids. Text output shows each id with a short
content fingerprint; JSON output includes the full invoices.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
	return cmd
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st := opts.openStore()
	defer st.Close()

	invoices, err := st.GetAll(cmd.Context())
	if err != nil {
		return formatter.Fail(err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ListResult{Count: len(invoices), Invoices: invoices})
	}

	if len(invoices) == 0 {
		fmt.Fprintln(formatter.Writer, "No offline invoices.")
		return nil
	}

	fmt.Fprintf(formatter.Writer, "%d offline invoice(s):\n", len(invoices))
	for _, inv := range invoices {
		key, err := inv.Key(offline.KeyPath)
		if err != nil {
			return formatter.Fail(err)
		}
		fp, err := record.Fingerprint(inv)
		if err != nil {
			return formatter.FailWith(ErrCodeGeneric, "fingerprint", err)
		}
		fmt.Fprintf(formatter.Writer, "  %-24s %s\n", key, shortFingerprint(fp))
	}
	return nil
}
