package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/smartinvoice/internal/record"
)

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	Numeric bool
}

// DeleteResult is the payload of a successful delete.
type DeleteResult struct {
	ID      string `json:"id"`
	Numeric bool   `json:"numeric"`
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an invoice from the offline store",
		Long: `Delete the invoice with the given id. Deleting an id that is not stored
succeeds.

The id is a string unless --numeric is given; "1" and 1 are different ids.

Examples:
  smartinvoice delete inv-1
  smartinvoice delete --numeric 42`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Numeric, "numeric", false, "treat the id as a number")

	return cmd
}

func runDelete(opts *DeleteOptions, id string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	key, err := record.ParseKey(id, opts.Numeric)
	if err != nil {
		return formatter.FailWith(ErrCodeInvalidInput, "invalid id", err)
	}

	st := opts.openStore()
	defer st.Close()

	if err := st.Delete(cmd.Context(), key); err != nil {
		return formatter.Fail(err)
	}

	if formatter.Format == "json" {
		return formatter.Success(DeleteResult{ID: key.String(), Numeric: opts.Numeric})
	}
	fmt.Fprintf(formatter.Writer, "✓ Deleted invoice %s\n", key)
	return nil
}
