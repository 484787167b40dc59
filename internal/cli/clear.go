package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ClearResult is the payload of the clear command.
type ClearResult struct {
	Cleared bool `json:"cleared"`
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "clear",
		Short:         "Remove every invoice from the offline store",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(rootOpts, cmd)
		},
	}
	return cmd
}

func runClear(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st := opts.openStore()
	defer st.Close()

	if err := st.Clear(cmd.Context()); err != nil {
		return formatter.Fail(err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ClearResult{Cleared: true})
	}
	fmt.Fprintln(formatter.Writer, "✓ Cleared offline invoices")
	return nil
}
