package cli

import (
	"github.com/spf13/cobra"

	"github.com/dynaqlabs/dynaq/ddb"
)

// ScanOptions holds the flags of the scan command.
type ScanOptions struct {
	*RootOptions
	Limit int32
}

// NewScanCommand creates the scan command.
func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "scan",
		Short:         "List items of the table",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newContext(opts.RootOptions)
			if err != nil {
				return err
			}

			name, err := cc.EffectiveTableName()
			if err != nil {
				return err
			}

			client, err := ddb.NewClient(cmd.Context(), cc)
			if err != nil {
				return err
			}

			items, err := client.Scan(cmd.Context(), name, opts.Limit)
			if err != nil {
				return err
			}

			out, err := ddb.ItemsToJSON(items)
			if err != nil {
				return err
			}

			cmd.Println(out)

			return nil
		},
	}

	cmd.Flags().Int32VarP(&opts.Limit, "limit", "l", 0, "maximum number of items to return")

	return cmd
}
