package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dynaqlabs/dynaq/batch"
	"github.com/dynaqlabs/dynaq/ddb"
	"github.com/dynaqlabs/dynaq/expression"
)

// BwriteOptions holds the flags of the bwrite command.
type BwriteOptions struct {
	*RootOptions
	Puts      []string
	Dels      []string
	InferSets bool
}

// NewBwriteCommand creates the bwrite command.
func NewBwriteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BwriteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bwrite",
		Short: "Batch write items",
		Long: `Write and delete many items in one run. Each --put takes a full item
document including the key attributes; each --del takes a document
holding just the key attributes.

  dy bwrite --put '{"id": "a", "rank": 1}' --put '{"id": "b", "rank": 2}'
  dy bwrite --del '{"id": "c"}'

Requests are sent in chunks of 25; unprocessed items are retried.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBwrite(cmd, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Puts, "put", nil, "item document to write, repeatable")
	cmd.Flags().StringArrayVar(&opts.Dels, "del", nil, "key document to delete, repeatable")
	cmd.Flags().BoolVar(&opts.InferSets, "infer-sets", false, "treat homogeneous scalar arrays as sets")

	return cmd
}

func runBwrite(cmd *cobra.Command, opts *BwriteOptions) error {
	if len(opts.Puts) == 0 && len(opts.Dels) == 0 {
		return errors.New("nothing to write, pass --put or --del")
	}

	cc, err := newContext(opts.RootOptions)
	if err != nil {
		return err
	}

	client, err := ddb.NewClient(cmd.Context(), cc)
	if err != nil {
		return err
	}

	name, err := cc.EffectiveTableName()
	if err != nil {
		return err
	}

	writer := batch.NewWriter(client.API(), name)

	for _, text := range opts.Puts {
		doc, err := expression.ParseItem(text, opts.InferSets)
		if err != nil {
			return err
		}

		writer.Put(doc.ToItem(nil))
	}

	for _, text := range opts.Dels {
		doc, err := expression.ParseItem(text, false)
		if err != nil {
			return err
		}

		writer.Delete(doc.ToItem(nil))
	}

	total := writer.Pending()

	if err := writer.Flush(cmd.Context()); err != nil {
		return err
	}

	cmd.Printf("Wrote %d requests.\n", total)

	return nil
}
