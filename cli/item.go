package cli

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spf13/cobra"

	"github.com/dynaqlabs/dynaq/ddb"
	"github.com/dynaqlabs/dynaq/expression"
	"github.com/dynaqlabs/dynaq/schema"
)

// keyedCall resolves the client, table, and key map from positional
// pk/sk arguments. Shared by get, put, del, and upd.
type keyedCall struct {
	client *ddb.Client
	name   string
	table  *schema.Table
	key    map[string]types.AttributeValue
}

func resolveKeyedCall(ctx context.Context, rootOpts *RootOptions, args []string) (*keyedCall, error) {
	cc, err := newContext(rootOpts)
	if err != nil {
		return nil, err
	}

	client, err := ddb.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}

	table, err := tableSchema(ctx, cc, client)
	if err != nil {
		return nil, err
	}

	skValue := ""
	if len(args) > 1 {
		skValue = args[1]
	}

	key, err := ddb.KeyAttributes(table.Pk, table.Sk, args[0], skValue)
	if err != nil {
		return nil, err
	}

	name, err := cc.EffectiveTableName()
	if err != nil {
		return nil, err
	}

	return &keyedCall{client: client, name: name, table: table, key: key}, nil
}

// GetOptions holds the flags of the get command.
type GetOptions struct {
	*RootOptions
	Consistent bool
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "get <partition-key-value> [sort-key-value]",
		Short:         "Fetch one item by key",
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			call, err := resolveKeyedCall(cmd.Context(), opts.RootOptions, args)
			if err != nil {
				return err
			}

			item, err := call.client.GetItem(cmd.Context(), call.name, call.key, opts.Consistent)
			if err != nil {
				return err
			}

			if item == nil {
				cmd.Println("No item found.")

				return nil
			}

			out, err := ddb.ItemToJSON(item)
			if err != nil {
				return err
			}

			cmd.Println(out)

			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Consistent, "consistent", false, "use a strongly consistent read")

	return cmd
}

// PutOptions holds the flags of the put command.
type PutOptions struct {
	*RootOptions
	Item      string
	InferSets bool
}

// NewPutCommand creates the put command.
func NewPutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PutOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "put <partition-key-value> [sort-key-value]",
		Short: "Write an item",
		Long: `Write an item with the given key. Additional attributes come from
--item, written in the literal language:

  dy put user1 --item '{"age": 25, "tags": <<"a", "b">>}'

Attributes in --item win over the positional key values on collision.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			call, err := resolveKeyedCall(cmd.Context(), opts.RootOptions, args)
			if err != nil {
				return err
			}

			item := call.key

			if opts.Item != "" {
				doc, err := expression.ParseItem(opts.Item, opts.InferSets)
				if err != nil {
					return err
				}

				item = doc.ToItem(call.key)
			}

			if err := call.client.PutItem(cmd.Context(), call.name, item); err != nil {
				return err
			}

			out, err := ddb.ItemToJSON(item)
			if err != nil {
				return err
			}

			cmd.Println(out)

			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Item, "item", "", "item attributes beyond the key")
	cmd.Flags().BoolVar(&opts.InferSets, "infer-sets", false, "treat homogeneous scalar arrays in --item as sets")

	return cmd
}

// NewDelCommand creates the del command.
func NewDelCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "del <partition-key-value> [sort-key-value]",
		Short:         "Delete one item by key",
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			call, err := resolveKeyedCall(cmd.Context(), rootOpts, args)
			if err != nil {
				return err
			}

			if err := call.client.DeleteItem(cmd.Context(), call.name, call.key); err != nil {
				return err
			}

			cmd.Println("Deleted.")

			return nil
		},
	}

	return cmd
}
