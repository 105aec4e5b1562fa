package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dynaqlabs/dynaq/ddb"
	"github.com/dynaqlabs/dynaq/expression"
)

// UpdOptions holds the flags of the upd command.
type UpdOptions struct {
	*RootOptions
	Set    string
	Remove string
}

// NewUpdCommand creates the upd command.
func NewUpdCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UpdOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "upd <partition-key-value> [sort-key-value]",
		Short: "Update an item with a SET or REMOVE expression",
		Long: `Update one item. Exactly one of --set or --remove is required.

  dy upd user1 --set 'age = 26, visits = visits + 1'
  dy upd user1 --set 'parents = list_append(parents, ["grandma"])'
  dy upd user1 --remove 'Category, Rank'

Key attributes cannot be removed.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpd(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Set, "set", "", "SET actions, without the SET keyword")
	cmd.Flags().StringVar(&opts.Remove, "remove", "", "paths to remove, without the REMOVE keyword")
	cmd.MarkFlagsOneRequired("set", "remove")
	cmd.MarkFlagsMutuallyExclusive("set", "remove")

	return cmd
}

func runUpd(cmd *cobra.Command, opts *UpdOptions, args []string) error {
	call, err := resolveKeyedCall(cmd.Context(), opts.RootOptions, args)
	if err != nil {
		return err
	}

	update, err := buildUpdate(opts.Set, opts.Remove, call)
	if err != nil {
		return err
	}

	attrs, err := call.client.UpdateItem(cmd.Context(), call.name, call.key, update)
	if err != nil {
		return err
	}

	out, err := ddb.ItemToJSON(attrs)
	if err != nil {
		return err
	}

	cmd.Println(out)

	return nil
}

func buildUpdate(set, remove string, call *keyedCall) (expression.Result, error) {
	compiler := expression.NewCompiler()

	if set != "" {
		actions, err := expression.ParseSetActions(set)
		if err != nil {
			return expression.Result{}, err
		}

		return compiler.CompileSet(actions), nil
	}

	if remove == "" {
		return expression.Result{}, errors.New("one of --set or --remove is required")
	}

	paths, err := expression.ParseRemoveActions(remove)
	if err != nil {
		return expression.Result{}, err
	}

	protected := []string{call.table.Pk.Name}
	if call.table.Sk != nil {
		protected = append(protected, call.table.Sk.Name)
	}

	return compiler.CompileRemove(paths, protected...)
}
