package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dynaqlabs/dynaq/ddb"
	"github.com/dynaqlabs/dynaq/expression"
	"github.com/dynaqlabs/dynaq/schema"
)

// QueryOptions holds the flags of the query command.
type QueryOptions struct {
	*RootOptions
	SortKey    string
	Index      string
	Consistent bool
	Descending bool
	Limit      int32
	Strict     bool
	NonStrict  bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <partition-key-value>",
		Short: "Query items sharing a partition key",
		Long: `Query items sharing a partition key, optionally narrowed by a sort
key condition.

The sort key condition accepts comparators, ranges, and prefixes:
  dy query user1 --sort-key '= 42'
  dy query user1 --sort-key 'BETWEEN 10 AND 20'
  dy query user1 --sort-key 'BEGINS_WITH "2026-"'

A bare literal is an equality condition. Mismatched literal types are
coerced to the sort key's type unless --strict is given.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.SortKey, "sort-key", "s", "", "sort key condition")
	cmd.Flags().StringVarP(&opts.Index, "index", "i", "", "query a secondary index")
	cmd.Flags().BoolVar(&opts.Consistent, "consistent", false, "use strongly consistent reads")
	cmd.Flags().BoolVarP(&opts.Descending, "descending", "d", false, "sort results descending")
	cmd.Flags().Int32VarP(&opts.Limit, "limit", "l", 0, "maximum number of items to return")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "require sort key literals to match the key type exactly")
	cmd.Flags().BoolVar(&opts.NonStrict, "non-strict", false, "coerce sort key literals to the key type")
	cmd.MarkFlagsMutuallyExclusive("strict", "non-strict")

	return cmd
}

func runQuery(cmd *cobra.Command, opts *QueryOptions, pkValue string) error {
	cc, err := newContext(opts.RootOptions)
	if err != nil {
		return err
	}

	cc.SetStrictFlags(opts.Strict, opts.NonStrict)

	client, err := ddb.NewClient(cmd.Context(), cc)
	if err != nil {
		return err
	}

	table, err := tableSchema(cmd.Context(), cc, client)
	if err != nil {
		return err
	}

	pk, sk, err := table.KeysForIndex(opts.Index)
	if err != nil {
		return err
	}

	keyCondition, err := buildKeyCondition(pk, sk, pkValue, opts.SortKey, cc.ShouldStrictForQuery())
	if err != nil {
		return err
	}

	name, err := cc.EffectiveTableName()
	if err != nil {
		return err
	}

	items, err := client.Query(cmd.Context(), ddb.QueryInput{
		Table:        name,
		KeyCondition: keyCondition,
		Index:        opts.Index,
		Consistent:   opts.Consistent,
		Limit:        opts.Limit,
		Descending:   opts.Descending,
	})
	if err != nil {
		return err
	}

	out, err := ddb.ItemsToJSON(items)
	if err != nil {
		return err
	}

	cmd.Println(out)

	return nil
}

// buildKeyCondition resolves the partition key value and the optional
// sort key condition against the key schema and compiles both.
func buildKeyCondition(pk schema.Key, sk *schema.Key, pkValue, sortKey string, strict bool) (expression.Result, error) {
	pkLiteral, err := keyLiteral(pk, pkValue)
	if err != nil {
		return expression.Result{}, err
	}

	compiler := expression.NewCompiler()

	if sortKey == "" {
		return compiler.CompileKeyCondition(pk, pkLiteral, nil, nil), nil
	}

	if sk == nil {
		return expression.Result{}, fmt.Errorf("table has no sort key, but a sort key condition was given")
	}

	cond, err := expression.ParseSortKeyCondition(sortKey)
	if err != nil {
		return expression.Result{}, err
	}

	resolved, err := cond.Resolve(*sk, strict)
	if err != nil {
		return expression.Result{}, err
	}

	return compiler.CompileKeyCondition(pk, pkLiteral, sk, resolved), nil
}
