package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dynaqlabs/dynaq/ddb"
	"github.com/dynaqlabs/dynaq/schema"
)

// NewUseCommand creates the use command, binding the default table.
func NewUseCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "use <table>",
		Short:         "Bind a default table for following commands",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newContext(rootOpts)
			if err != nil {
				return err
			}

			cc.WithTable(args[0])

			client, err := ddb.NewClient(cmd.Context(), cc)
			if err != nil {
				return err
			}

			// Validate the table exists and warm the schema cache.
			table, err := client.DescribeTable(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if err := cc.RememberSchema(table); err != nil {
				return err
			}

			if err := cc.UseTable(cc.EffectiveRegion(), args[0]); err != nil {
				return err
			}

			cmd.Printf("Using table %s in %s.\n", args[0], cc.EffectiveRegion())

			return nil
		},
	}

	return cmd
}

// NewDescCommand creates the desc command.
func NewDescCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "desc [table]",
		Short:         "Show the key schema of a table",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newContext(rootOpts)
			if err != nil {
				return err
			}

			if len(args) > 0 {
				cc.WithTable(args[0])
			}

			name, err := cc.EffectiveTableName()
			if err != nil {
				return err
			}

			client, err := ddb.NewClient(cmd.Context(), cc)
			if err != nil {
				return err
			}

			table, err := client.DescribeTable(cmd.Context(), name)
			if err != nil {
				return err
			}

			if err := cc.RememberSchema(table); err != nil {
				return err
			}

			cmd.Print(describeTable(table))

			return nil
		},
	}

	return cmd
}

func describeTable(table *schema.Table) string {
	out := fmt.Sprintf("name: %s\nregion: %s\nmode: %s\npk: %s\n",
		table.Name, table.Region, table.Mode, table.Pk.Display())

	if table.Sk != nil {
		out += fmt.Sprintf("sk: %s\n", table.Sk.Display())
	}

	names := make([]string, 0, len(table.Indexes))
	for name := range table.Indexes {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		idx := table.Indexes[name]
		out += fmt.Sprintf("index %s: pk %s", idx.Name, idx.Pk.Display())

		if idx.Sk != nil {
			out += fmt.Sprintf(", sk %s", idx.Sk.Display())
		}

		out += "\n"
	}

	return out
}
