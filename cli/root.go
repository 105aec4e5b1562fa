// Package cli wires the commands of the dy tool.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dynaqlabs/dynaq/config"
	"github.com/dynaqlabs/dynaq/ddb"
	"github.com/dynaqlabs/dynaq/schema"
)

// RootOptions holds the global flags shared by all commands.
type RootOptions struct {
	Region string
	Table  string
	Port   int
}

// NewRootCommand creates the root command of the dy CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "dy",
		Short:         "dy - DynamoDB from the command line",
		Long:          "A command line client for DynamoDB with a compact literal language for items, update expressions, and sort key conditions.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.Region, "region", "r", "", "AWS region to use, overriding the config file")
	cmd.PersistentFlags().StringVarP(&opts.Table, "table", "t", "", "target table, overriding the config file")
	cmd.PersistentFlags().IntVarP(&opts.Port, "port", "p", 0, "target a local endpoint on this port instead of the AWS service")

	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewScanCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewPutCommand(opts))
	cmd.AddCommand(NewDelCommand(opts))
	cmd.AddCommand(NewUpdCommand(opts))
	cmd.AddCommand(NewBwriteCommand(opts))
	cmd.AddCommand(NewUseCommand(opts))
	cmd.AddCommand(NewDescCommand(opts))

	return cmd
}

// newContext loads config and applies the global flag overrides.
func newContext(opts *RootOptions) (*config.Context, error) {
	cc, err := config.NewContext()
	if err != nil {
		return nil, err
	}

	if opts.Region != "" {
		cc.WithRegion(opts.Region)
	}

	if opts.Table != "" {
		cc.WithTable(opts.Table)
	}

	if opts.Port != 0 {
		cc.WithPort(opts.Port)
	}

	return cc, nil
}

// tableSchema resolves the effective table's schema, preferring the
// cache and falling back to DescribeTable, caching the result.
func tableSchema(ctx context.Context, cc *config.Context, client *ddb.Client) (*schema.Table, error) {
	name, err := cc.EffectiveTableName()
	if err != nil {
		return nil, err
	}

	if cached, ok := cc.CachedSchema(); ok {
		return cached, nil
	}

	table, err := client.DescribeTable(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := cc.RememberSchema(table); err != nil {
		return nil, fmt.Errorf("caching table schema: %w", err)
	}

	return table, nil
}
