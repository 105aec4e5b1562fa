package main

import (
	"fmt"
	"os"

	"github.com/birdie-ai/golibs/slog"

	"github.com/dynaqlabs/dynaq/cli"
)

func main() {
	logCfg, err := slog.LoadConfig("DY")
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid log configuration:", err)
		os.Exit(1)
	}

	if err := slog.Configure(logCfg); err != nil {
		fmt.Fprintln(os.Stderr, "configuring logging:", err)
		os.Exit(1)
	}

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
