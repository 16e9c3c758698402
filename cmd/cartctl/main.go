package main

import (
	"context"
	"fmt"
	"os"

	"github.com/0xVantrex/hillersons-spaces-sub000/internal/cli"
	"github.com/0xVantrex/hillersons-spaces-sub000/pkg/shutdown"
)

func main() {
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	root := cli.NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
