package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/Fepozopo/photoedit/pkg/cli"
)

func main() {
	if err := fang.Execute(
		context.Background(),
		cli.NewRootCmd(),
		fang.WithVersion(cli.Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
