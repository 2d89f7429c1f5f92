package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/kestrel-rp/quill/cli"
	"github.com/kestrel-rp/quill/log"
)

func main() {
	err := cli.Run(context.Background(), os.Exit, os.Args[1:]...)
	if err != nil {
		log.Make(os.Stderr).Error(
			"run failed",
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
