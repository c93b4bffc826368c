package main

import (
	"os"

	"github.com/yumyai/ggutils/cmd"
	"github.com/yumyai/ggutils/logger"
)

func main() {
	defer logger.Sync() // Make sure that the buffered is flushed.

	if err := cmd.NewRoot().Execute(); err != nil {
		logger.Sync()
		os.Exit(1)
	}
}
