package main

import (
	"os"

	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
