// Package main is the entry point for the Chopper document service.
package main

import (
	"os"

	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/chopper-ai/chopper-docs/cmd/chopper-docs/app"
)

func main() {
	if err := app.NewDocsCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
