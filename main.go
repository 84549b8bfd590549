// Package main is the entry point for the reposcope CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/reposcope/cmd"
	"github.com/huangsam/reposcope/core"
	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/internal/iocache"
)

func main() {
	cmd.SetStoreManager(iocache.Manager)

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	iocache.CloseStores()

	if err != nil {
		// The gate already printed its verdict
		var gate *core.GateError
		if !errors.As(err, &gate) {
			fmt.Fprintln(os.Stderr, "❌", err)
		}
		os.Exit(1)
	}
}
