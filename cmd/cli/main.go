package main

import (
	"fmt"
	"os"

	"github.com/crucial707/hci-accounts/cmd/cli/root"

	_ "github.com/crucial707/hci-accounts/cmd/cli/perf"
	_ "github.com/crucial707/hci-accounts/cmd/cli/users"
)

func main() {
	// Execute the root Cobra command
	if err := root.GetRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
