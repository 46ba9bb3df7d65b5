package main

// ============================================================================
// sns-bulkupload entry point
// 1. Build the CLI and execute it
// 2. Print fatal errors to stderr
// 3. Exit with the code carried by the error
// ============================================================================

import (
	"fmt"
	"os"

	"github.com/ChuLiYu/sns-bulkupload/internal/cli"
	"github.com/ChuLiYu/sns-bulkupload/internal/exitcode"
)

func main() {
	rootCmd := cli.BuildCLI()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(exitcode.CodeOf(err))
	}
}
