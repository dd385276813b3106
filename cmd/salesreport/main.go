// Command salesreport computes seller performance reports from a dataset file
// and manages the report store schema.
package main

import (
	"errors"
	"fmt"
	"os"

	pkgerrors "github.com/angelmondragon/salesreport/pkg/errors"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func printError(err error) {
	var typed *pkgerrors.Error
	if errors.As(err, &typed) {
		fmt.Fprintf(os.Stderr, "error [%s]: %s\n", typed.Code(), typed.Message())
		if details := typed.Details(); details != nil {
			fmt.Fprintf(os.Stderr, "details: %v\n", details)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}
