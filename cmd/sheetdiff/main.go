// sheetdiff: сравнение двух таблиц (xlsx/xls/csv) из командной строки.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errDifferent: таблицы различаются (при --fail-on-diff), код выхода 1 без сообщения.
var errDifferent = errors.New("tables differ")

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errDifferent) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sheetdiff",
		Short:         "Compare two spreadsheets row by row and cell by cell",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")
	root.AddCommand(newCompareCmd())
	return root
}
