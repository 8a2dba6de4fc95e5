// Command recipeboxctl runs database maintenance tasks: applying and rolling
// back migrations and loading demo data.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
