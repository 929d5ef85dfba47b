// Command fanctl signs in to fanverse and manages the fan's profile and XP
// from the terminal.
package main

import (
	"fmt"
	"os"
)

func main() {
	root, a := newRootCmd()
	if err := a.execute(root); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
