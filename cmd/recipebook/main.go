// Recipebook is a personal recipe catalog for the terminal.
//
// Usage:
//
//	recipebook [browse] [--location "filter=category:supper&recipe=fiskesuppe"]
//	recipebook list --sort rating
//	recipebook rate fiskesuppe 5
//	recipebook link --copy
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
