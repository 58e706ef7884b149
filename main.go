// Package main is the entry point for the biosynth simulator. It
// delegates all argument parsing and simulation control to the cmd
// package.
package main

import "github.com/Arti-Code/biosynth/cmd"

func main() {
	cmd.Execute()
}
