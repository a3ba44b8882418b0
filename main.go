// Package main is the entry point for the empbridge CLI.
// It serves and calls the employees method channel backed by SQL Server.
package main

import (
	"empbridge/cli/cmd"
)

func main() {
	cmd.Execute()
}
