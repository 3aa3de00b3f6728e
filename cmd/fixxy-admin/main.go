// Package main is the entry point of the Fixxy admin dashboard.
package main

import (
	"os"

	"fixxyadmin/cmd/fixxy-admin/commands"
)

func main() {
	if err := commands.Root().Execute(); err != nil {
		os.Exit(1)
	}
}
