// Package main is the entry point for the curio CLI.
package main

import "github.com/curioplatform/curio-cli/internal/cli"

func main() {
	cli.Execute()
}
