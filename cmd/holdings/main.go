// Package main provides the holdings CLI.
package main

import "github.com/mesh-intelligence/holdings/internal/cli"

func main() {
	cli.Execute()
}
