package main

import "github.com/fyerfyer/legal-summary/internal/cli"

func main() {
	cli.Execute()
}
