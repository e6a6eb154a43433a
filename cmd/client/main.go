package main

import "github.com/mkallio/harvestmate/internal/cli"

func main() {
	cli.Execute()
}
