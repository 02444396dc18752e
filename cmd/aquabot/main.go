package main

import "github.com/pfrederiksen/aquabot/internal/cli"

func main() {
	cli.Execute()
}
