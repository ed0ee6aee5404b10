package main

import "github.com/pfrederiksen/acta-lineup/internal/cli"

func main() {
	cli.Execute()
}
