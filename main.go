package main

import "github.com/NUPS-NASA/exohunt/cmd"

func main() {
	cmd.Execute()
}
