package main

import "github.com/nfrund/notebook/cmd/notebook-cli/cmd"

func main() {
	cmd.Execute()
}
