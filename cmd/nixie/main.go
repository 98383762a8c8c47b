package main

import "github.com/coreman2200/funtimes-nixie/cmd/nixie/cmd"

func main() {
	cmd.Execute()
}
