package main

import "github.com/mderrick/schedgen/cmd"

func main() {
	cmd.Execute()
}
