package main

import "github.com/flowgrid/pipeflow/cmd"

func main() {
	cmd.Execute()
}
