package main

import "github.com/notargets/ddmesh/cmd"

func main() {
	cmd.Execute()
}
