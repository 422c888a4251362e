package main

import "github.com/acvora/acvora/cmd"

func main() {
	cmd.Execute()
}
