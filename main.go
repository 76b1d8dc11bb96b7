package main

import "github.com/promptpack/promptpack/cmd"

func main() {
	cmd.Execute()
}
