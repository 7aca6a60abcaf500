package main

import "github.com/angelospk/subfinder/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
