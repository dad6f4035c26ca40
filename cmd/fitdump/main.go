package main

import "github.com/twinfer/fit-plugin/cmd/fitdump/cmd"

func main() {
	cmd.Execute()
}
