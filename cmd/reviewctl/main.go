package main

import "carereviews/cli/cmd"

func main() {
	cmd.Execute()
}
