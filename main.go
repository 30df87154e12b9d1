package main

import "github.com/cradle-dev/cradle/cmd"

func main() {
	cmd.Execute()
}
