package main

import "github.com/marketerz/marketerz/cmd"

func main() {
	cmd.Execute()
}
