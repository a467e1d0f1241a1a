package main

import "github.com/RyanBlaney/sonido-bench/cmd"

func main() {
	cmd.Execute()
}
