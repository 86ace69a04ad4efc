package main

import "github.com/fakeyudi/cliptag/cmd"

func main() {
	cmd.Execute()
}
