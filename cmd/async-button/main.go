package main

import "github.com/oshokin/async-button/cmd/async-button/cmd"

func main() {
	cmd.Execute()
}
