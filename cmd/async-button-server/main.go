package main

import "github.com/oshokin/async-button/cmd/async-button-server/cmd"

func main() {
	cmd.Execute()
}
