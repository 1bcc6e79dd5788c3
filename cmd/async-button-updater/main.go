package main

import "github.com/oshokin/async-button/cmd/async-button-updater/cmd"

func main() {
	cmd.Execute()
}
