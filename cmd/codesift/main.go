package main

import "github.com/codesift/codesift/internal/cli"

func main() {
	cli.Execute()
}
