package main

import (
	"github.com/dotnetkit/dotnetkit/cmd/dotnetkit/cmd"
)

func main() {
	cmd.Execute()
}
