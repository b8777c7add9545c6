package main

import (
	"github.com/tugochat/tugochat/internal/cli"
)

func main() {
	cli.Execute()
}
