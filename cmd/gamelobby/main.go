package main

import (
	"github.com/jfmyers/gamelobby-go/internal/cli"
)

func main() {
	cli.Execute()
}
