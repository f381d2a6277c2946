package main

import (
	"os"

	"github.com/ariel-frischer/specguard/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
