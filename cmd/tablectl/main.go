package main

import (
	"log"
	"os"

	"github.com/ideamans/go-tablestate/internal/cli"
)

var version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
