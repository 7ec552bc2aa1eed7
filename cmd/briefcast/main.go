package main

import (
	"os"

	"github.com/custodia-labs/briefcast/internal/adapters/driving/cli"
)

// version is set at build time:
//
//	go build -ldflags "-X main.version=v1.2.3" ./cmd/briefcast
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
