package main

import (
	"fmt"
	"os"
)

// version is set at build time via -ldflags "-X main.version=x.x.x".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
