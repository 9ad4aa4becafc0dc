package main

import (
	"os"

	"github.com/connorrli/cs1531-Project-Backend-sub000/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
