package main

import (
	"fmt"
	"os"

	"bx-casino/internal/verifycli"
)

func main() {
	if err := verifycli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
