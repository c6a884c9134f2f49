package main

import (
	"fmt"
	"os"

	cmd "github.com/nest-os/nest/cmd/nest"
)

func main() {
	err := cmd.Nest.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
