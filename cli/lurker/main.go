package main

import (
	"os"

	lurkercmder "github.com/papercomputeco/lurker/cmd/lurker"
)

func main() {
	cmd := lurkercmder.NewLurkerCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
