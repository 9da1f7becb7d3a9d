package main

import (
	"os"

	servecmder "github.com/papercomputeco/lurker/cmd/lurker/serve"
)

func main() {
	cmd := servecmder.NewServeCmd()
	cmd.Use = "lurkerd"
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .lurker/ config directory")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
