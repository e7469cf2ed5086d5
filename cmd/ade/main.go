package main

import (
	"flag"
	"fmt"
	"os"

	"ade/internal/di"
	"ade/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the configuration file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "enable debug output")
	flag.Parse()

	_, err := di.InitApp(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %s\n", err)
		os.Exit(1)
	}
}
