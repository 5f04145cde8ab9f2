package main

import (
	"flag"
	"fmt"
	"os"
	"susrolld/internal/di"
	"susrolld/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "enable debug logging to console")
	flag.Parse()

	_, err := di.InitApp(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "susrolld: %s\n", err)
		os.Exit(1)
	}
}
