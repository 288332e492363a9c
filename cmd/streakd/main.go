package main

import (
	"flag"
	"fmt"
	"os"
	"streakd/internal/di"
	"streakd/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the YAML config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "also log to the console")
	flag.Parse()

	_, cleanup, err := di.InitApp(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "streakd: %v\n", err)
		os.Exit(1)
	}
	cleanup()
}
