package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/eatonphil/tagdb"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	dbPath := flag.String("db", "", "database file, overrides the config")
	logLevel := flag.String("log-level", "", "debug, info, warning, error or none")
	flag.Parse()

	cfg := tagdb.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = tagdb.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	if *dbPath != "" {
		cfg.Path = *dbPath
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	db, err := tagdb.Open(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	tagdb.RunRepl(db)
}
