package main

import (
	"flag"

	"homescout/internal/server"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	server.Run(*configPath)
}
