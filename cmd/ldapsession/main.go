package main

import (
	"log"
	"os"

	"github.com/aussiebroadwan/ldapsession/internal/cli"
)

func main() {
	cfg := cli.LoadConfig()

	app, err := cli.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
	defer app.Close()

	if err := app.Run(os.Args[1:]); err != nil {
		log.Fatalf("%v", err)
	}
}
