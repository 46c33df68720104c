package main

import (
	"log"

	"github.com/askelund/proofdeck/internal/client/cli"
	"github.com/askelund/proofdeck/internal/client/config"
)

func main() {

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run()

}
