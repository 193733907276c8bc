package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/pixo/internal/client/cli"
	"github.com/dmitrijs2005/pixo/internal/client/config"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app := cli.NewApp(cfg)

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
		stop()
		os.Exit(1)
	}

}
