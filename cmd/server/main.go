package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/gophbox/internal/server"
	"github.com/dmitrijs2005/gophbox/internal/server/config"
	"github.com/gin-gonic/gin"
)

func main() {

	ctx := context.Background()

	gin.SetMode(gin.ReleaseMode)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := server.NewApp(ctx, cfg, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
