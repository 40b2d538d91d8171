package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nvinod007/drawnguess/game"
	"github.com/Nvinod007/drawnguess/httpapi"
	"github.com/Nvinod007/drawnguess/migrations"
	"github.com/Nvinod007/drawnguess/shared/configs"
	_ "github.com/Nvinod007/drawnguess/shared/logger"
	"github.com/Nvinod007/drawnguess/storage"
)

func main() {
	ctx := context.Background()

	migrations.Migrate(configs.Envs.POSTGRES_URL)

	repo, err := storage.NewPostgresRepo(ctx, configs.Envs.POSTGRES_URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Couldn't connect to postgres")
	}
	defer repo.Close()

	clock := game.NewClock()
	gateway := game.NewGateway()
	registry := game.NewRegistry(repo, repo, gateway, clock)
	go gateway.PingLoop(ctx, clock, 30*time.Second)

	var allowedOrigins []string
	if configs.Envs.GIN_MODE == "release" {
		gin.SetMode(gin.ReleaseMode)
		allowedOrigins = append(allowedOrigins, "https://"+configs.Envs.FRONTEND_ORIGIN)
		allowedOrigins = append(allowedOrigins, "https://www."+configs.Envs.FRONTEND_ORIGIN)
	} else {
		allowedOrigins = append(allowedOrigins, "http://"+configs.Envs.FRONTEND_ORIGIN)
	}

	r := gin.Default()

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     []string{"Content-Type", "Origin"},
	}))

	httpapi.NewHandler(repo).RegisterRoutes(r)
	game.NewHandler(registry).RegisterRoutes(r)

	port := configs.Envs.PORT
	if port == "" {
		port = "5000"
	}
	log.Info().Str("port", port).Msg("api listening")
	if err := r.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("Couldn't start server")
	}
}
