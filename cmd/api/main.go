package main

import (
	"context"
	"net/http"
	"os"

	"geo-tracker/docs"
	"geo-tracker/internal/config"
	"geo-tracker/internal/geoip"
	"geo-tracker/internal/handler"
	"geo-tracker/internal/locationlog"
	"geo-tracker/internal/repository"
	"geo-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Geo Tracker API
//	@version		1.0
//	@description	Records geolocation samples in a JSON log kept in a GitHub repository.
//	@BasePath		/api

func main() {
	config, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	setupLogger(config)

	store, closeStore, err := repository.Open(context.Background(), config)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open location store")
	}
	defer closeStore()

	if !config.TokenConfigured() && config.StoreBackend == "github" {
		log.Warn().Msg("GITHUB_TOKEN is not set, saving locations will fail until it is configured")
	}

	// Initialize layers
	writer := locationlog.NewWriter(store, locationlog.Options{
		Path:          config.FilePath,
		MessageFormat: config.CommitMessage,
	})
	resolver := geoip.NewIPAPIResolver(geoip.Config{
		BaseURL:       config.IPGeoBaseURL,
		APIKey:        config.IPGeoAPIKey,
		RatePerMinute: config.IPGeoRatePerMinute,
		Timeout:       config.RequestTimeout,
	})

	locationService := service.NewLocationService(writer, resolver, config.AppendRetries)

	locationHandler := handler.NewLocationHandler(locationService)
	pinger, _ := store.(handler.Pinger)
	statusHandler := handler.NewStatusHandler(handler.StatusInfo{
		TokenConfigured: config.TokenConfigured(),
		RepoOwner:       config.RepoOwner,
		RepoName:        config.RepoName,
		FilePath:        config.FilePath,
		Backend:         config.StoreBackend,
	}, pinger)

	gin.SetMode(config.GinMode)
	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	docs.SwaggerInfo.BasePath = "/api"
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.GET("/test", statusHandler.Test)
	api.POST("/save-location", locationHandler.SaveLocation)
	api.GET("/save-ip-location", locationHandler.SaveIPLocation)

	r.NoRoute(handler.NotFound(config.StaticDir))

	log.Info().Str("address", config.ServerAddress).Str("backend", config.StoreBackend).Msg("starting server")
	if err := r.Run(config.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func setupLogger(config config.Config) {
	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	if config.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
