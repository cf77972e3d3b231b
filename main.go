package main

import (
	"errors"
	"net/http"
	"os"
	"os/exec"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"swiggytracker/config"
	"swiggytracker/database"
	"swiggytracker/logger"
	"swiggytracker/metrics"
	"swiggytracker/ordersync"
	"swiggytracker/render"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to read .env")
	}

	env, err := config.LoadEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid environment")
	}
	logger.New(logger.Options{Level: logger.ParseLevel(env.LogLevel), Format: env.LogFormat})

	config.SetPath(env.ConfigPath)
	if _, err := config.LoadConfig(); err != nil {
		log.Warn().Err(err).Msg("failed to load config file, using defaults")
	}

	log.Info().Str("path", env.DBPath).Msg("connecting to database")
	dbConn, err := database.Open(env.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("database initialization failed")
	}
	defer dbConn.Close()

	reg := metrics.NewRegistry()
	svc := ordersync.NewService(dbConn,
		ordersync.BrowserConnector(config.GetConfig),
		ordersync.WithMetrics(reg),
	)

	r := chi.NewRouter()
	SetupRoutes(r, Deps{
		DB:       dbConn,
		Sync:     svc,
		Metrics:  reg,
		Charts:   render.NewSessions(render.DefaultMaxSessions),
		StaticFS: os.DirFS("static"),
	})

	addr := ":" + env.Port
	url := "http://localhost" + addr
	log.Info().Str("url", url).Msg("starting server")

	if env.OpenBrowser {
		openBrowser(url)
	}

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal().Err(err).Msg("server start error")
	}
}

func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = exec.Command("xdg-open", url).Start()
	}
	if err != nil {
		log.Warn().Err(err).Msg("failed to open browser")
	}
}
