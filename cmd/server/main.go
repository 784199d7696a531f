package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/natevvv/indoor-routing/pkg/routing"
	"github.com/natevvv/indoor-routing/pkg/server/openapi_server"
	"github.com/natevvv/indoor-routing/pkg/venue"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func getenv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	radius, err := strconv.ParseFloat(getenv("NAV_SMOOTHING_RADIUS", "0"), 64)
	if err != nil {
		log.Fatalf("invalid NAV_SMOOTHING_RADIUS: %v", err)
	}
	venueFile := flag.String("venue", getenv("NAV_VENUE", "venue.json"), "Venue file to serve")
	addr := flag.String("addr", getenv("NAV_ADDR", ":8081"), "Listen address")
	mode := flag.String("mode", getenv("NAV_MODE", "consumer"), "Deployment mode (consumer or enterprise)")
	navigator := flag.String("navigator", getenv("NAV_NAVIGATOR", "astar"), "Search algorithm (astar, dijkstra or plain-dijkstra)")
	smoothingRadius := flag.Float64("smoothing-radius", radius, "Buffer radius of the path smoothing in meters, 0 uses the default")
	development := flag.Bool("dev", false, "Development logging")
	flag.Parse()

	logger, err := zap.NewProduction()
	if *development {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	deploymentMode, err := routing.ParseDeploymentMode(*mode)
	if err != nil {
		logger.Fatal("invalid deployment mode", zap.Error(err))
	}

	start := time.Now()
	v, err := venue.Load(*venueFile)
	if err != nil {
		logger.Fatal("can't load venue", zap.Error(err))
	}
	router, err := v.NewRouter(routing.Config{
		Mode:            deploymentMode,
		SmoothingRadius: *smoothingRadius,
		Navigator:       *navigator,
	}, logger)
	if err != nil {
		logger.Fatal("can't build venue", zap.Error(err))
	}
	logger.Info("venue loaded",
		zap.String("venue", v.Name),
		zap.Int("nodes", router.Graph().NodeCount()),
		zap.Int("arcs", router.Graph().ArcCount()),
		zap.Strings("floors", router.Graph().GroupKeys()),
		zap.Duration("elapsed", time.Since(start)),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := openapi_server.NewMetrics(reg)

	service := openapi_server.NewDefaultApiService(router, metrics, logger)
	controller := openapi_server.NewDefaultApiController(service)
	server := &http.Server{
		Addr:              *addr,
		Handler:           openapi_server.NewRouter(logger, metrics, reg, controller),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		logger.Info("listening", zap.String("addr", *addr), zap.Stringer("mode", deploymentMode))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdown); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
