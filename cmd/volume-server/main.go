package main

import (
	"flag"
	"os"

	"github.com/aknopov/ballcube"
	"github.com/aknopov/fancylogger"
)

// Request body; Dim == -1 stops the server
type VolumeRequest struct {
	Dim   int    `json:"dim"`
	Scale string `json:"scale"`
}

type VolumeResponse struct {
	LogVolume string `json:"logVolume"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

const (
	Port = 8080
)

var (
	logger = fancylogger.NewLogger(os.Stderr, fancylogger.LiteFg)
)

func main() {
	port := flag.Int("port", Port, "listening port")
	cfgFile := flag.String("config", "", "YAML estimator configuration")
	noCache := flag.Bool("nocache", false, "keep precomputed terms in memory only")
	flag.Parse()

	cfg := ballcube.Config{}
	if *cfgFile != "" {
		cfg = ballcube.AssertNoErr(ballcube.LoadConfig(*cfgFile))
	}
	cfg.NoCache = cfg.NoCache || *noCache
	logger.Info().Msgf("Using precision=%d, terms=%d, cacheDir=%q, noCache=%t", cfg.Precision, cfg.Terms, cfg.CacheDir, cfg.NoCache)

	startGin(*port, cfg.Estimator())
}
