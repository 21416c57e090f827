package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	conditional "github.com/always-cache/conditional"
	"github.com/always-cache/conditional/store"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

var (
	// CLI flags
	portFlag           int
	dbFilenameFlag     string
	redisAddrFlag      string
	configFlag         string
	verbosityTraceFlag bool
	logFilenameFlag    string

	// this is set by goreleaser
	version string
)

func init() {
	flag.IntVar(&portFlag, "port", 8080, "Port to listen on")
	flag.StringVar(&dbFilenameFlag, "db", "validators.db", "Validator DB file name (use 'memory' for in-memory db)")
	flag.StringVar(&redisAddrFlag, "redis", "", "Redis address for the validator store (overrides db)")
	flag.StringVar(&configFlag, "config", "", "Config file with cache-control rules")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	flag.StringVar(&logFilenameFlag, "log-file", "", "Log file to use (in addition to stdout)")

	if version == "" {
		version = "DEV"
	}
}

func main() {
	flag.Parse()

	// set log level
	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stdout
	// also output to logfile if specified
	logOutputs := make([]io.Writer, 0)
	logOutputs = append(logOutputs, zerolog.ConsoleWriter{Out: os.Stdout})
	if logFilenameFlag != "" {
		if logFileOutput, err := os.OpenFile(logFilenameFlag, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644); err != nil {
			log.Fatal().Err(err).Msg("Cannot open log file")
		} else {
			logOutputs = append(logOutputs, logFileOutput)
		}
	}
	multiWriter := zerolog.MultiLevelWriter(logOutputs...)
	log.Logger = log.Level(logLevel).Output(multiWriter).
		With().Str("version", version).Logger()

	var config Config
	if configFlag != "" {
		var err error
		if config, err = getConfig(configFlag); err != nil {
			log.Fatal().Err(err).Msg("Could not read config file")
		}
	}

	validators, err := createStore()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not create validator store")
	}

	cond := conditional.New(conditional.Config{
		Store:  validators,
		Rules:  config.Rules,
		Logger: &log.Logger,
	})

	resources := newResourceServer()

	r := chi.NewRouter()
	r.Use(hlog.NewHandler(log.Logger))
	r.Route("/resources", func(r chi.Router) {
		r.Use(cond.Middleware)
		r.Get("/{name}", resources.get)
		r.Put("/{name}", resources.put)
		r.Delete("/{name}", resources.delete)
	})

	log.Info().Msgf("Listening on port %v", portFlag)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", portFlag), r); err != nil {
		log.Fatal().Err(err).Msg("Server exited")
	}
}

func createStore() (store.ValidatorStore, error) {
	if redisAddrFlag != "" {
		client := redis.NewClient(&redis.Options{Addr: redisAddrFlag})
		return store.NewRedisStore(client, 24*time.Hour), nil
	}
	dbFilename := dbFilenameFlag
	if dbFilename == "memory" {
		dbFilename = "file::memory:?cache=shared"
	}
	return store.NewSQLiteStore(dbFilename)
}
