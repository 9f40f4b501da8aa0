package server

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/travis-g/dicelang/cache"
)

// Defaults applied to any /v1/validate or /v1/evaluate request that
// omits its own budgets.
const (
	DefaultRecursionLimit = 1000
	DefaultDiceCountLimit = 10000
)

var (
	ShutdownGraceDuration = time.Second * 5
	DebugMode             bool
	Port                  int
	PrettifyLogs          bool
)

// programs memoizes compiled expressions across requests; an
// expression's compiled Program never depends on the caller's budgets.
var programs = cache.New()

// Run parses flags, wires logging, and serves the evaluation API until
// SIGINT, then shuts down gracefully. It is the flag-parsing entrypoint
// for a caller that owns the process's flags; the CLI's `server`
// subcommand calls Serve directly instead, since urfave/cli already
// owns os.Args by the time that subcommand runs.
func Run() (int, error) {
	flag.BoolVar(&DebugMode, "debug", false, "run the server in debug mode with higher verbosity")
	flag.BoolVar(&PrettifyLogs, "pretty", false, "prettify output logs. If false, outputs JSON logs")
	flag.IntVar(&Port, "port", 8000, "port to listen on")
	flag.Parse()

	return Serve(Port, DebugMode, PrettifyLogs)
}

// Serve wires logging and serves the evaluation API on port until
// SIGINT, then shuts down gracefully.
func Serve(port int, debug, prettyLogs bool) (int, error) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if prettyLogs {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Debug().Msg("debug mode enabled")
	}

	r := ConfigureRouting()

	srv := &http.Server{
		Handler:      r,
		Addr:         ":" + strconv.Itoa(port),
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server fatal error")
		}
	}()
	log.Info().Str("address", srv.Addr).Msg("server started")

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c
	log.Info().Msg("SIGINT received")

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownGraceDuration)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return 1, err
	}
	log.Info().Msg("shutting down")
	return 0, nil
}

func main() {
	exit, err := Run()
	if err != nil {
		log.Error().Err(err).Msg("exited with error")
	}
	os.Exit(exit)
}
