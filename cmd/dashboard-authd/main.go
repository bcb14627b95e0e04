package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/merchantdeck/go-dashboard-auth/internal/config"
	"github.com/merchantdeck/go-dashboard-auth/server"
	"github.com/merchantdeck/go-dashboard-auth/server/sessionrepo"
	"github.com/merchantdeck/go-dashboard-auth/upstream"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

const sessionSweepInterval = 5 * time.Minute

func main() {
	configPath := pflag.String("config", "", "path to a yaml overrides file")
	port := pflag.String("port", "", "listen port, overrides PORT")
	pretty := pflag.Bool("pretty", false, "human readable log output")
	pflag.Parse()

	if *pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	for {
		if err := run(*configPath, *port); err != nil {
			log.Fatal().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run(configPath, port string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	displayAppname(c.GetAppName())

	upstreamClient, err := upstream.New(c, upstream.WithLogger(log.Logger))
	if err != nil {
		return err
	}

	sessions := sessionrepo.NewInMemorySessionRepo()

	srv, err := server.New(c, upstreamClient, sessions)
	if err != nil {
		return err
	}

	addr := c.GetPort()
	if port != "" {
		addr = ":" + port
	}

	httpServer := &http.Server{Addr: addr, Handler: srv}
	go listenAndServe(httpServer)

	stopSweep := startSessionSweep(sessions)
	defer stopSweep()

	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func loadConfig(configPath string) (config.Config, error) {
	if configPath == "" {
		return config.New(), nil
	}
	return config.NewFromFile(configPath)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

// startSessionSweep periodically drops expired session records so logins
// that never log out do not accumulate forever.
func startSessionSweep(sessions sessionrepo.Repo) func() {
	ticker := time.NewTicker(sessionSweepInterval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				removed, err := sessions.DeleteExpired(time.Now())
				if err != nil {
					log.Err(err).Msg("session sweep failed")
					continue
				}
				if removed > 0 {
					log.Info().Int("removed", removed).Msg("swept expired sessions")
				}
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(done)
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
