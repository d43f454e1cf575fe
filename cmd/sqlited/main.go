// Command sqlited serves a read-only MySQL-wire-protocol gateway over
// a SQLite file. Bootstrap shape (flag parsing, logging init, signal
// handling) grounded on the teacher's server/net/mysql_server.go
// initSignal idiom.
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/nnewton/sqlited/internal/config"
	"github.com/nnewton/sqlited/internal/logging"
	"github.com/nnewton/sqlited/internal/server"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Parse(args, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if cfg.ShowHelp || cfg.ShowVersion {
		return 0
	}

	if err := logging.Init("", cfg.Debug); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	srv := server.New(cfg.Filename)
	address := net.JoinHostPort(cfg.Address, strconv.Itoa(cfg.Port))

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGTERM)
	go func() {
		sig := <-signals
		logging.Log.Infof("sqlited: received signal %s, shutting down", sig)
		if err := srv.Stop(); err != nil {
			logging.Log.WithError(err).Warn("sqlited: error during shutdown")
		}
	}()

	if err := srv.ListenAndServe(address); err != nil {
		logging.Log.WithError(err).Error("sqlited: server exited with error")
		return 1
	}
	return 0
}
