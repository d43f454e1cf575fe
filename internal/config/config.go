// Package config parses the server's command-line flags. Unlike the
// teacher's ini-based server/conf, this server has a small, fixed flag
// surface, so flag.FlagSet is used directly rather than a config-file
// format nothing else in this repo needs.
package config

import (
	"flag"
	"fmt"
	"io"
	"os"
)

// Cfg holds the resolved command-line configuration.
type Cfg struct {
	Filename    string
	Address     string
	Port        int
	Debug       bool
	ShowVersion bool
	ShowHelp    bool
}

const helpBanner = `sqlited -- a MySQL-wire-protocol gateway onto a SQLite file

Usage:
  sqlited --filename path/to.db [--address 127.0.0.1] [--port 3306] [--debug]

Flags:
  --filename   path to the SQLite database file (required)
  --address    address to bind (default "localhost")
  --port       port to listen on (default 3306)
  --debug      enable debug logging
  --version    print the version and exit
  --help       print this message and exit
`

// Version is the gateway's own release string, distinct from the
// protocol version string advertised to clients in the handshake.
const Version = "sqlited 1.0.0"

// Parse parses args (normally os.Args[1:]) into a Cfg. output receives
// --help/--version text.
func Parse(args []string, output io.Writer) (*Cfg, error) {
	fs := flag.NewFlagSet("sqlited", flag.ContinueOnError)
	fs.SetOutput(output)

	cfg := &Cfg{}
	fs.StringVar(&cfg.Filename, "filename", "", "path to the SQLite database file")
	fs.StringVar(&cfg.Address, "address", "localhost", "address to bind")
	fs.IntVar(&cfg.Port, "port", 3306, "port to listen on")
	fs.BoolVar(&cfg.Debug, "debug", false, "enable debug logging")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "print the version and exit")
	fs.BoolVar(&cfg.ShowHelp, "help", false, "print this message and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.ShowHelp {
		fmt.Fprint(output, helpBanner)
		return cfg, nil
	}
	if cfg.ShowVersion {
		fmt.Fprintln(output, Version)
		return cfg, nil
	}

	if cfg.Filename == "" {
		return nil, fmt.Errorf("--filename is required")
	}
	if _, err := os.Stat(cfg.Filename); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", cfg.Filename)
		}
		return nil, err
	}

	return cfg, nil
}
