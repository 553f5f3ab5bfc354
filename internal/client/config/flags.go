package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/cyclelogin/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags. Only
// the flags handled here are passed to the flag set.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.Referrer, "r", cfg.Referrer, "referrer recorded with visits")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
