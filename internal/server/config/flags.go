package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/cyclelogin/internal/flagx"
)

var serverFlags = []string{
	"-a", "-g", "-v", "-s", "-k", "-t", "-m", "-f", "-l", "-q", "-d", "-r",
	"-u", "-p", "-b", "-n", "-e",
}

// parseFlags populates Config fields from command-line flags.
//
//	-a string   HTTP bind address (":3847")
//	-g string   gRPC bind address (":50051")
//	-v string   log level
//	-s string   dev token signing key
//	-k string   override PIN
//	-t int      dev token validity, minutes
//	-m string   storage backend
//	-f string   data directory (file backend)
//	-l string   bolt database path
//	-q string   sqlite database path
//	-d string   PostgreSQL DSN
//	-r string   redis URL
//	-u/-p/-b/-n/-e   S3 user, password, bucket, region, endpoint
//
// Only these flags are looked at; others in os.Args are ignored.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.DevPIN, "k", config.DevPIN, "override PIN")

	devTokenValidity := fs.Int("t", int(config.DevTokenValidityDuration.Minutes()), "dev token validity (in minutes)")

	fs.StringVar(&config.StorageBackend, "m", config.StorageBackend, "storage backend")
	fs.StringVar(&config.DataDir, "f", config.DataDir, "data directory")
	fs.StringVar(&config.BoltPath, "l", config.BoltPath, "bolt database path")
	fs.StringVar(&config.SQLitePath, "q", config.SQLitePath, "sqlite database path")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisURL, "r", config.RedisURL, "redis URL")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "n", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.DevTokenValidityDuration = time.Duration(*devTokenValidity) * time.Minute
}
