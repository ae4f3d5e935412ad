package config

import (
	"flag"
	"io"
	"os"

	"github.com/dmitrijs2005/gophbox/internal/flagx"
	"github.com/dmitrijs2005/gophbox/internal/sizex"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-f string   SQLite database path
//	-r string   upload root directory
//	-k string   blob backend: local or s3
//	-l size     default storage limit for new accounts (e.g., "100 MiB")
//	-m size     max upload size (e.g., "16 MiB")
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-v string   log level: debug, info, warn, error
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, so -c/-config and -env never reach this FlagSet.
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-f", "-r", "-k", "-l", "-m", "-s", "-t", "-u", "-p", "-b", "-g", "-e", "-v",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.DatabasePath, "f", config.DatabasePath, "sqlite database path")
	fs.StringVar(&config.UploadRoot, "r", config.UploadRoot, "upload root directory")
	fs.StringVar(&config.BlobBackend, "k", config.BlobBackend, "blob backend (local|s3)")

	storageLimit := sizex.ByteSize(config.DefaultStorageLimit)
	maxUpload := sizex.ByteSize(config.MaxUploadSize)
	fs.Var(&storageLimit, "l", "default storage limit")
	fs.Var(&maxUpload, "m", "max upload size")

	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.DefaultStorageLimit = storageLimit.Int64()
	config.MaxUploadSize = maxUpload.Int64()

	// only touch the duration if -t was given, so sub-minute values from
	// earlier layers survive
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.AccessTokenValidityDuration = minutes(*accessTokenValidity)
		}
	})

	return nil
}
