// Command socialctl is a CLI client for the social network API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/socialclient/internal/errs"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// config holds the global flags.
type config struct {
	api        string
	store      string
	dir        string
	redisURL   string
	dsn        string
	migrate    bool
	verbose    bool
	passphrase string
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func usage() {
	fmt.Fprintf(os.Stderr, `socialctl CLI
Usage:
  socialctl [-api URL] [-store file|memory|redis|postgres] [-dir DIR] [-redis-url URL] [-dsn DSN] [-migrate] [-v] <cmd> [args]

Commands:
  version
  register   -name <name> -email <email> -p <password|->   (saves token)
  login      -email <email> -p <password|->                (saves token)
  logout
  status                                                   (session and token expiry hint)
  me
  feed
  show       -id <post>
  like       -id <post>                                    (toggles)
  comment    -id <post> -text <text>
  post       -text <text> | -file <path|->  [-image <path>]
  edit       -id <post> -text <text> | -file <path|->  [-image <path>] [-remove-image]
  rm         -id <post>
  avatar     -file <path>

Env: SOCIAL_API, SOCIAL_TOKEN_PASSPHRASE (seals the stored token), REDIS_URL, SOCIAL_DSN
`)
	os.Exit(2)
}

// ---- utils ----

func readAll(p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(p)
}

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func fail(err error) {
	switch {
	case errors.Is(err, errUsage):
		usage()
	case errors.Is(err, errs.ErrAuthRequired):
		fmt.Fprintf(os.Stderr, "%v (socialctl login)\n", err)
	default:
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}

// ---- main ----

// main parses global flags, opens the session backend and dispatches the subcommand.
func main() {
	var cfg config
	flag.StringVar(&cfg.api, "api", envOr("SOCIAL_API", "http://localhost:8000"), "API base URL")
	flag.StringVar(&cfg.store, "store", "file", "session backend: file|memory|redis|postgres")
	flag.StringVar(&cfg.dir, "dir", "", "session directory for the file backend")
	flag.StringVar(&cfg.redisURL, "redis-url", envOr("REDIS_URL", "redis://localhost:6379/0"), "redis URL")
	flag.StringVar(&cfg.dsn, "dsn", os.Getenv("SOCIAL_DSN"), "PostgreSQL DSN")
	flag.BoolVar(&cfg.migrate, "migrate", false, "apply migrations for the postgres backend")
	flag.BoolVar(&cfg.verbose, "v", false, "log requests to stderr")
	flag.Usage = usage
	flag.Parse()
	cfg.passphrase = os.Getenv("SOCIAL_TOKEN_PASSPHRASE")

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	if cmd == "version" {
		fmt.Printf("socialctl %s (%s)\n", version, buildDate)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log := newLogger(cfg.verbose)
	defer func() { _ = log.Sync() }()

	a, release, err := newApp(ctx, cfg, os.Stdout, os.Stderr, log)
	if err != nil {
		fail(err)
	}
	err = a.run(ctx, cmd, flag.Args()[1:])
	release()
	if err != nil {
		fail(err)
	}
}
