// Command navgate-demo runs a self-contained demonstration of the
// navigation-gating core: a stub login backend that mints JWTs, a protected
// /auth subtree behind the guard middleware, and a choice of durable
// storage backends.
//
// Run:
//
//	go run ./cmd/navgate-demo serve
//
// Then:
//
//	# hit a protected page logged out (redirects to /public/login,
//	# remembers /auth/users as the pending redirect)
//	curl -i localhost:8080/auth/users
//
//	# log in (alice/admin may enter every section)
//	curl -i -X POST localhost:8080/public/login \
//	  -d 'username=alice&password=correct-horse'
//
// Configuration comes from NAVGATE_* environment variables, overridable by
// flags; see serveOptions.
package main

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
)

// serveOptions is the demo configuration, parsed from the environment and
// then layered with command-line flags.
type serveOptions struct {
	Addr       string `env:"NAVGATE_ADDR" envDefault:":8080"`
	Storage    string `env:"NAVGATE_STORAGE" envDefault:"memory"`
	FilePath   string `env:"NAVGATE_STORAGE_FILE" envDefault:"navgate-session.json"`
	RedisAddr  string `env:"NAVGATE_REDIS_ADDR"`
	RoutesFile string `env:"NAVGATE_ROUTES"`
	AuditJSON  bool   `env:"NAVGATE_AUDIT_JSON" envDefault:"true"`
}

func main() {
	opts := serveOptions{}
	if err := env.Parse(&opts); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	root := &cobra.Command{
		Use:           "navgate-demo",
		Short:         "demonstrates session restore, guarded navigation, and the post-login redirect",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "run the demo app with a stub login backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	serve.Flags().StringVar(&opts.Addr, "addr", opts.Addr, "listen address")
	serve.Flags().StringVar(&opts.Storage, "storage", opts.Storage, "storage backend: memory, file, or redis")
	serve.Flags().StringVar(&opts.FilePath, "storage-file", opts.FilePath, "session file for the file backend")
	serve.Flags().StringVar(&opts.RedisAddr, "redis-addr", opts.RedisAddr, "redis address; empty starts an embedded miniredis")
	serve.Flags().StringVar(&opts.RoutesFile, "routes", opts.RoutesFile, "YAML route table; empty uses the built-in demo routes")

	root.AddCommand(serve)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
