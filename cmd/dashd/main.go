package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mchmarny/dashd/pkg/dashboard"
	"github.com/mchmarny/dashd/pkg/logger"
	"github.com/mchmarny/dashd/pkg/menu"
	"github.com/mchmarny/dashd/pkg/server"
	"github.com/mchmarny/dashd/pkg/session"
)

// EnvVarSecret is the environment variable holding the session signing key.
const EnvVarSecret = "DASHD_SECRET"

var (
	port       = flag.Int("port", server.DefaultPort, "Port to run the server on")
	menuFile   = flag.String("menu", "", "Path to a YAML menu file (defaults to the built-in menu)")
	sessionTTL = flag.Duration("session-ttl", session.DefaultTTL, "How long an idle session is kept")
	loginWait  = flag.Duration("login-wait", dashboard.DefaultLoginWait, "How long a login request waits for the authenticator")
	secret     = flag.String("secret", os.Getenv(EnvVarSecret), "Session signing key (env "+EnvVarSecret+")")
	logLevel   = flag.String("log-level", os.Getenv(logger.EnvVarLogLevel), "Log level: debug, info, warn or error")
	tlsCert    = flag.String("tls-cert", "", "Path to the TLS certificate file")
	tlsKey     = flag.String("tls-key", "", "Path to the TLS private key file")
)

func main() {
	// Parse command-line flags
	flag.Parse()

	if err := run(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	m, err := makeMenu()
	if err != nil {
		return err
	}

	tls := *tlsCert != "" && *tlsKey != ""

	app, err := dashboard.New(m,
		dashboard.WithSecret([]byte(*secret)),
		dashboard.WithSessionTTL(*sessionTTL),
		dashboard.WithLoginWait(*loginWait),
		dashboard.WithLogLevel(*logLevel),
		dashboard.WithSecureCookie(tls),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []server.Option{server.WithPort(*port)}
	if tls {
		opts = append(opts, server.WithTLS(server.TLSConfig{CertFile: *tlsCert, KeyFile: *tlsKey}))
	}

	// Run the dashboard server
	return app.Run(ctx, opts...)
}

// makeMenu loads the navigation table from the menu file, or returns the
// built-in one.
func makeMenu() (*menu.Menu, error) {
	if *menuFile == "" {
		return menu.Default(), nil
	}
	return menu.Load(*menuFile)
}
