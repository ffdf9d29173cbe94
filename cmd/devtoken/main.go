// Command devtoken mints a signed access token for local development,
// using the same secret and issuer the API is configured with.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lovaraju987/seven-nights-stay-sub000/internal/auth"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/config"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file (default $SNS_CONFIG)")
	user := pflag.StringP("user", "u", "", "subject user id")
	role := pflag.StringP("role", "r", string(domain.RoleHosteller), "hosteller, owner, agent or admin")
	ttl := pflag.Duration("ttl", 24*time.Hour, "token lifetime")
	pflag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	config.LoadDotEnv(logger)

	if *user == "" {
		fmt.Fprintln(os.Stderr, "devtoken: --user is required")
		pflag.Usage()
		os.Exit(2)
	}
	actor := domain.Actor{UserID: *user, Role: domain.Role(*role)}
	if !actor.Role.Valid() {
		fmt.Fprintf(os.Stderr, "devtoken: unknown role %q\n", *role)
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath, os.LookupEnv, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "devtoken: %v\n", err)
		os.Exit(1)
	}
	verifier, err := auth.NewVerifier(cfg.Auth.JWTSecret, auth.WithIssuer(cfg.Auth.Issuer))
	if err != nil {
		fmt.Fprintf(os.Stderr, "devtoken: %v\n", err)
		os.Exit(1)
	}
	token, err := verifier.Issue(actor, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "devtoken: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
