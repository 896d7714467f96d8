package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/storeauth/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-k string   MFA seed encryption key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-i string   MFA issuer label
//	-m int      failed logins before lockout
//	-lockout duration  lockout length (e.g., "15m")
//	-bcrypt-cost int   adaptive hash cost
//	-l string   log level
//
// The arguments are first filtered with flagx.FilterArgs so flags owned by
// other components (such as -c) do not make parsing fail.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-k", "-t", "-r", "-i", "-m", "-l", "-lockout", "-bcrypt-cost"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")
	fs.StringVar(&config.EncryptionKey, "k", config.EncryptionKey, "MFA seed encryption secret")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	fs.StringVar(&config.MfaIssuer, "i", config.MfaIssuer, "MFA issuer label")
	fs.IntVar(&config.MaxFailedAttempts, "m", config.MaxFailedAttempts, "failed logins before lockout")
	fs.DurationVar(&config.LockoutDuration, "lockout", config.LockoutDuration, "lockout duration")
	fs.IntVar(&config.BcryptCost, "bcrypt-cost", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
	return nil
}
