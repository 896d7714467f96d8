package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dmitrijs2005/storeauth/internal/flagx"
	"github.com/dmitrijs2005/storeauth/internal/timex"
)

// FileConfig is the on-disk shape of the configuration. Durations use
// timex.Duration so both "15m" strings and integer nanoseconds are accepted.
//
// Before decoding, a FileConfig is seeded from the current Config, so keys
// missing from the file keep their previous value.
type FileConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc" toml:"endpoint_addr_grpc"`
	DatabaseDSN                  string         `json:"database_dsn" toml:"database_dsn"`
	SecretKey                    string         `json:"secret_key" toml:"secret_key"`
	EncryptionKey                string         `json:"encryption_key" toml:"encryption_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration" toml:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration" toml:"refresh_token_validity_duration"`
	PendingTokenValidityDuration timex.Duration `json:"pending_token_validity_duration" toml:"pending_token_validity_duration"`
	MfaIssuer                    string         `json:"mfa_issuer" toml:"mfa_issuer"`
	MaxFailedAttempts            int            `json:"max_failed_attempts" toml:"max_failed_attempts"`
	LockoutDuration              timex.Duration `json:"lockout_duration" toml:"lockout_duration"`
	BcryptCost                   int            `json:"bcrypt_cost" toml:"bcrypt_cost"`
	Throttle                     FileThrottle   `json:"throttle" toml:"throttle"`
	LogLevel                     string         `json:"log_level" toml:"log_level"`
}

type FileThrottle struct {
	RegisterPerMinute  int `json:"register_per_minute" toml:"register_per_minute"`
	LoginPerMinute     int `json:"login_per_minute" toml:"login_per_minute"`
	VerifyMfaPerMinute int `json:"verify_mfa_per_minute" toml:"verify_mfa_per_minute"`
	RefreshPerMinute   int `json:"refresh_per_minute" toml:"refresh_per_minute"`
}

func fileConfigFrom(c *Config) *FileConfig {
	return &FileConfig{
		EndpointAddrGRPC:             c.EndpointAddrGRPC,
		DatabaseDSN:                  c.DatabaseDSN,
		SecretKey:                    c.SecretKey,
		EncryptionKey:                c.EncryptionKey,
		AccessTokenValidityDuration:  timex.Duration{Duration: c.AccessTokenValidityDuration},
		RefreshTokenValidityDuration: timex.Duration{Duration: c.RefreshTokenValidityDuration},
		PendingTokenValidityDuration: timex.Duration{Duration: c.PendingTokenValidityDuration},
		MfaIssuer:                    c.MfaIssuer,
		MaxFailedAttempts:            c.MaxFailedAttempts,
		LockoutDuration:              timex.Duration{Duration: c.LockoutDuration},
		BcryptCost:                   c.BcryptCost,
		Throttle: FileThrottle{
			RegisterPerMinute:  c.Throttle.RegisterPerMinute,
			LoginPerMinute:     c.Throttle.LoginPerMinute,
			VerifyMfaPerMinute: c.Throttle.VerifyMfaPerMinute,
			RefreshPerMinute:   c.Throttle.RefreshPerMinute,
		},
		LogLevel: c.LogLevel,
	}
}

func (f *FileConfig) apply(c *Config) {
	c.EndpointAddrGRPC = f.EndpointAddrGRPC
	c.DatabaseDSN = f.DatabaseDSN
	c.SecretKey = f.SecretKey
	c.EncryptionKey = f.EncryptionKey
	c.AccessTokenValidityDuration = f.AccessTokenValidityDuration.Duration
	c.RefreshTokenValidityDuration = f.RefreshTokenValidityDuration.Duration
	c.PendingTokenValidityDuration = f.PendingTokenValidityDuration.Duration
	c.MfaIssuer = f.MfaIssuer
	c.MaxFailedAttempts = f.MaxFailedAttempts
	c.LockoutDuration = f.LockoutDuration.Duration
	c.BcryptCost = f.BcryptCost
	c.Throttle = ThrottleConfig{
		RegisterPerMinute:  f.Throttle.RegisterPerMinute,
		LoginPerMinute:     f.Throttle.LoginPerMinute,
		VerifyMfaPerMinute: f.Throttle.VerifyMfaPerMinute,
		RefreshPerMinute:   f.Throttle.RefreshPerMinute,
	}
	c.LogLevel = f.LogLevel
}

// parseFile overlays values from the file named by -c / -config.
// Files ending in .toml are decoded as TOML, everything else as JSON.
// Without the flag nothing is loaded.
func parseFile(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	fc := fileConfigFrom(config)
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), fc); err != nil {
			return fmt.Errorf("decode toml config: %w", err)
		}
	} else if err := json.Unmarshal(data, fc); err != nil {
		return fmt.Errorf("decode json config: %w", err)
	}

	fc.apply(config)
	return nil
}
