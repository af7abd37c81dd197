package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ashishkumar256/sunspot/secret"
)

// EnvPrefix prefixes every environment override: cache.addr is read from
// SUNSPOT_CACHE_ADDR.
const EnvPrefix = "SUNSPOT"

// Options controls where configuration is read from.
type Options struct {
	// Path is an explicit config file. When empty, sunspot.yaml is searched
	// in the working directory and /etc/sunspot, and a missing file is not
	// an error.
	Path string

	// Flags are bound by name; a flag named "cache.addr" overrides that key.
	Flags *pflag.FlagSet

	// Secrets resolves secretref values. Default: secret.DefaultResolver()
	Secrets *secret.Resolver
}

// Load reads, decodes, resolves and validates configuration.
func Load(ctx context.Context, opts Options) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, aliases := range envAliases {
		names := append([]string{EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, aliases...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	if opts.Flags != nil {
		if err := v.BindPFlags(opts.Flags); err != nil {
			return nil, fmt.Errorf("config: bind flags: %w", err)
		}
	}

	if err := readFile(v, opts.Path); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	resolver := opts.Secrets
	if resolver == nil {
		resolver = secret.DefaultResolver()
	}
	if err := resolveSecrets(ctx, resolver, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("sunspot")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/sunspot")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("config: read: %w", err)
	}
	return nil
}

func resolveSecrets(ctx context.Context, r *secret.Resolver, cfg *Config) error {
	fields := map[string]*string{
		"cache.password": &cfg.Cache.Password,
		"cache.addr":     &cfg.Cache.Addr,
		"auth.keys_file": &cfg.Auth.KeysFile,
		"sentry.dsn":     &cfg.Sentry.DSN,
	}
	for i := range cfg.Auth.Keys {
		fields[fmt.Sprintf("auth.keys[%d].key", i)] = &cfg.Auth.Keys[i].Key
		fields[fmt.Sprintf("auth.keys[%d].key_hash", i)] = &cfg.Auth.Keys[i].KeyHash
	}
	if err := r.ResolveInPlace(ctx, fields); err != nil {
		return fmt.Errorf("config: resolve secrets: %w", err)
	}
	return nil
}
