package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DevJWTSecret is the fallback signing secret for local runs. It is refused
// when RequireStrongSecret is set.
// #nosec G101 -- well-known development value, not a credential.
const DevJWTSecret = "authsvc-dev-secret-change-me"

// Config contains all runtime configuration.
//
// Precedence, lowest first: DefaultConfig, YAML file, .env + environment, CLI flags.
type Config struct {
	ServiceName string `koanf:"service.name"`

	HTTPAddr string `koanf:"http.addr"`

	ReadHeaderTimeout time.Duration `koanf:"http.read_header_timeout"`
	ReadTimeout       time.Duration `koanf:"http.read_timeout"`
	WriteTimeout      time.Duration `koanf:"http.write_timeout"`
	IdleTimeout       time.Duration `koanf:"http.idle_timeout"`
	MaxHeaderBytes    int           `koanf:"http.max_header_bytes"`
	MaxBodyBytes      int64         `koanf:"http.max_body_bytes"`

	LogLevel  string `koanf:"log.level"`
	LogFormat string `koanf:"log.format"`

	DatabaseURL string `koanf:"db.url"`
	DBSchema    string `koanf:"db.schema"`
	DBMaxConns  int32  `koanf:"db.max_conns"`
	DBMinConns  int32  `koanf:"db.min_conns"`

	// If true, /health/ready returns 503 unless a DB is configured and reachable.
	ReadinessRequireDB bool `koanf:"db.readiness_required"`

	JWTSecret     string `koanf:"jwt.secret"`
	JWTIssuer     string `koanf:"jwt.issuer"`
	JWTTTLSeconds int    `koanf:"jwt.ttl_seconds"`

	// If true, the JWT secret MUST be set explicitly and be >= 32 bytes.
	RequireStrongSecret bool `koanf:"security.require_strong_secret"`

	BcryptCost int `koanf:"security.bcrypt_cost"`

	CORSAllowedOrigins   []string `koanf:"cors.allowed_origins"`
	CORSAllowCredentials bool     `koanf:"cors.allow_credentials"`
	CORSMaxAgeSeconds    int      `koanf:"cors.max_age_seconds"`

	// Seed user created at startup; empty email disables seeding.
	SeedEmail    string `koanf:"seed.email"`
	SeedPassword string `koanf:"seed.password"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		ServiceName: "authsvc",
		HTTPAddr:    "0.0.0.0:8080",

		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
		MaxBodyBytes:      1 << 20,

		LogLevel:  "info",
		LogFormat: "json",

		DBSchema:   "authsvc",
		DBMaxConns: 10,
		DBMinConns: 0,

		JWTSecret:     DevJWTSecret,
		JWTIssuer:     "authsvc",
		JWTTTLSeconds: 120,

		BcryptCost: 10,

		CORSAllowedOrigins: []string{"*"},
		CORSMaxAgeSeconds:  600,

		SeedEmail:    "admin@local.com",
		SeedPassword: "password123",
	}
}

// JWTTTL returns the token lifetime.
func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLSeconds) * time.Second
}

// Validate checks values that would otherwise fail late or silently.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.HTTPAddr) == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	if c.JWTTTLSeconds <= 0 {
		errs = append(errs, fmt.Errorf("jwt.ttl_seconds must be positive, got %d", c.JWTTTLSeconds))
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "json", "pretty":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or pretty, got %q", c.LogFormat))
	}
	if c.DBMinConns > c.DBMaxConns {
		errs = append(errs, fmt.Errorf("db.min_conns(%d) > db.max_conns(%d)", c.DBMinConns, c.DBMaxConns))
	}
	return errors.Join(errs...)
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"addr":            "http.addr",
	"log-level":       "log.level",
	"log-format":      "log.format",
	"database-url":    "db.url",
	"jwt-issuer":      "jwt.issuer",
	"jwt-ttl-seconds": "jwt.ttl_seconds",
}

// BindFlags registers the config-overriding flags on fs.
func BindFlags(flags *pflag.FlagSet) {
	def := DefaultConfig()
	flags.String("addr", def.HTTPAddr, "HTTP listen address")
	flags.String("log-level", def.LogLevel, "log level (debug, info, warn, error)")
	flags.String("log-format", def.LogFormat, "log format (json, pretty)")
	flags.String("database-url", "", "PostgreSQL URL; empty uses the in-memory store")
	flags.String("jwt-issuer", def.JWTIssuer, "token issuer")
	flags.Int("jwt-ttl-seconds", def.JWTTTLSeconds, "token lifetime in seconds")
}

// LoadConfig builds a Config from defaults, the YAML file at path (or
// AUTHSVC_CONFIG_FILE), .env and the environment, and changed flags.
// Either path or flags may be empty/nil.
func LoadConfig(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := DefaultConfig()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: .env: %w", err)
	}

	if path == "" {
		path = EnvString("AUTHSVC_CONFIG_FILE", "")
	}
	if path != "" {
		k := koanf.New(".")
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", path, err)
		}
		if err := unmarshalFlat(k, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if flags != nil {
		k := koanf.New(".")
		provider := posflag.ProviderWithFlag(flags, ".", nil, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, fmt.Errorf("config: flags: %w", err)
		}
		if err := unmarshalFlat(k, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func unmarshalFlat(k *koanf.Koanf, cfg *Config) error {
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return fmt.Errorf("config: decode: %w", err)
	}
	return nil
}

// applyEnv overlays AUTHSVC_* variables; unset or unparsable values keep the current value.
func applyEnv(cfg *Config) {
	cfg.ServiceName = EnvString("AUTHSVC_SERVICE_NAME", cfg.ServiceName)
	cfg.HTTPAddr = EnvString("AUTHSVC_HTTP_ADDR", cfg.HTTPAddr)

	cfg.ReadHeaderTimeout = EnvDuration("AUTHSVC_HTTP_READ_HEADER_TIMEOUT", cfg.ReadHeaderTimeout)
	cfg.ReadTimeout = EnvDuration("AUTHSVC_HTTP_READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = EnvDuration("AUTHSVC_HTTP_WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.IdleTimeout = EnvDuration("AUTHSVC_HTTP_IDLE_TIMEOUT", cfg.IdleTimeout)
	cfg.MaxHeaderBytes = EnvInt("AUTHSVC_HTTP_MAX_HEADER_BYTES", cfg.MaxHeaderBytes)
	cfg.MaxBodyBytes = int64(EnvInt("AUTHSVC_HTTP_MAX_BODY_BYTES", int(cfg.MaxBodyBytes)))

	cfg.LogLevel = EnvString("AUTHSVC_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = EnvString("AUTHSVC_LOG_FORMAT", cfg.LogFormat)

	cfg.DatabaseURL = EnvString("AUTHSVC_DATABASE_URL", cfg.DatabaseURL)
	cfg.DBSchema = EnvString("AUTHSVC_DB_SCHEMA", cfg.DBSchema)
	cfg.DBMaxConns = EnvInt32("AUTHSVC_DB_MAX_CONNS", cfg.DBMaxConns)
	cfg.DBMinConns = EnvInt32("AUTHSVC_DB_MIN_CONNS", cfg.DBMinConns)
	cfg.ReadinessRequireDB = EnvBool("AUTHSVC_READINESS_REQUIRE_DB", cfg.ReadinessRequireDB)

	cfg.JWTSecret = EnvString("AUTHSVC_JWT_SECRET", cfg.JWTSecret)
	cfg.JWTIssuer = EnvString("AUTHSVC_JWT_ISSUER", cfg.JWTIssuer)
	cfg.JWTTTLSeconds = EnvInt("AUTHSVC_JWT_TTL_SECONDS", cfg.JWTTTLSeconds)

	cfg.RequireStrongSecret = EnvBool("AUTHSVC_REQUIRE_STRONG_SECRET", cfg.RequireStrongSecret)
	cfg.BcryptCost = EnvInt("AUTHSVC_BCRYPT_COST", cfg.BcryptCost)

	cfg.CORSAllowedOrigins = EnvStrings("AUTHSVC_CORS_ALLOWED_ORIGINS", cfg.CORSAllowedOrigins)
	cfg.CORSAllowCredentials = EnvBool("AUTHSVC_CORS_ALLOW_CREDENTIALS", cfg.CORSAllowCredentials)
	cfg.CORSMaxAgeSeconds = EnvInt("AUTHSVC_CORS_MAX_AGE_SECONDS", cfg.CORSMaxAgeSeconds)

	cfg.SeedEmail = EnvString("AUTHSVC_SEED_EMAIL", cfg.SeedEmail)
	cfg.SeedPassword = EnvString("AUTHSVC_SEED_PASSWORD", cfg.SeedPassword)
}
