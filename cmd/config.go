package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"maintenance/internal/adapters/out/postgres"
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/services"
	"maintenance/internal/pkg/errs"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort  string
	BodyLimit string
	LogLevel  string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	// DBPath is the sqlite file used when DBDriver is sqlite.
	DBPath string

	JWTSecret string
	JWTIssuer string

	RateLimit float64
	RateBurst int

	BranchCacheTTL time.Duration

	NotifyWorkers    int
	NotifyQueueSize  int
	VAPIDPublicKey   string
	VAPIDPrivateKey  string
	VAPIDSubscriber  string
	PushTTL          int
	ReminderSchedule string
	ReminderAfter    time.Duration
	ReminderBatch    int
	ReminderTimeout  time.Duration

	// AccessOverrides has entries of the form ROLE:resource=true|false.
	AccessOverrides []string
}

// LoadConfig reads an optional .env file and then the environment.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return configFrom(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("HTTP_BODY_LIMIT", "1M")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", postgres.DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_PATH", "maintenance.db")
	v.SetDefault("RATE_LIMIT", 20.0)
	v.SetDefault("RATE_BURST", 40)
	v.SetDefault("BRANCH_CACHE_TTL", 5*time.Minute)
	v.SetDefault("NOTIFY_WORKERS", 4)
	v.SetDefault("NOTIFY_QUEUE_SIZE", 256)
	v.SetDefault("PUSH_TTL", 3600)
	v.SetDefault("REMINDER_SCHEDULE", "0 0 9 * * *")
	v.SetDefault("REMINDER_AFTER", 48*time.Hour)
	v.SetDefault("REMINDER_BATCH", 100)
	v.SetDefault("REMINDER_TIMEOUT", time.Minute)
	return v
}

func configFrom(v *viper.Viper) (Config, error) {
	cfg := Config{
		HTTPPort:         v.GetString("HTTP_PORT"),
		BodyLimit:        v.GetString("HTTP_BODY_LIMIT"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		DBDriver:         v.GetString("DB_DRIVER"),
		DBHost:           v.GetString("DB_HOST"),
		DBPort:           v.GetString("DB_PORT"),
		DBUser:           v.GetString("DB_USER"),
		DBPassword:       v.GetString("DB_PASSWORD"),
		DBName:           v.GetString("DB_NAME"),
		DBSslMode:        v.GetString("DB_SSLMODE"),
		DBPath:           v.GetString("DB_PATH"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTIssuer:        v.GetString("JWT_ISSUER"),
		RateLimit:        v.GetFloat64("RATE_LIMIT"),
		RateBurst:        v.GetInt("RATE_BURST"),
		BranchCacheTTL:   v.GetDuration("BRANCH_CACHE_TTL"),
		NotifyWorkers:    v.GetInt("NOTIFY_WORKERS"),
		NotifyQueueSize:  v.GetInt("NOTIFY_QUEUE_SIZE"),
		VAPIDPublicKey:   v.GetString("VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey:  v.GetString("VAPID_PRIVATE_KEY"),
		VAPIDSubscriber:  v.GetString("VAPID_SUBSCRIBER"),
		PushTTL:          v.GetInt("PUSH_TTL"),
		ReminderSchedule: v.GetString("REMINDER_SCHEDULE"),
		ReminderAfter:    v.GetDuration("REMINDER_AFTER"),
		ReminderBatch:    v.GetInt("REMINDER_BATCH"),
		ReminderTimeout:  v.GetDuration("REMINDER_TIMEOUT"),
		AccessOverrides:  splitList(v.GetString("ACCESS_OVERRIDES")),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var err error
	if c.JWTSecret == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("JWT_SECRET"))
	}
	switch c.DBDriver {
	case postgres.DriverPostgres:
		if c.DBName == "" {
			err = errors.Join(err, errs.NewValueIsRequiredError("DB_NAME"))
		}
	case postgres.DriverSQLite:
	default:
		err = errors.Join(err, errs.NewValueIsInvalidError("DB_DRIVER"))
	}
	if (c.VAPIDPublicKey == "") != (c.VAPIDPrivateKey == "") {
		err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause("VAPID keys",
			errors.New("both the public and the private key must be set")))
	}
	if c.NotifyWorkers <= 0 {
		err = errors.Join(err, errs.NewValueIsOutOfRangeError("NOTIFY_WORKERS", c.NotifyWorkers, 1, "unbounded"))
	}
	if _, grantsErr := c.Overrides(); grantsErr != nil {
		err = errors.Join(err, grantsErr)
	}
	return err
}

// DSN returns the connection string for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == postgres.DriverSQLite {
		return c.DBPath + "?_busy_timeout=5000"
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   c.DBHost + ":" + c.DBPort,
		Path:   c.DBName,
	}
	u.RawQuery = url.Values{"sslmode": {c.DBSslMode}}.Encode()
	return u.String()
}

// PushEnabled reports whether web push keys are configured.
func (c Config) PushEnabled() bool {
	return c.VAPIDPrivateKey != ""
}

// Overrides parses AccessOverrides into a grants table.
func (c Config) Overrides() (services.Grants, error) {
	grants := make(services.Grants)
	for _, entry := range c.AccessOverrides {
		roleAndResource, allowed, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, errs.NewValueIsInvalidErrorWithCause("ACCESS_OVERRIDES", fmt.Errorf("%q has no value", entry))
		}
		rawRole, resource, ok := strings.Cut(roleAndResource, ":")
		if !ok || resource == "" {
			return nil, errs.NewValueIsInvalidErrorWithCause("ACCESS_OVERRIDES", fmt.Errorf("%q has no resource", entry))
		}
		role := kernel.Role(strings.ToUpper(rawRole))
		if err := role.Validate(); err != nil {
			return nil, err
		}

		var allow bool
		switch strings.ToLower(allowed) {
		case "true", "allow":
			allow = true
		case "false", "deny":
		default:
			return nil, errs.NewValueIsInvalidErrorWithCause("ACCESS_OVERRIDES", fmt.Errorf("%q is not a boolean", allowed))
		}

		if grants[role] == nil {
			grants[role] = make(map[services.Resource]bool)
		}
		grants[role][services.Resource(resource)] = allow
	}
	return grants, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
