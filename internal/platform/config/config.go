package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ServerPort         = "server.port"
	ServerReadTimeout  = "server.read_timeout"
	ServerWriteTimeout = "server.write_timeout"

	LogLevel = "log.level"

	DBDriver       = "database.driver"
	DBHost         = "database.host"
	DBPort         = "database.port"
	DBUser         = "database.user"
	DBPassword     = "database.password"
	DBName         = "database.name"
	DBMaxOpenConns = "database.max_open_conns"

	RedisEnabled  = "redis.enabled"
	RedisAddress  = "redis.address"
	RedisPassword = "redis.password"
	RedisDB       = "redis.db"

	OperatorScopeTTL = "cache.operator_scope_ttl"

	TicketTokenKey    = "ticket.token_key"
	TicketMaxTokenAge = "ticket.max_token_age"

	// BootstrapAdmins seeds global admins into the in-memory store.
	BootstrapAdmins = "operators.bootstrap_admins"

	ScanIdleTimeout  = "scan.idle_timeout"
	ScanReapInterval = "scan.reap_interval"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	LogLevel string

	Database Database

	RedisEnabled     bool
	RedisAddress     string
	RedisPassword    string
	RedisDB          int
	OperatorScopeTTL time.Duration

	TokenKey    []byte
	MaxTokenAge time.Duration

	BootstrapAdmins []string

	ScanIdleTimeout  time.Duration
	ScanReapInterval time.Duration
}

type Database struct {
	Driver       string
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	MaxOpenConns int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ServerPort, "8080")
	v.SetDefault(ServerReadTimeout, 5*time.Second)
	v.SetDefault(ServerWriteTimeout, 10*time.Second)

	v.SetDefault(LogLevel, "info")

	v.SetDefault(DBDriver, DriverPostgres)
	v.SetDefault(DBHost, "localhost")
	v.SetDefault(DBPort, "5432")
	v.SetDefault(DBUser, "postgres")
	v.SetDefault(DBPassword, "")
	v.SetDefault(DBName, "campus_ticket")
	v.SetDefault(DBMaxOpenConns, 25)

	v.SetDefault(RedisEnabled, true)
	v.SetDefault(RedisAddress, "localhost:6379")
	v.SetDefault(RedisPassword, "")
	v.SetDefault(RedisDB, 0)
	v.SetDefault(OperatorScopeTTL, time.Minute)

	v.SetDefault(TicketMaxTokenAge, time.Duration(0))

	v.SetDefault(ScanIdleTimeout, 15*time.Minute)
	v.SetDefault(ScanReapInterval, time.Minute)
}

// New returns a viper instance reading environment variables such as
// DATABASE_HOST for database.host, plus the optional config file.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	return v, nil
}

func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:         v.GetString(ServerPort),
		ReadTimeout:  v.GetDuration(ServerReadTimeout),
		WriteTimeout: v.GetDuration(ServerWriteTimeout),
		LogLevel:     v.GetString(LogLevel),
		Database: Database{
			Driver:       v.GetString(DBDriver),
			Host:         v.GetString(DBHost),
			Port:         v.GetString(DBPort),
			User:         v.GetString(DBUser),
			Password:     v.GetString(DBPassword),
			Name:         v.GetString(DBName),
			MaxOpenConns: v.GetInt(DBMaxOpenConns),
		},
		RedisEnabled:     v.GetBool(RedisEnabled),
		RedisAddress:     v.GetString(RedisAddress),
		RedisPassword:    v.GetString(RedisPassword),
		RedisDB:          v.GetInt(RedisDB),
		OperatorScopeTTL: v.GetDuration(OperatorScopeTTL),
		MaxTokenAge:      v.GetDuration(TicketMaxTokenAge),
		BootstrapAdmins:  v.GetStringSlice(BootstrapAdmins),
		ScanIdleTimeout:  v.GetDuration(ScanIdleTimeout),
		ScanReapInterval: v.GetDuration(ScanReapInterval),
	}

	switch cfg.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return nil, fmt.Errorf("unsupported %s %q", DBDriver, cfg.Database.Driver)
	}

	rawKey := v.GetString(TicketTokenKey)
	if rawKey == "" {
		return nil, errors.New("ticket.token_key is required")
	}

	key, err := base64.StdEncoding.DecodeString(rawKey)
	if err != nil {
		return nil, fmt.Errorf("ticket.token_key must be base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("ticket.token_key must decode to 32 bytes, got %d", len(key))
	}
	cfg.TokenKey = key

	if cfg.ScanReapInterval <= 0 {
		cfg.ScanReapInterval = time.Minute
	}

	return cfg, nil
}
