// Package profile holds the process configuration. Values come from
// flags, RAWRMENU_* environment variables and an optional config file,
// merged by viper.
package profile

import (
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable. The key
// cache.disabled is read from RAWRMENU_CACHE_DISABLED.
const EnvPrefix = "RAWRMENU"

// Profile is the configuration to start the server.
type Profile struct {
	// Addr is the gRPC listen address.
	Addr string `mapstructure:"addr"`
	// MetricsAddr serves /metrics over HTTP. Empty disables it.
	MetricsAddr string `mapstructure:"metrics-addr"`
	// Driver is the database driver, sqlite or postgres.
	Driver string `mapstructure:"driver"`
	// DSN points to the database.
	DSN string `mapstructure:"dsn"`

	Redis     Redis     `mapstructure:"redis"`
	Cache     Cache     `mapstructure:"cache"`
	RateLimit RateLimit `mapstructure:"ratelimit"`
	Trace     Trace     `mapstructure:"trace"`
	Log       Log       `mapstructure:"log"`
}

type Redis struct {
	// Addr of the Redis server. Empty keeps the cache in process.
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type Cache struct {
	// Disabled is read once at startup.
	Disabled bool `mapstructure:"disabled"`
	// L1MaxItems sizes the in-process near cache in front of Redis. Zero
	// disables it.
	L1MaxItems int64 `mapstructure:"l1-max-items"`
	// L1TTL bounds how long the near cache may lag writes handled by
	// other servers sharing Redis. Required when L1MaxItems is set.
	L1TTL time.Duration `mapstructure:"l1-ttl"`
}

type RateLimit struct {
	// RPS of zero disables the global limiter.
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
	// ReadRPS and WriteRPS give the read and the write methods their own
	// buckets. Zero leaves the group on the global limiter.
	ReadRPS  int `mapstructure:"read-rps"`
	WriteRPS int `mapstructure:"write-rps"`
	// Timeout bounds every handler. Zero leaves only the caller's deadline.
	Timeout time.Duration `mapstructure:"timeout"`
}

type Trace struct {
	// Stdout exports spans to standard output.
	Stdout bool `mapstructure:"stdout"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

// NewViper returns a viper instance with every key defaulted and bound to
// its environment variable.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("addr", ":50051")
	v.SetDefault("metrics-addr", ":9090")
	v.SetDefault("driver", "sqlite")
	v.SetDefault("dsn", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "rawrmenu:")
	v.SetDefault("cache.disabled", false)
	v.SetDefault("cache.l1-max-items", 0)
	v.SetDefault("cache.l1-ttl", 5*time.Second)
	v.SetDefault("ratelimit.rps", 0)
	v.SetDefault("ratelimit.burst", 0)
	v.SetDefault("ratelimit.read-rps", 0)
	v.SetDefault("ratelimit.write-rps", 0)
	v.SetDefault("ratelimit.timeout", time.Duration(0))
	v.SetDefault("trace.stdout", false)
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// FromViper decodes and validates a Profile.
func FromViper(v *viper.Viper) (*Profile, error) {
	p := &Profile{}
	if err := v.Unmarshal(p); err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the profile and fills dependent defaults.
func (p *Profile) Validate() error {
	switch p.Driver {
	case "sqlite":
		if p.DSN == "" {
			p.DSN = "rawrmenu.db"
		}
	case "postgres":
		if p.DSN == "" {
			return errors.New("dsn is required for the postgres driver")
		}
	default:
		return errors.Errorf("unknown db driver %q: only 'postgres' and 'sqlite' are supported", p.Driver)
	}
	if p.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if p.Cache.L1MaxItems < 0 {
		return errors.New("cache.l1-max-items must not be negative")
	}
	if p.Cache.L1MaxItems > 0 && p.Cache.L1TTL <= 0 {
		return errors.New("cache.l1-ttl must be positive when cache.l1-max-items is set")
	}
	if p.RateLimit.RPS < 0 || p.RateLimit.Burst < 0 || p.RateLimit.ReadRPS < 0 || p.RateLimit.WriteRPS < 0 {
		return errors.New("ratelimit rates and burst must not be negative")
	}
	if p.RateLimit.RPS > 0 && p.RateLimit.Burst == 0 {
		p.RateLimit.Burst = max(int(p.RateLimit.RPS), 1)
	}
	if _, err := p.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level.
func (p *Profile) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(p.Log.Level)); err != nil {
		return 0, errors.Wrapf(err, "invalid log level %q", p.Log.Level)
	}
	return l, nil
}

// UsesRedis reports whether a Redis address is configured.
func (p *Profile) UsesRedis() bool {
	return p.Redis.Addr != ""
}
