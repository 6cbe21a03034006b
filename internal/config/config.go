package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration wraps time.Duration so TOML values can be written as "2h" or
// "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Config struct {
	ListenAddr string   `toml:"listen_addr"`
	Database   Database `toml:"database"`
	Redis      Redis    `toml:"redis"`
	Auth       Auth     `toml:"auth"`
	Booking    Booking  `toml:"booking"`
}

type Database struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
	SSLMode  string `toml:"sslmode"`
}

type Redis struct {
	Addr         string `toml:"addr"`
	EventChannel string `toml:"event_channel"`
}

type Auth struct {
	JWTSecret string `toml:"jwt_secret"`
}

type Booking struct {
	CancelLeadTime Duration `toml:"cancel_lead_time"`
	SweepInterval  Duration `toml:"sweep_interval"`
	LockTimeout    Duration `toml:"lock_timeout"`
}

func Default() Config {
	return Config{
		ListenAddr: ":8080",
		Database: Database{
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			Name:    "tripshare",
			SSLMode: "disable",
		},
		Redis: Redis{
			Addr:         "localhost:6379",
			EventChannel: "tripshare.events",
		},
		Booking: Booking{
			CancelLeadTime: Duration(2 * time.Hour),
			SweepInterval:  Duration(time.Minute),
			LockTimeout:    Duration(3 * time.Second),
		},
	}
}

// Load reads the TOML file at path when it exists, then applies environment
// overrides. A missing file is not an error; the defaults stand.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.ListenAddr, "LISTEN_ADDR")
	set(&cfg.Database.Host, "DB_HOST")
	set(&cfg.Database.Port, "DB_PORT")
	set(&cfg.Database.User, "DB_USER")
	set(&cfg.Database.Password, "DB_PASSWORD")
	set(&cfg.Database.Name, "DB_NAME")
	set(&cfg.Database.SSLMode, "DB_SSLMODE")
	set(&cfg.Redis.Addr, "REDIS_ADDR")
	set(&cfg.Auth.JWTSecret, "JWT_SECRET")
}
