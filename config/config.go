package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Config struct {
	Env            string `env:"ENVIRONMENT" envDefault:"development"`
	ServerPort     int    `env:"SERVER_PORT" envDefault:"8090"`
	BasicAuthCreds string `env:"BASIC_AUTH_CREDS"`
	DatabasePath   string `env:"DATABASE_PATH" envDefault:"matchwatch.sqlite"`

	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`

	FootballData struct {
		BaseURL        string        `env:"FOOTBALL_DATA_BASE_URL" envDefault:"https://api.football-data.org"`
		APIToken       string        `env:"FOOTBALL_DATA_API_TOKEN"`
		RequestsPerMin int           `env:"FOOTBALL_DATA_REQUESTS_PER_MIN" envDefault:"10"`
		Timeout        time.Duration `env:"FOOTBALL_DATA_TIMEOUT" envDefault:"15s"`
	}

	Mailgun struct {
		Domain      string `env:"MAILGUN_DOMAIN"`
		APIKey      string `env:"MAILGUN_API_KEY"`
		SenderFrom  string `env:"MAILGUN_SENDER_FROM"`
		TimeoutSecs int    `env:"MAILGUN_TIMEOUT_SECS" envDefault:"10"`
	}

	// Pipeline timings. The defaults mirror live operation; tests shrink
	// them to milliseconds.
	PollInterval     time.Duration `env:"POLL_INTERVAL" envDefault:"5m"`
	SimulateInterval time.Duration `env:"SIMULATE_INTERVAL" envDefault:"2m"`
	GoalInterval     time.Duration `env:"GOAL_INTERVAL" envDefault:"30s"`
	StartingLead     time.Duration `env:"STARTING_LEAD" envDefault:"10m"`
	FinishedGrace    time.Duration `env:"FINISHED_GRACE" envDefault:"1h"`
	FeedRetention    time.Duration `env:"FEED_RETENTION" envDefault:"24h"`
	FeedSize         int           `env:"FEED_SIZE" envDefault:"50"`

	// SimulatorSeed pins the simulator's random source; zero seeds from
	// the clock.
	SimulatorSeed int64 `env:"SIMULATOR_SEED"`

	log   *zap.Logger
	creds map[string]string
}

func NewConfig(lc fx.Lifecycle, log *zap.Logger) (*Config, error) {
	cfg := &Config{log: log}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	creds, err := cfg.parseCreds()
	if err != nil {
		if cfg.Env == "development" {
			log.Sugar().Infof("%s (auth disabled in development env)", err)
		} else {
			return nil, err
		}
	}
	cfg.creds = creds

	return cfg, nil
}

func (cfg *Config) GetCreds() map[string]string {
	return cfg.creds
}

func (cfg *Config) parseCreds() (map[string]string, error) {
	if cfg.BasicAuthCreds == "" {
		return nil, errors.New("BASIC_AUTH_CREDS envvar must be populated")
	}

	creds := strings.Split(cfg.BasicAuthCreds, ",")
	result := make(map[string]string)
	for _, cred := range creds {
		userPass := strings.Split(cred, ":")
		if len(userPass) != 2 {
			return nil, fmt.Errorf("failed to parse '%s', each credential should be delimited by a colon -- user1:pass1,user2:pass2", cred)
		}

		user, pass := userPass[0], userPass[1]
		result[strings.Trim(user, " ")] = strings.Trim(pass, " ")
	}

	return result, nil
}
