package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains application configuration parameters.
type Config struct {
	LogLevel  int       `env:"LOG_LEVEL" envDefault:"0"`
	StorePath string    `env:"STORE_PATH" envDefault:"empowerher.db"`
	Redis     Redis     `envPrefix:"REDIS_"`
	OTP       OTP       `envPrefix:"OTP_"`
	SMS       SMS       `envPrefix:"SMS_"`
	JWT       JWT       `envPrefix:"JWT_"`
	Storage   Storage   `envPrefix:"MINIO_"`
	MQTT      MQTT      `envPrefix:"MQTT_"`
	Database  Database  `envPrefix:"DATABASE_"`
	Emergency Emergency `envPrefix:"EMERGENCY_"`
}

// Redis contains OTP store connection parameters. An empty address keeps
// challenges in memory.
type Redis struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// OTP contains one-time code policy.
type OTP struct {
	TTL         time.Duration `env:"TTL" envDefault:"5m"`
	MaxAttempts int           `env:"MAX_ATTEMPTS" envDefault:"5"`
	Length      int           `env:"LENGTH" envDefault:"6"`
}

// SMS contains gateway parameters. An empty URL logs codes instead.
type SMS struct {
	GatewayURL string        `env:"GATEWAY_URL"`
	APIKey     string        `env:"API_KEY"`
	Sender     string        `env:"SENDER" envDefault:"EMPOWERHER"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// JWT contains phone verification token parameters.
type JWT struct {
	Secret string `env:"SECRET" envDefault:"devsecret"`
}

// Storage contains object storage parameters. An empty endpoint disables
// evidence upload.
type Storage struct {
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY" envDefault:"empowerher-access-key"`
	SecretKey string `env:"SECRET_KEY" envDefault:"empowerher-secret-key"`
	Bucket    string `env:"BUCKET_NAME" envDefault:"empowerher-evidence"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// MQTT contains emergency dispatch parameters. An empty broker disables
// dispatch.
type MQTT struct {
	Broker      string `env:"BROKER"`
	ClientID    string `env:"CLIENT_ID" envDefault:"empowerher-app"`
	Username    string `env:"USERNAME"`
	Password    string `env:"PASSWORD"`
	TopicPrefix string `env:"TOPIC_PREFIX" envDefault:"empowerher"`
}

// Database contains crime report database parameters. An empty DSN keeps
// reports in memory.
type Database struct {
	DSN string `env:"DSN"`
}

// Emergency contains active emergency tuning.
type Emergency struct {
	LocationInterval time.Duration `env:"LOCATION_INTERVAL" envDefault:"5s"`
	LocationDistance float64       `env:"LOCATION_DISTANCE" envDefault:"10"`
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
