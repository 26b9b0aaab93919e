package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

type Config struct {
	LogLevel     string      `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort     string      `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort   string      `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	JWTSecretKey string      `yaml:"jwt-secret-key" env:"JWT_SECRET_KEY"`
	Storage      Storage     `yaml:"storage"`
	Redis        Redis       `yaml:"redis"`
	Postgres     Postgres    `yaml:"postgres"`
	Matchmaking  Matchmaking `yaml:"matchmaking"`
	Recorder     Recorder    `yaml:"recorder"`
	Websocket    Websocket   `yaml:"websocket"`
}

type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"redis"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Postgres struct {
	DSN string `yaml:"dsn" env:"POSTGRES_DSN"`
}

type Matchmaking struct {
	RetryInterval time.Duration `yaml:"retry-interval" env-default:"5s"`
}

type Recorder struct {
	Workers   int           `yaml:"workers" env-default:"4"`
	QueueSize int           `yaml:"queue-size" env-default:"256"`
	Timeout   time.Duration `yaml:"timeout" env-default:"5s"`
}

type Websocket struct {
	SendBuffer   int           `yaml:"send-buffer" env-default:"64"`
	PingInterval time.Duration `yaml:"ping-interval" env-default:"30s"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
