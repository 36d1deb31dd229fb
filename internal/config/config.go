package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel     string `yaml:"log-level" env-default:"info"`
	HTTPPort     string `yaml:"http-port" env-default:"9090"`
	SocketPort   string `yaml:"socket-port" env-default:"8080"`
	Redis        Redis  `yaml:"redis"`
	Game         Game   `yaml:"game"`
	JWTSecretKey string `yaml:"jwt-secret-key"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

type Game struct {
	// DisconnectGraceSeconds is how long a disconnected player keeps
	// their seat before the match is forfeited. Zero disables the
	// auto-forfeit.
	DisconnectGraceSeconds int `yaml:"disconnect-grace-seconds" env-default:"60"`
	// MoveLimit is the combined move count after which a match ends in
	// a draw.
	MoveLimit int `yaml:"move-limit" env-default:"200"`
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
