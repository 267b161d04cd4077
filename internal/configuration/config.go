package configuration

import (
	"github.com/BurntSushi/toml"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/pkg/errors"

	"bookswap/internal/logger"
)

type Config struct {
	ServerAddress string
	StoreBackend  string
	DatabaseURI   string
	RedisAddress  string
	FCMKey        string
	LogLevel      logger.Level
	LogToFile     bool
	AuthSecretKey jwk.Key
}

type tomlConfig struct {
	ServerAddress string `toml:"server_address"`
	StoreBackend  string `toml:"store_backend"`
	DatabaseURI   string `toml:"database_uri"`
	RedisAddress  string `toml:"redis_address"`
	FCMKey        string `toml:"fcm_key"`
	LogLevel      string `toml:"log_level"`
	LogToFile     bool   `toml:"log_to_file"`
	AuthSecretKey string `toml:"auth_secret_key"`
}

func GetConfig(path string) (*Config, error) {
	var tc tomlConfig
	_, err := toml.DecodeFile(path, &tc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode toml file with path: %s", path)
	}

	if tc.ServerAddress == "" {
		tc.ServerAddress = "localhost:8888"
	}

	switch tc.StoreBackend {
	case "":
		tc.StoreBackend = "mongo"
	case "mongo", "memory":
	default:
		return nil, errors.Errorf("unknown store_backend: %s", tc.StoreBackend)
	}

	if tc.StoreBackend == "mongo" && tc.DatabaseURI == "" {
		tc.DatabaseURI = "mongodb://localhost:27017"
	}

	if tc.FCMKey == "" {
		return nil, errors.New("fcm_key is not set")
	}

	if tc.LogLevel == "" {
		tc.LogLevel = "INFO"
	}
	logLevel, err := logger.ParseLevel(tc.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse log_level: %s", tc.LogLevel)
	}

	if tc.AuthSecretKey == "" {
		return nil, errors.New("auth_secret_key is not set")
	}
	authSecretKey, err := jwk.FromRaw([]byte(tc.AuthSecretKey))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create key from auth_secret_key")
	}

	return &Config{
		ServerAddress: tc.ServerAddress,
		StoreBackend:  tc.StoreBackend,
		DatabaseURI:   tc.DatabaseURI,
		RedisAddress:  tc.RedisAddress,
		FCMKey:        tc.FCMKey,
		LogLevel:      logLevel,
		LogToFile:     tc.LogToFile,
		AuthSecretKey: authSecretKey,
	}, nil
}
