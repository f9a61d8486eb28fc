package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string
}

// KafkaConfig holds broker addresses and the consumer group prefix.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// Load initializes a viper instance bound to environment variables with the
// given prefix (e.g. "BOOKING" reads BOOKING_SERVICE_PORT). An optional
// .env file in the working directory is merged in when present.
func Load(prefix string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		// A missing .env is fine; anything else is a real config problem.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !strings.Contains(err.Error(), "no such file") {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return v, nil
}

// GetServicePort returns the listen address for the named port key,
// normalized to the ":8080" form.
func GetServicePort(v *viper.Viper, key string) string {
	v.SetDefault(key, "8080")
	port := v.GetString(key)
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

// GetAppEnv returns the application environment, defaulting to development.
func GetAppEnv(v *viper.Viper) string {
	v.SetDefault("APP_ENV", "development")
	return v.GetString("APP_ENV")
}

// LoadDatabaseConfig reads PostgreSQL settings, using dbNameKey for the
// database name variable.
func LoadDatabaseConfig(v *viper.Viper, dbNameKey string) DatabaseConfig {
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_SSL_MODE", "disable")

	return DatabaseConfig{
		Host:     v.GetString("DB_HOST"),
		Port:     v.GetString("DB_PORT"),
		User:     v.GetString("DB_USER"),
		Password: v.GetString("DB_PASSWORD"),
		DBName:   v.GetString(dbNameKey),
		SSLMode:  v.GetString("DB_SSL_MODE"),
	}
}

// LoadJWTConfig reads token signing settings.
func LoadJWTConfig(v *viper.Viper) JWTConfig {
	return JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
	}
}

// LoadKafkaConfig reads broker addresses and the consumer group prefix.
func LoadKafkaConfig(v *viper.Viper) KafkaConfig {
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "curalab.")

	return KafkaConfig{
		Brokers:     strings.Split(v.GetString("KAFKA_BROKERS"), ","),
		GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
	}
}
