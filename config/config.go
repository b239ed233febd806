package config

import (
	"os"
	"strconv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Minio    MinioConfig
	Parser   ParserConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	// PublicEndpoint is the externally reachable base URL used when rewriting
	// image references inside rendered markdown.
	PublicEndpoint  string
	UploadsBucket   string
	ArtifactsBucket string
}

type ParserConfig struct {
	Stream        string
	ConsumerGroup string
	// ServerURL is passed to client-style VLM backends.
	ServerURL string
	// EngineURL is the local analysis engine serving the pipeline family and
	// the in-process VLM variants.
	EngineURL string
	// ModelPath overrides the model weights location for in-process VLM
	// variants. Empty means the engine default.
	ModelPath string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8000"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "mineru"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "mineru"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Username: getEnv("REDIS_USERNAME", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Minio: MinioConfig{
			Endpoint:        getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:       getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey:       getEnv("MINIO_SECRET_KEY", "minioadmin"),
			UseSSL:          getEnvAsBool("MINIO_USE_SSL", false),
			PublicEndpoint:  getEnv("MINIO_PUBLIC_ENDPOINT", "http://localhost:9000"),
			UploadsBucket:   getEnv("MINIO_UPLOADS_BUCKET", "uploads"),
			ArtifactsBucket: getEnv("MINIO_ARTIFACTS_BUCKET", "mds"),
		},
		Parser: ParserConfig{
			Stream:        getEnv("PARSER_STREAM", "file_parser_stream"),
			ConsumerGroup: getEnv("PARSER_CONSUMER_GROUP", "parser_workers"),
			ServerURL:     getEnv("SERVER_URL", "http://127.0.0.1:30000"),
			EngineURL:     getEnv("PARSER_ENGINE_URL", "http://127.0.0.1:8001"),
			ModelPath:     getEnv("PARSER_MODEL_PATH", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
