package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port             int               `json:"port"`
	JWTSecret        string            `json:"jwt_secret"`
	AccessTTLMinutes int               `json:"access_ttl_minutes"`
	RefreshTTLHours  int               `json:"refresh_ttl_hours"`
	LogConfig        logger.LogConfig  `json:"log_config"`
	DB               DatabaseConfig    `json:"db"`
	VectorStore      VectorStoreConfig `json:"vector_store"`
	AI               AIConfig          `json:"ai"`
	Source           SourceConfig      `json:"source"`
	Embed            EmbedConfig       `json:"embed"`
	Admin            AdminConfig       `json:"admin"`
	CORSOrigins      []string          `json:"cors_origins"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type VectorStoreConfig struct {
	Type       string                 `json:"type"`
	Collection string                 `json:"collection"`
	Data       map[string]interface{} `json:"data"`
}

type AIConfig struct {
	Provider        string                 `json:"provider"`
	Model           string                 `json:"model"`
	Data            map[string]interface{} `json:"data"`
	CacheSize       int                    `json:"cache_size"`
	CacheTTLMinutes int                    `json:"cache_ttl_minutes"`
}

type SourceConfig struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

type EmbedConfig struct {
	BatchSize int    `json:"batch_size"`
	Cron      string `json:"cron"`
}

// AdminConfig seeds a bootstrap admin account at startup when both fields
// are set and the account does not exist yet.
type AdminConfig struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.AccessTTLMinutes == 0 {
		cfg.AccessTTLMinutes = 15
	}
	if cfg.RefreshTTLHours == 0 {
		cfg.RefreshTTLHours = 7 * 24
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.DB.DSN == "" && cfg.DB.Host == "" {
		return nil, fmt.Errorf("db.host or db.dsn is required")
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "pgvector"
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "chunks"
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.Model == "" {
		return nil, fmt.Errorf("ai.model is required")
	}
	if cfg.Source.Type == "" {
		cfg.Source.Type = "http"
	}
	if cfg.Embed.BatchSize <= 0 {
		cfg.Embed.BatchSize = 50
	}
	return &cfg, nil
}
