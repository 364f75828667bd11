package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Samrudhp/renova-backend/internal/materials"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Events    EventsConfig    `json:"events"`
	Tokens    TokensConfig    `json:"tokens"`
	Ranking   RankingConfig   `json:"ranking"`
	Materials MaterialsConfig `json:"materials"`
	Logging   LoggingConfig   `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	User           string `json:"user"`
	Password       string `json:"password"`
	DBName         string `json:"db_name"`
	SSLMode        string `json:"ssl_mode"`
	MaxConnections int    `json:"max_connections"`
	MaxIdleConns   int    `json:"max_idle_conns"`
}

// EventsConfig configures the RabbitMQ event publisher. Publishing is
// disabled when URL is empty.
type EventsConfig struct {
	URL   string `json:"url"`
	Queue string `json:"queue"`
}

// TokensConfig configures the redemption token engine.
type TokensConfig struct {
	ExpiryHours   int    `json:"expiry_hours"`
	MintRetries   int    `json:"mint_retries"`
	SweepSchedule string `json:"sweep_schedule"`
}

// RankingConfig holds the recycler composite score weights and the default
// search radius. Weights sum to 1.0.
type RankingConfig struct {
	DistanceWeight       float64 `json:"distance_weight"`
	MaterialWeight       float64 `json:"material_weight"`
	CapacityWeight       float64 `json:"capacity_weight"`
	PriceWeight          float64 `json:"price_weight"`
	RoadAccessWeight     float64 `json:"road_access_weight"`
	RatingWeight         float64 `json:"rating_weight"`
	DefaultMaxDistanceKm float64 `json:"default_max_distance_km"`
}

// MaterialsConfig holds per-material credit rates and impact factors.
type MaterialsConfig struct {
	Factors map[string]materials.ImpactFactor `json:"factors"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := defaultConfig()

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	overrideWithEnv(config)

	if err := config.Ranking.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			User:           os.Getenv("USER"),
			DBName:         "renova",
			SSLMode:        "disable",
			MaxConnections: 25,
			MaxIdleConns:   5,
		},
		Events: EventsConfig{
			Queue: "recycling_events",
		},
		Tokens: TokensConfig{
			ExpiryHours:   24,
			MintRetries:   8,
			SweepSchedule: "@every 15m",
		},
		Ranking: RankingConfig{
			DistanceWeight:       0.30,
			MaterialWeight:       0.25,
			CapacityWeight:       0.15,
			PriceWeight:          0.10,
			RoadAccessWeight:     0.10,
			RatingWeight:         0.10,
			DefaultMaxDistanceKm: 5,
		},
		Materials: MaterialsConfig{
			Factors: defaultFactors(),
		},
		Logging: LoggingConfig{
			Level: "debug",
		},
	}
}

// defaultFactors carries the production rate tables: credits per kg, kg CO2
// per kg and liters of water per kg for each material. Landfill savings are
// always 1:1 with weight and carry no factor.
func defaultFactors() map[string]materials.ImpactFactor {
	return map[string]materials.ImpactFactor{
		"PET":       {CO2PerKg: 2.1, WaterPerKg: 15, BaseCreditRate: 12},
		"HDPE":      {CO2PerKg: 1.8, WaterPerKg: 12, BaseCreditRate: 10},
		"Paper":     {CO2PerKg: 1.5, WaterPerKg: 50, BaseCreditRate: 5},
		"Cardboard": {CO2PerKg: 1.2, WaterPerKg: 40, BaseCreditRate: 6},
		"Glass":     {CO2PerKg: 0.8, WaterPerKg: 5, BaseCreditRate: 4},
		"Aluminum":  {CO2PerKg: 8.0, WaterPerKg: 100, BaseCreditRate: 18},
		"Steel":     {CO2PerKg: 2.5, WaterPerKg: 25, BaseCreditRate: 8},
		"Metal":     {CO2PerKg: 3.2, WaterPerKg: 20, BaseCreditRate: 15},
		"E-Waste":   {CO2PerKg: 5.0, WaterPerKg: 30, BaseCreditRate: 20},
		"Battery":   {CO2PerKg: 6.0, WaterPerKg: 35, BaseCreditRate: 22},
		"Plastic":   {CO2PerKg: 2.0, WaterPerKg: 18, BaseCreditRate: 7},
		"Mixed":     {CO2PerKg: 1.0, WaterPerKg: 8, BaseCreditRate: 3},
		"Organic":   {CO2PerKg: 0.3, WaterPerKg: 2, BaseCreditRate: 2},
		"Textile":   {CO2PerKg: 3.0, WaterPerKg: 60, BaseCreditRate: 6},
	}
}

func (r *RankingConfig) validate() error {
	sum := r.DistanceWeight + r.MaterialWeight + r.CapacityWeight +
		r.PriceWeight + r.RoadAccessWeight + r.RatingWeight
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("ranking weights must sum to 1.0, got %.3f", sum)
	}
	return nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbPort := os.Getenv("DATABASE_PORT"); dbPort != "" {
		if p, err := strconv.Atoi(dbPort); err == nil {
			config.Database.Port = p
		}
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if amqpURL := os.Getenv("AMQP_URL"); amqpURL != "" {
		config.Events.URL = amqpURL
	}
	if expiry := os.Getenv("TOKEN_EXPIRY_HOURS"); expiry != "" {
		if h, err := strconv.Atoi(expiry); err == nil {
			config.Tokens.ExpiryHours = h
		}
	}
}

// FactorTable converts the configured material factors into the lookup table
// injected into the engines.
func (m *MaterialsConfig) FactorTable() (materials.FactorTable, error) {
	table := make(materials.FactorTable, len(m.Factors))
	for label, factor := range m.Factors {
		mt, err := materials.Parse(label)
		if err != nil {
			return nil, fmt.Errorf("config material table: %w", err)
		}
		table[mt] = factor
	}
	return table, nil
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Expiry returns the token validity window as a duration.
func (t *TokensConfig) Expiry() time.Duration {
	return time.Duration(t.ExpiryHours) * time.Hour
}
