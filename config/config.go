package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BearBump/FoodTrack/internal/models"
	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	FoodTrack FoodTrackConfig `yaml:"foodtrack"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) ConnString() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.Username, d.Password, d.Host, d.Port, d.DBName, sslMode)
}

type KafkaConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	OrderTrackingTopicName string `yaml:"order_tracking_topic_name"`
}

// Enabled reports whether a broker is configured at all.
func (k KafkaConfig) Enabled() bool {
	return k.Host != ""
}

func (k KafkaConfig) Brokers() []string {
	return []string{fmt.Sprintf("%s:%d", k.Host, k.Port)}
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type PointConfig struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

type FoodTrackConfig struct {
	HTTPAddr           string `yaml:"http_addr"`
	WorkerHTTPAddr     string `yaml:"worker_http_addr"`
	KafkaConsumerGroup string `yaml:"kafka_consumer_group"`

	OrderTTLSeconds           int `yaml:"order_ttl_seconds"`
	TimelineTTLSeconds        int `yaml:"timeline_ttl_seconds"`
	RecommendationsTTLSeconds int `yaml:"recommendations_ttl_seconds"`
	UserOrdersTTLSeconds      int `yaml:"user_orders_ttl_seconds"`
	RecommendationsLimit      int `yaml:"recommendations_limit"`

	SchedulerIntervalSeconds int           `yaml:"scheduler_interval_seconds"`
	EmbeddedScheduler        bool          `yaml:"embedded_scheduler"`
	AvgSpeedKmh              float64       `yaml:"avg_speed_kmh"`
	ArrivalOneIn             int           `yaml:"arrival_one_in"`
	DefaultDestination       *PointConfig  `yaml:"default_destination"`
	Route                    []PointConfig `yaml:"route"`

	APIRateLimitPerMinute int  `yaml:"api_rate_limit_per_minute"`
	TrustProxyHeaders     bool `yaml:"trust_proxy_headers"`
	RedisConnectAttempts  int  `yaml:"redis_connect_attempts"`
	DBConnectAttempts     int  `yaml:"db_connect_attempts"`

	IdentityBaseURL string `yaml:"identity_base_url"`
	IdentityAPIKey  string `yaml:"identity_api_key"`

	SwaggerPath string `yaml:"swagger_path"`
}

// Destination is nil when the file leaves the default destination unset.
func (f FoodTrackConfig) Destination() *models.Point {
	if f.DefaultDestination == nil {
		return nil
	}
	return &models.Point{Lat: f.DefaultDestination.Lat, Lng: f.DefaultDestination.Lng}
}

func (f FoodTrackConfig) RoutePoints() []models.Point {
	out := make([]models.Point, 0, len(f.Route))
	for _, p := range f.Route {
		out = append(out, models.Point{Lat: p.Lat, Lng: p.Lng})
	}
	return out
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	config.applyEnv()
	return &config, nil
}

// Load reads an optional .env into the process environment, then the YAML
// file named by the configPath variable.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		slog.Warn("config: cannot read .env", "error", err.Error())
	}
	path := os.Getenv("configPath")
	if path == "" {
		return nil, fmt.Errorf("configPath env var is required")
	}
	return LoadConfig(path)
}

// applyEnv lets secrets live outside the YAML file.
func (c *Config) applyEnv() {
	if v := os.Getenv("FOODTRACK_DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("FOODTRACK_IDENTITY_API_KEY"); v != "" {
		c.FoodTrack.IdentityAPIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("swaggerPath")); v != "" && c.FoodTrack.SwaggerPath == "" {
		c.FoodTrack.SwaggerPath = v
	}
}
