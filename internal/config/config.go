// README: Config loader; viper defaults overridden by WAYFARER_* env vars and an optional .env file.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingGeminiKey is returned when GEMINI_API_KEY is not set.
var ErrMissingGeminiKey = errors.New("environment variable GEMINI_API_KEY is required")

type AIConfig struct {
	GeminiKey          string
	PerplexityKey      string
	PerplexityBaseURL  string
	ItineraryModel     string
	ImageModel         string
	SearchModel        string
	ItineraryTimeout   time.Duration
	SearchTimeout      time.Duration
	ImageConcurrency   int
	EntityConcurrency  int
	MaxImagesPerEntity int
}

type Config struct {
	HTTP struct {
		Addr         string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		CORSOrigins  []string
	}
	Log struct {
		Level  string
		Format string
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr string
	}
	Static struct {
		Root      string
		URLPrefix string
	}
	AI   AIConfig
	Maps struct {
		APIKey string
	}
	Sentry struct {
		DSN         string
		Environment string
	}
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real env vars win over it.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("WAYFARER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// Provider credentials keep their conventional unprefixed names.
	_ = v.BindEnv("ai.gemini_key", "GEMINI_API_KEY")
	_ = v.BindEnv("ai.perplexity_key", "PERPLEXITY_API_KEY")
	_ = v.BindEnv("maps.api_key", "GOOGLE_MAPS_API_KEY")
	_ = v.BindEnv("sentry.dsn", "SENTRY_DSN")

	var cfg Config
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.HTTP.ReadTimeout = v.GetDuration("http.read_timeout")
	cfg.HTTP.WriteTimeout = v.GetDuration("http.write_timeout")
	cfg.HTTP.CORSOrigins = splitList(v.GetString("http.cors_origins"))
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.Redis.Addr = v.GetString("redis.addr")
	cfg.Static.Root = v.GetString("static.root")
	cfg.Static.URLPrefix = strings.TrimRight(v.GetString("static.url_prefix"), "/")
	cfg.AI = AIConfig{
		GeminiKey:          v.GetString("ai.gemini_key"),
		PerplexityKey:      v.GetString("ai.perplexity_key"),
		PerplexityBaseURL:  v.GetString("ai.perplexity_base_url"),
		ItineraryModel:     v.GetString("ai.itinerary_model"),
		ImageModel:         v.GetString("ai.image_model"),
		SearchModel:        v.GetString("ai.search_model"),
		ItineraryTimeout:   v.GetDuration("ai.itinerary_timeout"),
		SearchTimeout:      v.GetDuration("ai.search_timeout"),
		ImageConcurrency:   v.GetInt("ai.image_concurrency"),
		EntityConcurrency:  v.GetInt("ai.entity_concurrency"),
		MaxImagesPerEntity: v.GetInt("ai.max_images_per_entity"),
	}
	cfg.Maps.APIKey = v.GetString("maps.api_key")
	cfg.Sentry.DSN = v.GetString("sentry.dsn")
	cfg.Sentry.Environment = v.GetString("sentry.environment")

	if err := validate(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8000")
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 5*time.Minute)
	v.SetDefault("http.cors_origins", "*")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("db.dsn", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("static.root", "./static")
	v.SetDefault("static.url_prefix", "/static")
	v.SetDefault("ai.perplexity_base_url", "https://api.perplexity.ai")
	v.SetDefault("ai.itinerary_model", "gemini-2.5-pro")
	v.SetDefault("ai.image_model", "gemini-2.5-flash-image-preview")
	v.SetDefault("ai.search_model", "sonar")
	v.SetDefault("ai.itinerary_timeout", 120*time.Second)
	v.SetDefault("ai.search_timeout", 30*time.Second)
	v.SetDefault("ai.image_concurrency", 4)
	v.SetDefault("ai.entity_concurrency", 4)
	v.SetDefault("ai.max_images_per_entity", 2)
	v.SetDefault("sentry.environment", "development")
}

func validate(cfg *Config) error {
	if cfg.AI.GeminiKey == "" {
		return ErrMissingGeminiKey
	}
	if cfg.AI.ImageConcurrency < 1 {
		cfg.AI.ImageConcurrency = 1
	}
	if cfg.AI.EntityConcurrency < 1 {
		cfg.AI.EntityConcurrency = 1
	}
	if cfg.AI.MaxImagesPerEntity < 1 {
		cfg.AI.MaxImagesPerEntity = 2
	}
	if cfg.AI.ItineraryTimeout <= 0 {
		cfg.AI.ItineraryTimeout = 120 * time.Second
	}
	if cfg.AI.SearchTimeout <= 0 {
		cfg.AI.SearchTimeout = 30 * time.Second
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
