package cliparse

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	LogJSON      bool
	CORSOrigin   string

	// Natural-language translation
	OpenAIKey        string
	OpenAIBaseURL    string
	OpenAIModel      string
	TranslateTimeout time.Duration
	TranslateRPS     float64
	TranslateBurst   int
}

const (
	DefaultPort             = 3318
	DefaultOpenAIBaseURL    = "https://api.openai.com/v1"
	DefaultOpenAIModel      = "gpt-4o-mini"
	DefaultTranslateTimeout = 15 * time.Second
	DefaultTranslateRPS     = 2
	DefaultTranslateBurst   = 4
)

// ParseFlags reads flags, then an optional .env file, then the environment.
// Flags win over the environment; the environment wins over .env.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile string

	fs := flag.NewFlagSet("fieldbook", flag.ContinueOnError)

	// Network and storage (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.BoolVar(&cfg.LogJSON, "log-json", false, "Log as JSON")
	fs.StringVar(&envFile, "env", "", "Path to a .env file (default: ./.env if present)")

	// Translation (prefer env variables for the key)
	fs.StringVar(&cfg.OpenAIKey, "openai-key", "", "OpenAI API key (prefer env)")
	fs.StringVar(&cfg.OpenAIModel, "openai-model", "", "Completion model")
	fs.DurationVar(&cfg.TranslateTimeout, "translate-timeout", 0, "Timeout for one translation call")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}

	if !cfg.LogJSON {
		if v := os.Getenv("LOG_JSON"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return Config{}, errors.New("invalid LOG_JSON env variable")
			}
			cfg.LogJSON = b
		}
	}
	cfg.CORSOrigin = os.Getenv("CORS_ORIGIN")

	// Translation is optional; without a key the NL endpoint reports an
	// upstream error instead of starting up half-configured.
	if cfg.OpenAIKey == "" {
		cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	}
	cfg.OpenAIBaseURL = envOr("OPENAI_BASE_URL", DefaultOpenAIBaseURL)
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = envOr("OPENAI_MODEL", DefaultOpenAIModel)
	}

	if cfg.TranslateTimeout == 0 {
		cfg.TranslateTimeout = DefaultTranslateTimeout
		if v := os.Getenv("TRANSLATE_TIMEOUT"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				return Config{}, errors.New("invalid TRANSLATE_TIMEOUT env variable")
			}
			cfg.TranslateTimeout = d
		}
	}

	cfg.TranslateRPS = DefaultTranslateRPS
	if v := os.Getenv("TRANSLATE_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps <= 0 {
			return Config{}, errors.New("invalid TRANSLATE_RPS env variable")
		}
		cfg.TranslateRPS = rps
	}
	cfg.TranslateBurst = DefaultTranslateBurst

	return cfg, nil
}

// loadEnvFile loads path into the environment without overriding variables
// that are already set. With no path, ./.env is loaded if it exists.
func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "failed to load env file %s", path)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
