package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/trendbot/internal/domain"
)

// Config es la configuración completa del bot.
type Config struct {
	Trading  TradingConfig             `yaml:"trading"`
	Strategy domain.StrategyParameters `yaml:"strategy"`
	Risk     domain.RiskLimits         `yaml:"risk"`
	Data     DataConfig                `yaml:"data"`
	Storage  StorageConfig             `yaml:"storage"`
	Log      LogConfig                 `yaml:"log"`
}

// TradingConfig controla la sesión de trading.
type TradingConfig struct {
	Symbol              string  `yaml:"symbol"`
	InitialCapital      float64 `yaml:"initial_capital"`
	PollIntervalSeconds int     `yaml:"poll_interval_seconds"` // solo modo live
	Lookback            int     `yaml:"lookback"`              // barras por fetch en live
}

// DataConfig controla de dónde salen las barras históricas.
type DataConfig struct {
	CacheDir string `yaml:"cache_dir"` // directorio de la caché CSV
}

// StorageConfig controla dónde se persiste el journal.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
// Rechaza configuraciones inválidas antes de procesar ninguna barra.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	cfg.Strategy = domain.DefaultParameters()
	cfg.Risk = domain.DefaultRiskLimits()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Validate valida parámetros de estrategia, límites de riesgo y sesión.
func (c *Config) Validate() error {
	if c.Trading.Symbol == "" {
		return fmt.Errorf("trading: symbol is required")
	}
	if c.Trading.InitialCapital <= 0 {
		return fmt.Errorf("trading: initial_capital must be > 0, got %g", c.Trading.InitialCapital)
	}
	if err := c.Strategy.Validate(); err != nil {
		return err
	}
	return c.Risk.Validate()
}

// PollInterval devuelve el intervalo de polling live como time.Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Trading.PollIntervalSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("TRADING_SYMBOL"); v != "" {
		cfg.Trading.Symbol = v
	}
	if v := os.Getenv("INITIAL_CAPITAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Trading.InitialCapital = f
		}
	}
	if v := os.Getenv("STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Trading.Symbol == "" {
		cfg.Trading.Symbol = "NQ"
	}
	if cfg.Trading.InitialCapital <= 0 {
		cfg.Trading.InitialCapital = 10000
	}
	if cfg.Trading.PollIntervalSeconds <= 0 {
		cfg.Trading.PollIntervalSeconds = 30
	}
	if cfg.Trading.Lookback <= 0 {
		cfg.Trading.Lookback = 600
	}
	if cfg.Data.CacheDir == "" {
		cfg.Data.CacheDir = "data"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "trendbot.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
