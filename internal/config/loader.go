// pkg/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix    = "SEWERNET_"
	configEnvVar = "CONFIG_PATH"
)

// Loader загружает конфигурацию из разных источников
type Loader struct {
	k           *koanf.Koanf
	configPaths []string
	envPrefix   string
}

// NewLoader создаёт новый загрузчик конфигурации
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		k: koanf.New("."),
		configPaths: []string{
			"config.yaml",
			"config/config.yaml",
			"/etc/sewernet/config.yaml",
		},
		envPrefix: envPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// LoaderOption - опция для конфигурации загрузчика
type LoaderOption func(*Loader)

// WithConfigPaths устанавливает пути поиска конфигурации
func WithConfigPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.configPaths = paths
	}
}

// WithEnvPrefix устанавливает префикс переменных окружения
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// Load загружает конфигурацию с приоритетом:
// 1. Defaults (самый низкий)
// 2. Config file (yaml)
// 3. Environment variables (самый высокий)
func (l *Loader) Load() (*Config, error) {
	if err := l.loadDefaults(); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := l.loadConfigFile(); err != nil {
		// Файл не обязателен, логируем warning
		fmt.Printf("Warning: %v\n", err)
	}

	if err := l.loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}

	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadDefaults загружает значения по умолчанию, настроенные под
// гравитационную канализационную сеть.
func (l *Loader) loadDefaults() error {
	defaults := map[string]any{
		// App
		"app.name":        "sewerdesign",
		"app.version":     "1.0.0",
		"app.environment": "development",
		"app.debug":       false,

		// Log
		"log.level":       "info",
		"log.format":      "json",
		"log.output":      "stdout",
		"log.max_size":    100,
		"log.max_backups": 3,
		"log.max_age":     7,
		"log.compress":    true,

		// Metrics
		"metrics.enabled":   true,
		"metrics.port":      9090,
		"metrics.path":      "/metrics",
		"metrics.namespace": "sewernet",
		"metrics.subsystem": "",

		// Enumerator
		"enumerator.tree_count":            20,
		"enumerator.max_attempt_multiplier": 100,

		// Hydraulics
		"hydraulics.manning_n": 0.013,
		"hydraulics.diameters": []float64{
			0.20, 0.25, 0.30, 0.35, 0.40, 0.45, 0.50,
			0.60, 0.70, 0.80, 0.90, 1.00, 1.50,
		},
		"hydraulics.min_slope":          4e-4,
		"hydraulics.max_slope":          2e-2,
		"hydraulics.min_velocity":       0.6,
		"hydraulics.max_velocity":       3.0,
		"hydraulics.max_fill_ratio":     0.8,
		"hydraulics.min_cover_depth":    0.9,
		"hydraulics.max_cover_depth":    5.0,
		"hydraulics.assumed_ground_cover": 1.5,

		// Cost
		"cost.use_defaults": true,

		// Sizer
		"sizer.algorithm":          "pso",
		"sizer.population_size":    40,
		"sizer.iterations":         150,
		"sizer.seed":               0,
		"sizer.pso_inertia_start":   0.7,
		"sizer.pso_inertia_end":     0.2,
		"sizer.pso_cognitive_start": 2.0,
		"sizer.pso_cognitive_end":   0.5,
		"sizer.pso_social_start":    2.0,
		"sizer.pso_social_end":      0.5,
		"sizer.ga_tournament_size": 3,
		"sizer.ga_elitism_rate":    0.1,
		"sizer.ga_crossover_eta":   20.0,
		"sizer.ga_mutation_eta":    20.0,
		"sizer.aga_bits_per_gene":  8,
		"sizer.aco_alpha":          1.0,
		"sizer.aco_beta":           2.0,
		"sizer.aco_rho":            0.1,
		"sizer.aco_q0":             0.9,

		// Cache
		"cache.enabled":     false,
		"cache.driver":      "memory",
		"cache.host":        "localhost",
		"cache.port":        6379,
		"cache.db":          0,
		"cache.default_ttl": 5 * time.Minute,
		"cache.max_entries": 10000,
		"cache.namespace":   "sewerdesign",

		// Database
		"database.driver":             "postgres",
		"database.host":               "localhost",
		"database.port":               5432,
		"database.database":           "sewernet",
		"database.username":           "postgres",
		"database.password":           "",
		"database.ssl_mode":           "disable",
		"database.max_open_conns":     10,
		"database.max_idle_conns":     2,
		"database.conn_max_lifetime":  5 * time.Minute,
		"database.conn_max_idle_time": 5 * time.Minute,
		"database.auto_migrate":       true,

		// Report
		"report.output_dir":     ".",
		"report.write_csv":      true,
		"report.write_workbook": true,
		"report.workbook_sheet": "Design",
	}

	return l.k.Load(confmap.Provider(defaults, "."), nil)
}

// loadConfigFile загружает конфигурацию из файла
func (l *Loader) loadConfigFile() error {
	if configPath := os.Getenv(configEnvVar); configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return l.k.Load(file.Provider(configPath), yaml.Parser())
		}
	}

	for _, path := range l.configPaths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			continue
		}

		if _, err := os.Stat(absPath); err == nil {
			return l.k.Load(file.Provider(absPath), yaml.Parser())
		}
	}

	return fmt.Errorf("config file not found in paths: %v", l.configPaths)
}

// loadEnv загружает конфигурацию из переменных окружения
func (l *Loader) loadEnv() error {
	return l.k.Load(env.Provider(l.envPrefix, ".", func(s string) string {
		// SEWERNET_HYDRAULICS_MANNING_N -> hydraulics.manning_n
		return strings.Replace(
			strings.ToLower(
				strings.TrimPrefix(s, l.envPrefix),
			),
			"_", ".", 1,
		)
	}), nil)
}

// MustLoad загружает конфигурацию или паникует
func MustLoad(opts ...LoaderOption) *Config {
	cfg, err := NewLoader(opts...).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Load - удобная функция для загрузки с дефолтными настройками
func Load() (*Config, error) {
	return NewLoader().Load()
}
