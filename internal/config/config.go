// pkg/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config - главная структура конфигурации
type Config struct {
	App        AppConfig        `koanf:"app"`
	Log        LogConfig        `koanf:"log"`
	Metrics    MetricsConfig    `koanf:"metrics"`
	Enumerator EnumeratorConfig `koanf:"enumerator"`
	Hydraulics HydraulicsConfig `koanf:"hydraulics"`
	Cost       CostConfig       `koanf:"cost"`
	Sizer      SizerConfig      `koanf:"sizer"`
	Cache      CacheConfig      `koanf:"cache"`
	Database   DatabaseConfig   `koanf:"database"`
	Report     ReportConfig     `koanf:"report"`
}

// AppConfig - общие настройки приложения
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text
	Output     string `koanf:"output"`      // stdout, stderr, file
	FilePath   string `koanf:"file_path"`   // путь к файлу логов
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"` // количество бэкапов
	MaxAge     int    `koanf:"max_age"`     // дней
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig - настройки Prometheus метрик
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// EnumeratorConfig - настройки перечислителя остовных деревьев
type EnumeratorConfig struct {
	TreeCount           int `koanf:"tree_count"`            // k, число искомых деревьев
	MaxAttemptMultiplier int `koanf:"max_attempt_multiplier"` // не читается: предел попыток задаёт константа enumerator.MaxAttemptMultiplier (k * 100)
}

// HydraulicsConfig - настройки гидравлического расчёта
type HydraulicsConfig struct {
	ManningN        float64   `koanf:"manning_n"`
	Diameters       []float64 `koanf:"diameters"`         // каталог доступных диаметров, м
	MinSlope        float64   `koanf:"min_slope"`
	MaxSlope        float64   `koanf:"max_slope"`
	MinVelocity     float64   `koanf:"min_velocity"`      // м/с
	MaxVelocity     float64   `koanf:"max_velocity"`      // м/с
	MaxFillRatio    float64   `koanf:"max_fill_ratio"`    // d/D
	MinCoverDepth   float64   `koanf:"min_cover_depth"`   // м
	MaxCoverDepth   float64   `koanf:"max_cover_depth"`   // м
	AssumedGroundCover float64 `koanf:"assumed_ground_cover"` // h̄, м
}

// CostConfig - настройки стоимостных таблиц
type CostConfig struct {
	// Пусто: таблицы стоимости зашиты в internal/cost по умолчанию;
	// зарезервировано для будущей настройки через файл.
	UseDefaults bool `koanf:"use_defaults"`
}

// SizerConfig - настройки метаэвристического подбора диаметров/уклонов
type SizerConfig struct {
	Algorithm         string  `koanf:"algorithm"` // pso, ga, aga, aco
	PopulationSize    int     `koanf:"population_size"`
	Iterations        int     `koanf:"iterations"`
	Seed              int64   `koanf:"seed"`
	PSOInertiaStart   float64 `koanf:"pso_inertia_start"`
	PSOInertiaEnd     float64 `koanf:"pso_inertia_end"`
	PSOCognitiveStart float64 `koanf:"pso_cognitive_start"`
	PSOCognitiveEnd   float64 `koanf:"pso_cognitive_end"`
	PSOSocialStart    float64 `koanf:"pso_social_start"`
	PSOSocialEnd      float64 `koanf:"pso_social_end"`
	GATournamentSize  int     `koanf:"ga_tournament_size"`
	GAElitismRate     float64 `koanf:"ga_elitism_rate"`
	GACrossoverEta    float64 `koanf:"ga_crossover_eta"`
	GAMutationEta     float64 `koanf:"ga_mutation_eta"`
	AGABitsPerGene    int     `koanf:"aga_bits_per_gene"`
	ACOAlpha          float64 `koanf:"aco_alpha"`
	ACOBeta           float64 `koanf:"aco_beta"`
	ACORho            float64 `koanf:"aco_rho"`
	ACOQ0            float64 `koanf:"aco_q0"`
}

// DatabaseConfig - настройки базы данных
type DatabaseConfig struct {
	Driver          string        `koanf:"driver"` // postgres
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Database        string        `koanf:"database"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	MigrationsPath  string        `koanf:"migrations_path"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// DSN возвращает строку подключения
func (d DatabaseConfig) DSN() string {
	switch strings.ToLower(d.Driver) {
	case "postgres", "postgresql":
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.Username, d.Password, d.Database, d.SSLMode,
		)
	default:
		return ""
	}
}

// CacheConfig - настройки кэширования гидравлических результатов
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Driver     string        `koanf:"driver"` // redis, memory
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	MaxEntries int           `koanf:"max_entries"` // для in-memory
	Namespace  string        `koanf:"namespace"`   // key prefix, isolates runs sharing a backend
}

// Address возвращает адрес кэша
func (c CacheConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ReportConfig конфигурация экспорта отчётов
type ReportConfig struct {
	OutputDir        string `koanf:"output_dir"`
	WriteCSV         bool   `koanf:"write_csv"`
	WriteWorkbook    bool   `koanf:"write_workbook"`
	WorkbookSheet    string `koanf:"workbook_sheet"`
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	if len(c.Hydraulics.Diameters) == 0 {
		errs = append(errs, "hydraulics.diameters must not be empty")
	}
	if c.Hydraulics.MinSlope <= 0 || c.Hydraulics.MaxSlope <= c.Hydraulics.MinSlope {
		errs = append(errs, "hydraulics.min_slope/max_slope must form a positive range")
	}
	if c.Hydraulics.MaxFillRatio <= 0 || c.Hydraulics.MaxFillRatio > 1 {
		errs = append(errs, "hydraulics.max_fill_ratio must be in (0, 1]")
	}

	if c.Enumerator.TreeCount <= 0 {
		errs = append(errs, "enumerator.tree_count must be positive")
	}

	validAlgorithms := map[string]bool{"pso": true, "ga": true, "aga": true, "aco": true}
	if !validAlgorithms[strings.ToLower(c.Sizer.Algorithm)] {
		errs = append(errs, fmt.Sprintf("sizer.algorithm must be one of: pso, ga, aga, aco, got %s", c.Sizer.Algorithm))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// IsDevelopment проверяет режим разработки
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction проверяет продакшн режим
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
