package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Catalog variants.
const (
	CatalogClassic  = "classic"
	CatalogExtended = "extended"
)

// Database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Server содержит настройки HTTP-сервера отчёта.
type Server struct {
	Address string `mapstructure:"address"`
	Debug   bool   `mapstructure:"debug"`
}

// DB содержит параметры подключения к БД с результатами replay.
type DB struct {
	Driver   string `mapstructure:"driver"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
}

// Report описывает один прогон генерации отчёта.
type Report struct {
	// Prefix фильтрует file_name и задаёт имя выходного файла.
	Prefix string `mapstructure:"prefix"`
	// Catalog выбирает набор запросов: classic или extended.
	Catalog string `mapstructure:"catalog"`
	// TableName принимается из командной строки, но в запросы не подставляется.
	TableName string `mapstructure:"tablename"`
	OutputDir string `mapstructure:"output_dir"`
	XLSX      bool   `mapstructure:"xlsx"`
}

// Storage описывает публикацию готовых файлов.
type Storage struct {
	S3 S3 `mapstructure:"s3"`
}

// S3 содержит настройки для S3-совместимого хранилища.
type S3 struct {
	Enabled   bool   `mapstructure:"enabled"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Logging содержит настройки логирования.
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config объединяет все разделы конфигурации.
type Config struct {
	Server  Server  `mapstructure:"server"`
	DB      DB      `mapstructure:"database"`
	Report  Report  `mapstructure:"report"`
	Storage Storage `mapstructure:"storage"`
	Logging Logging `mapstructure:"logging"`
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"user":        "database.user",
	"password":    "database.password",
	"host":        "database.host",
	"port":        "database.port",
	"database":    "database.name",
	"driver":      "database.driver",
	"tablename":   "report.tablename",
	"catalog":     "report.catalog",
	"output-dir":  "report.output_dir",
	"xlsx":        "report.xlsx",
	"listen":      "server.address",
	"log-level":   "logging.level",
	"log-format":  "logging.format",
	"s3-bucket":   "storage.s3.bucket",
	"s3-region":   "storage.s3.region",
	"s3-endpoint": "storage.s3.endpoint",
}

// RegisterFlags объявляет флаги командной строки, которые понимает Load.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a YAML config file")
	fs.String("user", "", "database user")
	fs.String("password", "", "database password")
	fs.String("host", "", "database host")
	fs.Int("port", 3306, "database port")
	fs.String("database", "", "database name")
	fs.String("driver", DriverMySQL, "database driver: mysql, postgres or sqlite")
	fs.String("outfile_prefix", "", "file_name prefix to report on; also the output file name")
	fs.String("replay_name", "", "replay name to report on; also the output file name")
	fs.String("tablename", "", "query table name (accepted for compatibility, not used)")
	fs.String("catalog", "", "query catalog: classic or extended")
	fs.String("output-dir", ".", "directory for the generated files")
	fs.Bool("xlsx", false, "also write an .xlsx workbook next to the HTML report")
	fs.String("listen", ":8081", "address for the report server")
	fs.String("log-level", "info", "log level")
	fs.String("log-format", "text", "log format: text or json")
	fs.String("s3-bucket", "", "publish generated files to this S3 bucket")
	fs.String("s3-region", "", "S3 region")
	fs.String("s3-endpoint", "", "custom S3 endpoint")
}

// Load читает конфигурацию из значений по умолчанию, файла, окружения и флагов.
// fs может быть nil.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/replay-report")

	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	if err := bindEnvironmentVariables(v); err != nil {
		return Config{}, err
	}

	if fs != nil {
		if path, _ := fs.GetString("config"); path != "" {
			v.SetConfigFile(path)
		}
		if err := bindFlags(v, fs); err != nil {
			return Config{}, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if fs != nil {
		applyRunParameter(&cfg, fs)
	}
	if cfg.Report.Catalog == "" {
		cfg.Report.Catalog = CatalogClassic
	}
	if cfg.Storage.S3.Bucket != "" {
		cfg.Storage.S3.Enabled = true
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// setDefaults устанавливает значения по умолчанию
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8081")
	v.SetDefault("server.debug", false)

	v.SetDefault("database.driver", DriverMySQL)
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)

	v.SetDefault("report.output_dir", ".")
	v.SetDefault("report.xlsx", false)

	v.SetDefault("storage.s3.enabled", false)
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.prefix", "replay-reports")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// bindEnvironmentVariables привязывает переменные окружения APP_* к ключам
// без значений по умолчанию, иначе viper не увидит их при Unmarshal.
func bindEnvironmentVariables(v *viper.Viper) error {
	keys := []string{
		"database.user",
		"database.password",
		"database.name",
		"report.prefix",
		"report.catalog",
		"report.tablename",
		"storage.s3.bucket",
		"storage.s3.endpoint",
		"storage.s3.access_key",
		"storage.s3.secret_key",
	}
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}

// bindFlags привязывает только явно заданные флаги, чтобы их значения
// по умолчанию не перекрывали файл конфигурации и окружение.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var bindErr error
	fs.Visit(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || bindErr != nil {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("failed to bind flag %s: %w", f.Name, err)
		}
	})
	return bindErr
}

// applyRunParameter resolves the run parameter from --replay_name or
// --outfile_prefix and picks the catalog that variant of the tool used.
func applyRunParameter(cfg *Config, fs *pflag.FlagSet) {
	replayName, _ := fs.GetString("replay_name")
	prefix, _ := fs.GetString("outfile_prefix")

	switch {
	case replayName != "":
		cfg.Report.Prefix = replayName
		if cfg.Report.Catalog == "" {
			cfg.Report.Catalog = CatalogExtended
		}
	case prefix != "":
		cfg.Report.Prefix = prefix
		if cfg.Report.Catalog == "" {
			cfg.Report.Catalog = CatalogClassic
		}
	}
}

// validateConfig проверяет корректность конфигурации
func validateConfig(cfg Config) error {
	if cfg.Report.Prefix == "" {
		return fmt.Errorf("run parameter cannot be empty: set --outfile_prefix or --replay_name")
	}

	switch cfg.DB.Driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.DB.Driver)
	}

	if cfg.DB.Name == "" {
		return fmt.Errorf("database name cannot be empty")
	}

	if cfg.Report.Catalog != CatalogClassic && cfg.Report.Catalog != CatalogExtended {
		return fmt.Errorf("catalog must be '%s' or '%s', got: %s", CatalogClassic, CatalogExtended, cfg.Report.Catalog)
	}

	if cfg.Storage.S3.Enabled {
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("S3 region cannot be empty")
		}
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket cannot be empty")
		}
	}

	validLogLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	isValidLevel := false
	for _, level := range validLogLevels {
		if strings.ToLower(cfg.Logging.Level) == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return fmt.Errorf("invalid logging level: %s. Valid levels: %v", cfg.Logging.Level, validLogLevels)
	}

	return nil
}

// String возвращает строковое представление конфигурации (без чувствительных данных)
func (c Config) String() string {
	return fmt.Sprintf("Config{Server: %+v, DB: {Driver: %s, User: %s, Host: %s, Port: %d, Name: %s, Password: [HIDDEN]}, Report: %+v, S3: {Enabled: %t, Bucket: %s}, Logging: %+v}",
		c.Server, c.DB.Driver, c.DB.User, c.DB.Host, c.DB.Port, c.DB.Name, c.Report, c.Storage.S3.Enabled, c.Storage.S3.Bucket, c.Logging)
}
