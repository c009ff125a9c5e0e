package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// значения storage.driver
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// значения export.mode
const (
	ExportMemory   = "memory"
	ExportTempFile = "tempfile"
)

// значения mail.tls_policy
const (
	TLSMandatory     = "mandatory"
	TLSOpportunistic = "opportunistic"
	TLSNone          = "none"
)

type Config struct {
	Env        string           `yaml:"env" env-default:"development"` // environment
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	Storage    StorageConfig    `yaml:"storage"`
	Database   DatabaseConfig   `yaml:"database"`
	Session    SessionConfig    `yaml:"session"`
	Mail       MailConfig       `yaml:"mail"`
	Export     ExportConfig     `yaml:"export"`
	Migrations MigrationsConfig `yaml:"migrations"`
}

// HTTPServerConfig структура http сервера
type HTTPServerConfig struct {
	Address     string        `yaml:"address" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// StorageConfig где живут сессии и журнал отправок
type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
}

// DatabaseConfig структура по работе с БД, нужна только при storage.driver=postgres
type DatabaseConfig struct {
	Host     string `yaml:"host" env-default:"localhost"`
	Port     int    `yaml:"port" env-default:"5432"`
	User     string `yaml:"user"`
	Password string `yaml:"-" env:"DB_PASSWORD"`
	Name     string `yaml:"name"`
}

// SessionConfig время жизни формы и подпись токена сессии
type SessionConfig struct {
	Secret          string        `yaml:"-" env:"SESSION_SECRET" env-required:"true"`
	TTL             time.Duration `yaml:"ttl" env-default:"2h"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env-default:"10m"`
}

// MailConfig учётные данные отправителя и адрес бизнеса; пароль только из окружения
type MailConfig struct {
	Host            string        `yaml:"host" env:"MAIL_HOST"`
	Port            int           `yaml:"port" env:"MAIL_PORT" env-default:"587"`
	Username        string        `yaml:"username" env:"MAIL_USERNAME"`
	Password        string        `yaml:"-" env:"MAIL_PASSWORD"`
	From            string        `yaml:"from" env:"MAIL_FROM"`
	BusinessAddress string        `yaml:"business_address" env:"MAIL_BUSINESS_ADDRESS"`
	CopyCustomer    bool          `yaml:"copy_customer"`
	Personalize     bool          `yaml:"personalize"`
	TLSPolicy       string        `yaml:"tls_policy" env-default:"mandatory"`
	SSL             bool          `yaml:"ssl"`
	Timeout         time.Duration `yaml:"timeout" env-default:"15s"`
	DryRun          bool          `yaml:"dry_run" env:"MAIL_DRY_RUN"`
}

// ExportConfig как хранится xlsx до отправки
type ExportConfig struct {
	Mode     string `yaml:"mode" env-default:"tempfile"`
	TempDir  string `yaml:"temp_dir"`
	FileName string `yaml:"file_name" env-default:"pedido_personalizado.xlsx"`
}

type MigrationsConfig struct {
	Path string `yaml:"path" env-default:"./migrations"`
}

// MustLoad - если не загружаем - паникуем
func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		log.Fatal("CONFIG_PATH not exists")
	}
	return MustLoadByPath(configPath)
}

func fetchConfigPath() string {
	var path string

	flag.StringVar(&path, "config", "", "path to config file")
	flag.Parse()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return path
}

func MustLoadByPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file not found: " + configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("can't read config file %s: %v", configPath, err)
	}

	return &cfg
}

// Validate проверяет значения перечислений и обязательные поля, зависящие от режима
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if c.Database.User == "" || c.Database.Name == "" {
			return fmt.Errorf("database user and name are required for %s storage", StoragePostgres)
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD environment variable is not set")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Export.Mode {
	case ExportMemory, ExportTempFile:
	default:
		return fmt.Errorf("unknown export mode %q", c.Export.Mode)
	}

	switch c.Mail.TLSPolicy {
	case TLSMandatory, TLSOpportunistic, TLSNone:
	default:
		return fmt.Errorf("unknown mail tls policy %q", c.Mail.TLSPolicy)
	}

	if c.Mail.BusinessAddress == "" {
		return fmt.Errorf("mail business_address is required")
	}
	if c.Mail.DryRun {
		return nil
	}
	if c.Mail.Host == "" || c.Mail.From == "" {
		return fmt.Errorf("mail host and from are required unless dry_run is set")
	}
	if c.Mail.Password == "" {
		return fmt.Errorf("MAIL_PASSWORD environment variable is not set")
	}
	return nil
}
