package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/linemk/remeras-order/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "config_test_*.yaml")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())
	return tmpFile.Name()
}

func TestMustLoadByPath_Success(t *testing.T) {
	// Устанавливаем обязательные переменные окружения
	t.Setenv("SESSION_SECRET", "mysecret")
	t.Setenv("MAIL_PASSWORD", "app-password")
	t.Setenv("DB_PASSWORD", "mypassword")

	path := writeConfig(t, `
env: "local"
http_server:
  address: "localhost:8080"
  timeout: "4s"
  idle_timeout: "60s"
storage:
  driver: "postgres"
database:
  host: "localhost"
  port: 5432
  user: "postgres"
  name: "orders"
session:
  ttl: "30m"
  cleanup_interval: "1m"
mail:
  host: "smtp.gmail.com"
  port: 587
  username: "formulario@example.com"
  from: "formulario@example.com"
  business_address: "pedidos@example.com"
  copy_customer: true
  personalize: true
export:
  mode: "memory"
migrations:
  path: "./migrations"
`)

	cfg := config.MustLoadByPath(path)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "localhost:8080", cfg.HTTPServer.Address)
	assert.Equal(t, 4*time.Second, cfg.HTTPServer.Timeout)
	assert.Equal(t, config.StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, "orders", cfg.Database.Name)
	assert.Equal(t, "mypassword", cfg.Database.Password)
	assert.Equal(t, "mysecret", cfg.Session.Secret)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "smtp.gmail.com", cfg.Mail.Host)
	assert.Equal(t, "app-password", cfg.Mail.Password)
	assert.Equal(t, "pedidos@example.com", cfg.Mail.BusinessAddress)
	assert.True(t, cfg.Mail.CopyCustomer)
	assert.True(t, cfg.Mail.Personalize)
	assert.Equal(t, config.TLSMandatory, cfg.Mail.TLSPolicy)
	assert.Equal(t, 15*time.Second, cfg.Mail.Timeout)
	assert.Equal(t, config.ExportMemory, cfg.Export.Mode)
	assert.Equal(t, "pedido_personalizado.xlsx", cfg.Export.FileName)
	assert.Equal(t, "./migrations", cfg.Migrations.Path)
	assert.NoError(t, cfg.Validate())
}

func TestMustLoadByPath_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "mysecret")

	path := writeConfig(t, `
env: "dev"
mail:
  business_address: "pedidos@example.com"
  dry_run: true
`)

	cfg := config.MustLoadByPath(path)

	assert.Equal(t, config.StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, config.ExportTempFile, cfg.Export.Mode)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.NoError(t, cfg.Validate())
}

func TestMustLoadByPath_FileNotFound(t *testing.T) {
	// Ожидаем панику, если файла не существует
	assert.Panics(t, func() {
		config.MustLoadByPath("non_existent_config.yaml")
	})
}

func TestValidate(t *testing.T) {
	base := func() *config.Config {
		return &config.Config{
			Storage: config.StorageConfig{Driver: config.StorageMemory},
			Export:  config.ExportConfig{Mode: config.ExportTempFile},
			Mail: config.MailConfig{
				Host:            "smtp.example.com",
				From:            "form@example.com",
				Password:        "secret",
				BusinessAddress: "orders@example.com",
				TLSPolicy:       config.TLSMandatory,
			},
		}
	}

	assert.NoError(t, base().Validate())

	cfg := base()
	cfg.Storage.Driver = "redis"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Storage.Driver = config.StoragePostgres
	assert.Error(t, cfg.Validate(), "postgres without database settings")

	cfg = base()
	cfg.Export.Mode = "s3"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Mail.TLSPolicy = "always"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Mail.Password = ""
	assert.Error(t, cfg.Validate(), "credentials must be injected")

	cfg.Mail.DryRun = true
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Mail.BusinessAddress = ""
	assert.Error(t, cfg.Validate())
}
