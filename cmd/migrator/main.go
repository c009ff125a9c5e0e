package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/linemk/remeras-order/internal/config"
)

const migrationsTable = "migrations"

// buildMigrateDSN собирает строку подключения (DSN) из отдельных параметров
func buildMigrateDSN(dbCfg config.DatabaseConfig, migrationTable string) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable&x-migrations-table=%s",
		dbCfg.User, dbCfg.Password, dbCfg.Host, dbCfg.Port, dbCfg.Name, migrationTable,
	)
}

// buildQueryDSN собирает DSN для обычных SQL запросов
func buildQueryDSN(dbCfg config.DatabaseConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		dbCfg.User, dbCfg.Password, dbCfg.Host, dbCfg.Port, dbCfg.Name,
	)
}

func main() {
	var migrationsPathFlag string
	flag.StringVar(&migrationsPathFlag, "migrations-path", "", "path to migration files")

	_ = godotenv.Load()
	// config.MustLoad сам вызывает flag.Parse
	cfg := config.MustLoad()

	migrationsPath := cfg.Migrations.Path
	if migrationsPathFlag != "" {
		migrationsPath = migrationsPathFlag
	}

	if cfg.Database.Password == "" {
		log.Fatal("DB_PASSWORD environment variable is required")
	}
	if cfg.Storage.Driver != config.StoragePostgres {
		log.Printf("storage.driver is %q, migrating anyway", cfg.Storage.Driver)
	}

	if err := applyMigrations(migrationsPath, cfg.Database); err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open("postgres", buildQueryDSN(cfg.Database))
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	tables, err := listTables(db)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Current tables in the database:")
	for _, name := range tables {
		fmt.Println(" -", name)
	}
}

// applyMigrations накатывает миграции sessions и dispatches; отсутствие изменений не ошибка
func applyMigrations(migrationsPath string, dbCfg config.DatabaseConfig) error {
	m, err := migrate.New("file://"+migrationsPath, buildMigrateDSN(dbCfg, migrationsTable))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("No migrations to apply")
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Println("Migrations applied successfully")
	return nil
}

// listTables таблицы схемы public по алфавиту
func listTables(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading rows: %w", err)
	}
	return tables, nil
}
