package helper

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds the connection settings for PostgreSQL.
type DatabaseConfiguration struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
	SSLMode  string
}

// NewDatabaseConfiguration reads the database configuration from the environment.
// DB_HOST, DB_PORT, DB_DATABASE, DB_USERNAME and DB_PASSWORD are required,
// DB_SCHEMA defaults to "public" and DB_SSLMODE to "require".
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	config := &DatabaseConfiguration{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		Database: os.Getenv("DB_DATABASE"),
		Username: os.Getenv("DB_USERNAME"),
		Password: os.Getenv("DB_PASSWORD"),
		Schema:   os.Getenv("DB_SCHEMA"),
		SSLMode:  os.Getenv("DB_SSLMODE"),
	}

	if len(config.Host) == 0 || len(config.Port) == 0 || len(config.Database) == 0 || len(config.Username) == 0 || len(config.Password) == 0 {
		return nil, NewError("database configuration", fmt.Errorf("DB_HOST, DB_PORT, DB_DATABASE, DB_USERNAME and DB_PASSWORD must be set"))
	}
	if len(config.Schema) == 0 {
		config.Schema = "public"
	}
	if len(config.SSLMode) == 0 {
		config.SSLMode = "require"
	}

	return config, nil
}

// DSN returns the connection string for lib/pq.
func (c *DatabaseConfiguration) DSN() string {
	query := url.Values{}
	query.Set("sslmode", c.SSLMode)
	query.Set("search_path", c.Schema)

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     c.Database,
		RawQuery: query.Encode(),
	}
	return u.String()
}

// Database bundles the connection pool with the logger of its owner.
type Database struct {
	Name     string
	Logger   *slog.Logger
	Instance *sql.DB
}

// NewDatabase opens and pings a connection pool for the given configuration.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) (*Database, error) {
	if config == nil {
		return nil, NewError("database configuration validation", fmt.Errorf("database configuration is nil"))
	}
	if logger == nil {
		logger = slog.Default()
	}

	instance, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, NewError("open database", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = instance.PingContext(ctx)
	if err != nil {
		instance.Close()
		return nil, NewError("ping database", err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", config.Host), slog.String("database", config.Database))

	return &Database{
		Name:     name,
		Logger:   logger,
		Instance: instance,
	}, nil
}

// NewTestDatabase connects to the test database and panics if that is not possible.
func NewTestDatabase(config *DatabaseConfiguration) *Database {
	logger := slog.New(NewPrettyHandler(os.Stdout, PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelWarn,
		},
	}))

	db, err := NewDatabase("test", config, logger)
	if err != nil {
		panic(fmt.Sprintf("error connecting to test database: %v", err))
	}
	return db
}

// Close closes the connection pool.
func (d *Database) Close() error {
	if d == nil || d.Instance == nil {
		return nil
	}
	return d.Instance.Close()
}

// SetTestDatabaseConfigEnvs points the database environment variables at the test container.
func SetTestDatabaseConfigEnvs(t *testing.T, dbPort string) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", dbPort)
	t.Setenv("DB_DATABASE", "database")
	t.Setenv("DB_USERNAME", "user")
	t.Setenv("DB_PASSWORD", "password")
	t.Setenv("DB_SCHEMA", "public")
	t.Setenv("DB_SSLMODE", "disable")
}
