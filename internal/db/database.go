package db

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Database holds the database connection pool
type Database struct {
	Pool *pgxpool.Pool
}

// Config holds database configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// NewDatabase creates a new database connection with retry logic for serverless databases
func NewDatabase() (*Database, error) {
	return NewDatabaseWithRetry(5, time.Second)
}

// NewDatabaseWithRetry creates a new database connection with configurable retry logic
func NewDatabaseWithRetry(maxRetries int, initialDelay time.Duration) (*Database, error) {
	// Prefer DATABASE_URL if provided (single DSN)
	var poolConfig *pgxpool.Config
	var err error
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		poolConfig, err = pgxpool.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
	} else {
		config := getConfigFromEnv()

		var connStr string
		if config.Password == "" {
			connStr = fmt.Sprintf(
				"host=%s port=%d user=%s dbname=%s sslmode=%s",
				config.Host, config.Port, config.User, config.DBName, config.SSLMode,
			)
		} else {
			connStr = fmt.Sprintf(
				"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
				config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode,
			)
		}

		poolConfig, err = pgxpool.ParseConfig(connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse database config: %w", err)
		}
	}

	// Set pool settings
	poolConfig.MaxConns = 30
	poolConfig.MinConns = 0
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	// Prefer simple protocol (no prepared statements) to be PgBouncer/Neon pooler friendly
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	origHost := poolConfig.ConnConfig.Host

	// Force IPv4 by resolving the host to an A record and dialing that IP directly.
	// Falls back to dual stack if no IPv4 is available.
	poolConfig.ConnConfig.DialFunc = func(ctx context.Context, network, address string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(address)
		if err != nil || host == "" || port == "" {
			host = origHost
			port = "5432"
		}

		ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
		if err == nil {
			for _, ipa := range ips {
				if ipv4 := ipa.IP.To4(); ipv4 != nil {
					return (&net.Dialer{}).DialContext(ctx, "tcp4", net.JoinHostPort(ipv4.String(), port))
				}
			}
			if len(ips) > 0 {
				return (&net.Dialer{}).DialContext(ctx, "tcp", net.JoinHostPort(ips[0].IP.String(), port))
			}
		}
		return (&net.Dialer{}).DialContext(ctx, "tcp", address)
	}
	if poolConfig.ConnConfig.TLSConfig != nil && poolConfig.ConnConfig.TLSConfig.ServerName == "" {
		poolConfig.ConnConfig.TLSConfig.ServerName = origHost
	}

	var pool *pgxpool.Pool
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Printf("[PORTAL-DB] Connection attempt %d/%d to database %s@%s:%d",
			attempt, maxRetries, poolConfig.ConnConfig.User, poolConfig.ConnConfig.Host, poolConfig.ConnConfig.Port)

		pool, err = pgxpool.NewWithConfig(context.Background(), poolConfig)
		if err != nil {
			lastErr = fmt.Errorf("failed to create connection pool: %w", err)
			log.Printf("[PORTAL-DB] Failed to create pool (attempt %d): %v", attempt, err)
			if attempt < maxRetries {
				delay := time.Duration(attempt-1) * initialDelay
				log.Printf("[PORTAL-DB] Retrying in %v...", delay)
				time.Sleep(delay)
			}
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = pool.Ping(ctx)
		cancel()

		if err == nil {
			log.Printf("[PORTAL-DB] Successfully connected to database on attempt %d", attempt)
			break
		}

		lastErr = fmt.Errorf("failed to ping database: %w", err)
		log.Printf("[PORTAL-DB] Connection failed (attempt %d): %v", attempt, err)
		pool.Close()
		pool = nil

		if attempt < maxRetries {
			// Exponential backoff: 1s, 2s, 4s, 8s, 16s
			delay := initialDelay * time.Duration(1<<(attempt-1))
			log.Printf("[PORTAL-DB] Retrying in %v...", delay)
			time.Sleep(delay)
		}
	}

	if pool == nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, lastErr)
	}

	db := &Database{Pool: pool}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.InitSchema(ctx); err != nil {
		log.Printf("[PORTAL-DB] Warning: Failed to initialize database schema: %v", err)
		// Don't fail here - schema might be initialized later
	}

	log.Println("[PORTAL-DB] Database connection established successfully")
	return db, nil
}

// getConfigFromEnv reads database configuration from environment variables
func getConfigFromEnv() Config {
	port, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		port = 5432
	}

	return Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     port,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "matcheco"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Close closes the database connection pool
func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		log.Println("Portal service database connection pool closed")
	}
}

// Health checks if the database is healthy
func (db *Database) Health(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// InitSchema creates the portal tables when they do not exist yet
func (db *Database) InitSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS factories (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			factory_name TEXT NOT NULL,
			industry_type TEXT NOT NULL,
			email TEXT NOT NULL,
			location_text TEXT,
			location_lat DOUBLE PRECISION,
			location_lon DOUBLE PRECISION,
			production_capacity TEXT,
			certification TEXT,
			sustainability_goal TEXT,
			roles_csv TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS factory_generator (
			id BIGSERIAL PRIMARY KEY,
			factory_id BIGINT NOT NULL REFERENCES factories(id),
			waste_category TEXT,
			waste_type_name TEXT,
			waste_composition TEXT,
			waste_properties TEXT,
			quantity_generated TEXT,
			frequency_generation TEXT,
			storage_condition TEXT,
			disposal_cost TEXT,
			hazard_rating TEXT,
			preferred_buyer TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS factory_receiver (
			id BIGSERIAL PRIMARY KEY,
			factory_id BIGINT NOT NULL REFERENCES factories(id),
			raw_material_name TEXT,
			raw_material_category TEXT,
			required_composition TEXT,
			required_properties TEXT,
			min_purity TEXT,
			contaminant_tolerance TEXT,
			form_needed TEXT,
			particle_size TEXT,
			temperature_req TEXT,
			odor_color TEXT,
			quantity_required TEXT,
			frequency_requirement TEXT,
			quality_tolerance TEXT,
			budget_per_ton TEXT,
			contract_type TEXT,
			certification_needed TEXT,
			max_distance_km DOUBLE PRECISION
		)`,
		`CREATE TABLE IF NOT EXISTS factory_records (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			payload JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS conversation_participants (
			conversation_id BIGINT NOT NULL REFERENCES conversations(id),
			factory_id BIGINT NOT NULL REFERENCES factories(id),
			user_id BIGINT NOT NULL REFERENCES users(id),
			UNIQUE (conversation_id, factory_id)
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id BIGSERIAL PRIMARY KEY,
			conversation_id BIGINT NOT NULL REFERENCES conversations(id),
			sender_user_id BIGINT NOT NULL REFERENCES users(id),
			body TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_factories_user ON factories(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_generator_factory ON factory_generator(factory_id)`,
		`CREATE INDEX IF NOT EXISTS idx_receiver_factory ON factory_receiver(factory_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	log.Println("[PORTAL-DB] Database schema initialized successfully")
	return nil
}
