package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

//go:embed migrations/mysql/*.sql migrations/postgres/*.sql
var migrations embed.FS

// migrationFiles returns the sorted .sql files under migrations/<dialect>.
func migrationFiles(dialect string) ([]string, error) {
	dir := path.Join("migrations", dialect)
	entries, err := migrations.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, path.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// splitStatements cuts a migration file on statement-terminating semicolons.
func splitStatements(src string) []string {
	var out []string
	for _, s := range strings.Split(src, ";\n") {
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ";"))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// MigrateMySQL applies every pending MySQL migration and records it in
// schema_migrations.
func MigrateMySQL(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (version VARCHAR(255) PRIMARY KEY)`); err != nil {
		return err
	}
	files, err := migrationFiles("mysql")
	if err != nil {
		return err
	}
	for _, f := range files {
		var n int
		if err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, f).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		b, err := migrations.ReadFile(f)
		if err != nil {
			return err
		}
		for _, stmt := range splitStatements(string(b)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply %s: %w", f, err)
			}
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, f); err != nil {
			return err
		}
		log.Printf("migrate: applied %s", f)
	}
	return nil
}

// MigratePostgres is the Postgres counterpart of MigrateMySQL.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)`); err != nil {
		return err
	}
	files, err := migrationFiles("postgres")
	if err != nil {
		return err
	}
	for _, f := range files {
		var applied bool
		if err := pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, f).Scan(&applied); err != nil {
			return err
		}
		if applied {
			continue
		}
		b, err := migrations.ReadFile(f)
		if err != nil {
			return err
		}
		for _, stmt := range splitStatements(string(b)) {
			if _, err := pool.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply %s: %w", f, err)
			}
		}
		if _, err := pool.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, f); err != nil {
			return err
		}
		log.Printf("migrate: applied %s", f)
	}
	return nil
}

// EnsureMongoIndexes creates the unique indexes the Mongo stores rely on.
// Index creation is idempotent.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	active := bson.M{"activeSlot": true}
	reservations := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "guestEmail", Value: 1}, {Key: "arrivalDate", Value: 1}, {Key: "mealPeriod", Value: 1}},
			Options: options.Index().SetName("uq_reservations_email_slot").
				SetUnique(true).SetPartialFilterExpression(active),
		},
		{
			Keys: bson.D{{Key: "guestPhone", Value: 1}, {Key: "arrivalDate", Value: 1}, {Key: "mealPeriod", Value: 1}},
			Options: options.Index().SetName("uq_reservations_phone_slot").
				SetUnique(true).SetPartialFilterExpression(active),
		},
		{Keys: bson.D{{Key: "expectedArrivalTime", Value: -1}}},
	}
	if _, err := db.Collection("reservations").Indexes().CreateMany(ctx, reservations); err != nil {
		return fmt.Errorf("reservations indexes: %w", err)
	}
	users := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("uq_users_email").SetUnique(true)},
		{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetName("uq_users_phone").SetUnique(true)},
	}
	if _, err := db.Collection("users").Indexes().CreateMany(ctx, users); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}
	log.Printf("migrate: mongo indexes ensured on %s", db.Name())
	return nil
}
