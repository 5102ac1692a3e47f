package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/iliyamo/table-reservation/internal/auth"
	"github.com/iliyamo/table-reservation/internal/config"
	"github.com/iliyamo/table-reservation/internal/database"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/reservation"
)

// stores bundles the repositories of the configured driver.
type stores struct {
	reservations reservation.Store
	users        auth.UserStore
	close        func()
}

// openStores connects to the backend named by cfg.StoreDriver.  With migrate
// set it also brings the schema up to date before returning.
func openStores(ctx context.Context, cfg config.Config, migrate bool) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverMySQL:
		db, err := database.OpenMySQL(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := database.MigrateMySQL(ctx, db); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return &stores{
			reservations: repository.NewReservationRepo(db),
			users:        repository.NewUserRepo(db),
			close:        func() { _ = db.Close() },
		}, nil

	case config.DriverPostgres:
		pool, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := database.MigratePostgres(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return &stores{
			reservations: repository.NewPgReservationRepo(pool),
			users:        repository.NewPgUserRepo(pool),
			close:        pool.Close,
		}, nil

	case config.DriverMongo:
		client, db, err := database.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := database.EnsureMongoIndexes(ctx, db); err != nil {
				_ = client.Disconnect(context.Background())
				return nil, err
			}
		}
		return &stores{
			reservations: repository.NewMongoReservationRepo(db),
			users:        repository.NewMongoUserRepo(db),
			close:        func() { _ = client.Disconnect(context.Background()) },
		}, nil

	case config.DriverMemory:
		log.Println("store: using in-memory store; data is lost on exit")
		return &stores{
			reservations: repository.NewMemoryReservationRepo(),
			users:        repository.NewMemoryUserRepo(),
			close:        func() {},
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", repository.ErrUnknownDriver, cfg.StoreDriver)
}
