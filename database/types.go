package database

import (
	"database/sql"
	"embed"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var Content embed.FS

type DatabaseDriver string

type DatabaseOpts struct {
	MaxConnections        int
	MaxIdleConnections    int
	MaxIdleTimeConnection time.Duration
}

type DatabaseInterface struct {
	DB     *sql.DB // Function so we have functions on top of it
	Opts   DatabaseOpts
	Driver DatabaseDriver
	Log    logrus.Entry
	URL    string
}

// BidSubmissionDatabase is the persisted record of one bid submission and
// its terminal outcome.
type BidSubmissionDatabase struct {
	ID                string
	ArtworkID         string
	SaleID            string
	UserID            string
	MaxBidAmountCents int64
	PositionID        string
	Won               bool
	Messages          []string
}

// BidderRegistrationDatabase records the bidder id a user obtained for a
// sale, so registration history survives gateway restarts.
type BidderRegistrationDatabase struct {
	UserID   string
	SaleID   string
	BidderID string
}

// SaleDatabase mirrors the backend sale state the lot refresher tracks.
type SaleDatabase struct {
	SaleID             string
	Slug               string
	Closed             bool
	RegistrationClosed bool
	Increments         []string
}

func (database *DatabaseInterface) NewDatabaseOpts() {

	database.DB.SetMaxOpenConns(database.Opts.MaxConnections)

	database.DB.SetMaxIdleConns(database.Opts.MaxIdleConnections)

	database.DB.SetConnMaxIdleTime(database.Opts.MaxIdleTimeConnection)
}

func (database *DatabaseInterface) DBMigrate() error {
	migrationOpts, err := iofs.New(Content, "migrations")
	if err != nil {
		database.Log.Fatal(err)
		return err
	}

	migration, err := migrate.NewWithSourceInstance("iofs", migrationOpts, database.URL)
	if err != nil {
		database.Log.Fatal(err)
		return err
	}

	defer migration.Close()

	err = migration.Up()
	if err != nil && err != migrate.ErrNoChange {
		database.Log.Fatal("Database Migrate Error")
		return err
	}

	database.Log.Info("Database Migrate Succesful")
	return nil
}
