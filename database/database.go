// Package database exposes the postgres database
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/gallerynet/paddle/analytics"
)

func NewDatabase(url string,
	parameters DatabaseOpts,
	dbDriver DatabaseDriver) (*DatabaseInterface, error) {

	database, err := sql.Open(string(dbDriver), url)
	if err != nil {
		return nil, err
	}

	dbInterface := &DatabaseInterface{
		DB:     database,
		Opts:   parameters,
		Driver: dbDriver,
		URL:    url,
		Log: *logrus.NewEntry(logrus.New()).WithFields(logrus.Fields{
			"package": "Database",
		})}

	dbInterface.NewDatabaseOpts()

	if err = dbInterface.DBMigrate(); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"Max Connections":      parameters.MaxConnections,
		"Max Idle Connections": parameters.MaxIdleConnections,
		"Max Timeout":          parameters.MaxIdleTimeConnection,
	}).Info("Database Opts")

	return dbInterface, err
}

func (database *DatabaseInterface) PutBidSubmission(ctx context.Context,
	submission BidSubmissionDatabase) error {

	messagesJSON, err := json.Marshal(submission.Messages)
	if err != nil {
		return err
	}

	query := `INSERT INTO bid_submissions
		(id, artwork_id, sale_id, user_id, max_bid_amount_cents, position_id, won, messages) VALUES
		($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = database.DB.ExecContext(
		ctx,
		query,
		submission.ID,
		submission.ArtworkID,
		submission.SaleID,
		submission.UserID,
		submission.MaxBidAmountCents,
		submission.PositionID,
		submission.Won,
		messagesJSON,
	)

	return err
}

func (database *DatabaseInterface) PutBidEvent(ctx context.Context,
	event analytics.Event) error {

	errorMessagesJSON, err := json.Marshal(event.ErrorMessages)
	if err != nil {
		return err
	}
	productsJSON, err := json.Marshal(event.Products)
	if err != nil {
		return err
	}

	query := `INSERT INTO bid_events
		(action_type, context_page, auction_slug, artwork_slug, bidder_id, sale_id, user_id,
		bidder_position_id, order_id, error_messages, products, selected_max_bid_minor) VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = database.DB.ExecContext(
		ctx,
		query,
		event.ActionType,
		event.ContextPage,
		event.AuctionSlug,
		event.ArtworkSlug,
		event.BidderID,
		event.SaleID,
		event.UserID,
		event.BidderPositionID,
		event.OrderID,
		errorMessagesJSON,
		productsJSON,
		event.SelectedMaxBidMinor,
	)

	return err
}

func (database *DatabaseInterface) PutBidderRegistration(ctx context.Context,
	registration BidderRegistrationDatabase) error {

	query := `INSERT INTO bidder_registrations
		(user_id, sale_id, bidder_id) VALUES
		($1, $2, $3) ON CONFLICT (user_id, sale_id) DO UPDATE SET
		bidder_id = $3`
	_, err := database.DB.ExecContext(
		ctx,
		query,
		registration.UserID,
		registration.SaleID,
		registration.BidderID,
	)

	return err
}

func (database *DatabaseInterface) PutSales(sales []SaleDatabase) error {

	query := `INSERT INTO sales
		(sale_id, slug, closed, registration_closed, increments) VALUES
		($1, $2, $3, $4, $5) ON CONFLICT (sale_id) DO UPDATE SET
		slug = $2, closed = $3, registration_closed = $4, increments = $5`
	for _, sale := range sales {
		incrementsJSON, err := json.Marshal(sale.Increments)
		if err != nil {
			return err
		}
		_, err = database.DB.ExecContext(
			context.Background(),
			query,
			sale.SaleID,
			sale.Slug,
			sale.Closed,
			sale.RegistrationClosed,
			incrementsJSON,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// Functions For Insights To Get Bid Activity Between Timestamps

func (database *DatabaseInterface) GetBidEventsInsights(ctx context.Context,
	from time.Time,
	to time.Time) (*[]analytics.Event, error) {

	query := `SELECT action_type, context_page, auction_slug, artwork_slug, bidder_id, sale_id, user_id,
	bidder_position_id, order_id, error_messages, products, selected_max_bid_minor
	FROM bid_events
	WHERE created_at BETWEEN $1 AND $2
	ORDER BY created_at ASC`

	rows, err := database.DB.QueryContext(ctx, query, from, to)
	switch {
	case err == sql.ErrNoRows:
		database.Log.WithFields(logrus.Fields{
			"From": from,
			"To":   to,
		}).Info("No Bid Events")
		return &[]analytics.Event{}, nil

	case err != nil:
		return nil, err

	default:
	}
	defer rows.Close()

	bidEvents := []analytics.Event{}

	for rows.Next() {
		event := analytics.Event{}
		errorMessagesJSON := []byte{}
		productsJSON := []byte{}
		err = rows.Scan(&event.ActionType, &event.ContextPage, &event.AuctionSlug, &event.ArtworkSlug,
			&event.BidderID, &event.SaleID, &event.UserID, &event.BidderPositionID, &event.OrderID,
			&errorMessagesJSON, &productsJSON, &event.SelectedMaxBidMinor)
		if err != nil {
			return nil, err
		}
		if err = json.Unmarshal(errorMessagesJSON, &event.ErrorMessages); err != nil {
			return nil, err
		}
		if err = json.Unmarshal(productsJSON, &event.Products); err != nil {
			return nil, err
		}
		bidEvents = append(bidEvents, event)
	}

	return &bidEvents, nil
}

func (database *DatabaseInterface) GetBidSubmissionsInsights(ctx context.Context,
	from time.Time,
	to time.Time) (*[]BidSubmissionDatabase, error) {

	query := `SELECT id, artwork_id, sale_id, user_id, max_bid_amount_cents, position_id, won, messages
	FROM bid_submissions
	WHERE created_at BETWEEN $1 AND $2
	ORDER BY created_at ASC`

	rows, err := database.DB.QueryContext(ctx, query, from, to)
	switch {
	case err == sql.ErrNoRows:
		database.Log.WithFields(logrus.Fields{
			"From": from,
			"To":   to,
		}).Info("No Bid Submissions")
		return &[]BidSubmissionDatabase{}, nil

	case err != nil:
		return nil, err

	default:
	}
	defer rows.Close()

	submissions := []BidSubmissionDatabase{}

	for rows.Next() {
		submission := BidSubmissionDatabase{}
		messagesJSON := []byte{}
		err = rows.Scan(&submission.ID, &submission.ArtworkID, &submission.SaleID, &submission.UserID,
			&submission.MaxBidAmountCents, &submission.PositionID, &submission.Won, &messagesJSON)
		if err != nil {
			return nil, err
		}
		if err = json.Unmarshal(messagesJSON, &submission.Messages); err != nil {
			return nil, err
		}
		submissions = append(submissions, submission)
	}

	return &submissions, nil
}

func (database *DatabaseInterface) GetBidderRegistrationsInsights(ctx context.Context,
	from time.Time,
	to time.Time) (*[]BidderRegistrationDatabase, error) {

	query := `SELECT user_id, sale_id, bidder_id
	FROM bidder_registrations
	WHERE created_at BETWEEN $1 AND $2
	ORDER BY created_at ASC`

	rows, err := database.DB.QueryContext(ctx, query, from, to)
	switch {
	case err == sql.ErrNoRows:
		database.Log.WithFields(logrus.Fields{
			"From": from,
			"To":   to,
		}).Info("No Bidder Registrations")
		return &[]BidderRegistrationDatabase{}, nil

	case err != nil:
		return nil, err

	default:
	}
	defer rows.Close()

	registrations := []BidderRegistrationDatabase{}

	for rows.Next() {
		registration := BidderRegistrationDatabase{}
		err = rows.Scan(&registration.UserID, &registration.SaleID, &registration.BidderID)
		if err != nil {
			return nil, err
		}
		registrations = append(registrations, registration)
	}

	return &registrations, nil
}
