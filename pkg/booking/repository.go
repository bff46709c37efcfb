package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Repository is the persistence boundary of the booking engine. Store assigns
// the booking id from a monotonic counter, atomically with the write that
// consumes it. Find* methods returning slices exclude cancelled bookings;
// FindByID and FindAll do not.
type Repository interface {
	Store(ctx context.Context, b Booking) (Booking, error)
	FindByID(ctx context.Context, id string) (*Booking, error)
	FindActiveForEquipmentAndDate(ctx context.Context, equipmentID, date string) ([]Booking, error)
	FindActiveForDate(ctx context.Context, date string) ([]Booking, error)
	FindActiveForDateRange(ctx context.Context, fromDate, toDateExclusive string) ([]Booking, error)
	FindActiveForUser(ctx context.Context, userEmail string) ([]Booking, error)
	FindAll(ctx context.Context, includeCancelled bool) ([]Booking, error)
	Cancel(ctx context.Context, id string, cancelledAt time.Time) (bool, error)
}

// SQLRepository stores bookings in a SQL database (embedded SQLite by
// default, Postgres optionally). Timestamps are persisted as RFC3339 strings
// so every field of the storage contract round-trips losslessly.
type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

const bookingColumns = "id, equipment_id, equipment_name, date, start_time, end_time, duration_hours, user_name, user_email, notes, status, created_at, cancelled_at"

func (r *SQLRepository) Store(ctx context.Context, b Booking) (Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err = fmt.Errorf("%w: begin transaction: %v", ErrStorage, err)
		log.Error(err)
		return Booking{}, err
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	// The counter row is bumped in the same transaction as the insert, so
	// two concurrent creations can never observe the same sequence value.
	var next int64
	row := tx.QueryRowContext(ctx, "UPDATE booking_counter SET next_id = next_id + 1 WHERE id = $1 RETURNING next_id", 1)
	if err := row.Scan(&next); err != nil {
		err = fmt.Errorf("%w: could not advance booking counter: %v", ErrStorage, err)
		log.Error(err)
		return Booking{}, err
	}
	b.ID = FormatBookingID(int(next) - 1)

	var cancelledAt *string
	if b.CancelledAt != nil {
		s := b.CancelledAt.Format(time.RFC3339)
		cancelledAt = &s
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO booking (`+bookingColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		b.ID, b.EquipmentID, b.EquipmentName, b.Date, b.StartTime, b.EndTime,
		b.DurationHours, b.UserName, b.UserEmail, b.Notes, string(b.Status),
		b.CreatedAt.Format(time.RFC3339), cancelledAt)
	if err != nil {
		err = fmt.Errorf("%w: could not insert booking: %v", ErrStorage, err)
		log.Error(err)
		return Booking{}, err
	}

	if err := tx.Commit(); err != nil {
		err = fmt.Errorf("%w: commit transaction: %v", ErrStorage, err)
		log.Error(err)
		return Booking{}, err
	}
	return b, nil
}

func (r *SQLRepository) FindByID(ctx context.Context, id string) (*Booking, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM booking WHERE id = $1", id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		err = fmt.Errorf("%w: could not query booking by id: %v", ErrStorage, err)
		log.Error(err)
		return nil, err
	}
	return &b, nil
}

func (r *SQLRepository) FindActiveForEquipmentAndDate(ctx context.Context, equipmentID, date string) ([]Booking, error) {
	return r.query(ctx,
		"SELECT "+bookingColumns+` FROM booking
		 WHERE equipment_id = $1 AND date = $2 AND status != $3
		 ORDER BY start_time`,
		equipmentID, date, string(StatusCancelled))
}

func (r *SQLRepository) FindActiveForDate(ctx context.Context, date string) ([]Booking, error) {
	return r.query(ctx,
		"SELECT "+bookingColumns+` FROM booking
		 WHERE date = $1 AND status != $2
		 ORDER BY start_time`,
		date, string(StatusCancelled))
}

func (r *SQLRepository) FindActiveForDateRange(ctx context.Context, fromDate, toDateExclusive string) ([]Booking, error) {
	// ISO dates compare correctly as strings.
	return r.query(ctx,
		"SELECT "+bookingColumns+` FROM booking
		 WHERE date >= $1 AND date < $2 AND status != $3
		 ORDER BY date, start_time`,
		fromDate, toDateExclusive, string(StatusCancelled))
}

func (r *SQLRepository) FindActiveForUser(ctx context.Context, userEmail string) ([]Booking, error) {
	return r.query(ctx,
		"SELECT "+bookingColumns+` FROM booking
		 WHERE user_email = $1 AND status != $2
		 ORDER BY date, start_time`,
		userEmail, string(StatusCancelled))
}

func (r *SQLRepository) FindAll(ctx context.Context, includeCancelled bool) ([]Booking, error) {
	if includeCancelled {
		return r.query(ctx, "SELECT "+bookingColumns+" FROM booking ORDER BY date, start_time")
	}
	return r.query(ctx,
		"SELECT "+bookingColumns+" FROM booking WHERE status != $1 ORDER BY date, start_time",
		string(StatusCancelled))
}

// Cancel marks the booking cancelled regardless of its current status, so
// re-cancelling refreshes cancelled_at and still reports success.
func (r *SQLRepository) Cancel(ctx context.Context, id string, cancelledAt time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE booking SET status = $1, cancelled_at = $2 WHERE id = $3",
		string(StatusCancelled), cancelledAt.Format(time.RFC3339), id)
	if err != nil {
		err = fmt.Errorf("%w: could not cancel booking: %v", ErrStorage, err)
		log.Error(err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		err = fmt.Errorf("%w: could not read affected rows: %v", ErrStorage, err)
		log.Error(err)
		return false, err
	}
	return affected > 0, nil
}

func (r *SQLRepository) query(ctx context.Context, query string, args ...any) ([]Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err = fmt.Errorf("%w: could not query bookings: %v", ErrStorage, err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	bookings := make([]Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			err = fmt.Errorf("%w: could not scan booking row: %v", ErrStorage, err)
			log.Error(err)
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		err = fmt.Errorf("%w: row iteration failed: %v", ErrStorage, err)
		log.Error(err)
		return nil, err
	}
	return bookings, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (Booking, error) {
	var b Booking
	var status, createdAt string
	var cancelledAt *string
	err := row.Scan(&b.ID, &b.EquipmentID, &b.EquipmentName, &b.Date,
		&b.StartTime, &b.EndTime, &b.DurationHours, &b.UserName, &b.UserEmail,
		&b.Notes, &status, &createdAt, &cancelledAt)
	if err != nil {
		return Booking{}, err
	}
	b.Status = Status(status)
	b.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Booking{}, fmt.Errorf("could not parse created_at %q: %w", createdAt, err)
	}
	if cancelledAt != nil {
		t, err := time.Parse(time.RFC3339, *cancelledAt)
		if err != nil {
			return Booking{}, fmt.Errorf("could not parse cancelled_at %q: %w", *cancelledAt, err)
		}
		b.CancelledAt = &t
	}
	return b, nil
}

// FormatBookingID renders a sequence number as the public booking reference.
func FormatBookingID(seq int) string {
	return fmt.Sprintf("BK%04d", seq)
}
