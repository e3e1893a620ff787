package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dukerupert/swimschool/internal/model"
)

type BookingStore struct {
	db *sql.DB
}

func NewBookingStore(db *sql.DB) *BookingStore {
	return &BookingStore{db: db}
}

const bookingCols = `id, confirmation_token, created_at, confirmed_at, course_period, desired_time_slot,
	child_name, child_birthdate, child_address, has_swim_experience, swim_experience_details, health_notes,
	may_swim_without_aid, parent_name, parent_phone, parent_email, is_member_of_club, payment_method,
	participation_consent, liability_acknowledged, photo_consent, data_consent, booking_confirmation,
	meta_ip, meta_user_agent, meta_host, meta_time`

func scanBooking(scanner interface{ Scan(...any) error }) (*model.Booking, error) {
	var b model.Booking
	var confirmedAt, metaTime sql.NullTime
	var swimDetails, healthNotes, parentPhone sql.NullString
	var payment string

	err := scanner.Scan(
		&b.ID, &b.ConfirmationToken, &b.CreatedAt, &confirmedAt, &b.CoursePeriod, &b.DesiredTimeSlot,
		&b.ChildName, &b.ChildBirthdate, &b.ChildAddress, &b.HasSwimExperience, &swimDetails, &healthNotes,
		&b.MaySwimWithoutAid, &b.ParentName, &parentPhone, &b.ParentEmail, &b.IsMemberOfClub, &payment,
		&b.ParticipationConsent, &b.LiabilityAcknowledged, &b.PhotoConsent, &b.DataConsent, &b.BookingConfirmation,
		&b.Meta.IP, &b.Meta.UserAgent, &b.Meta.Host, &metaTime,
	)
	if err != nil {
		return nil, err
	}

	b.PaymentMethod = model.PaymentMethod(payment)
	if confirmedAt.Valid {
		t := confirmedAt.Time
		b.ConfirmedAt = &t
	}
	if metaTime.Valid {
		b.Meta.Time = metaTime.Time
	}
	b.SwimExperienceDetails = nullableString(swimDetails)
	b.HealthNotes = nullableString(healthNotes)
	b.ParentPhone = nullableString(parentPhone)
	return &b, nil
}

// GenerateToken returns 16 random bytes encoded as 32 lowercase hex characters.
func GenerateToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Create inserts a pending booking. It assigns ID and CreatedAt, and a fresh
// confirmation token when none is set.
func (s *BookingStore) Create(ctx context.Context, b *model.Booking) error {
	if b.ConfirmationToken == "" {
		token, err := GenerateToken()
		if err != nil {
			return err
		}
		b.ConfirmationToken = token
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO bookings (confirmation_token, created_at, confirmed_at, course_period, desired_time_slot,
			child_name, child_birthdate, child_address, has_swim_experience, swim_experience_details, health_notes,
			may_swim_without_aid, parent_name, parent_phone, parent_email, is_member_of_club, payment_method,
			participation_consent, liability_acknowledged, photo_consent, data_consent, booking_confirmation,
			meta_ip, meta_user_agent, meta_host, meta_time)
		VALUES (?, ?, NULL, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ConfirmationToken, b.CreatedAt, b.CoursePeriod, b.DesiredTimeSlot,
		b.ChildName, b.ChildBirthdate, b.ChildAddress, b.HasSwimExperience, b.SwimExperienceDetails, b.HealthNotes,
		b.MaySwimWithoutAid, b.ParentName, b.ParentPhone, b.ParentEmail, b.IsMemberOfClub, string(b.PaymentMethod),
		b.ParticipationConsent, b.LiabilityAcknowledged, b.PhotoConsent, b.DataConsent, b.BookingConfirmation,
		b.Meta.IP, b.Meta.UserAgent, b.Meta.Host, nullTime(b.Meta.Time),
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	b.ID = id
	b.ConfirmedAt = nil
	return nil
}

// Update rewrites the user-supplied fields and meta of a pending booking.
// Token, creation time and confirmation state are left untouched.
func (s *BookingStore) Update(ctx context.Context, b *model.Booking) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE bookings SET course_period = ?, desired_time_slot = ?, child_name = ?, child_birthdate = ?,
			child_address = ?, has_swim_experience = ?, swim_experience_details = ?, health_notes = ?,
			may_swim_without_aid = ?, parent_name = ?, parent_phone = ?, parent_email = ?, is_member_of_club = ?,
			payment_method = ?, participation_consent = ?, liability_acknowledged = ?, photo_consent = ?,
			data_consent = ?, booking_confirmation = ?, meta_ip = ?, meta_user_agent = ?, meta_host = ?, meta_time = ?
		WHERE id = ? AND confirmed_at IS NULL`,
		b.CoursePeriod, b.DesiredTimeSlot, b.ChildName, b.ChildBirthdate,
		b.ChildAddress, b.HasSwimExperience, b.SwimExperienceDetails, b.HealthNotes,
		b.MaySwimWithoutAid, b.ParentName, b.ParentPhone, b.ParentEmail, b.IsMemberOfClub,
		string(b.PaymentMethod), b.ParticipationConsent, b.LiabilityAcknowledged, b.PhotoConsent,
		b.DataConsent, b.BookingConfirmation, b.Meta.IP, b.Meta.UserAgent, b.Meta.Host, nullTime(b.Meta.Time),
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BookingStore) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookingCols+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get booking by id: %w", err)
	}
	return b, nil
}

// GetByToken returns the booking for the given confirmation token, or nil if not found.
func (s *BookingStore) GetByToken(ctx context.Context, token string) (*model.Booking, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookingCols+` FROM bookings WHERE confirmation_token = ?`, token)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get booking by token: %w", err)
	}
	return b, nil
}

// MarkConfirmed sets confirmed_at if it is still unset. It reports false when
// the booking was already confirmed, so two concurrent confirmations of the
// same link transition the record exactly once.
func (s *BookingStore) MarkConfirmed(ctx context.Context, id int64, at time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE bookings SET confirmed_at = ? WHERE id = ? AND confirmed_at IS NULL`,
		at.UTC(), id,
	)
	if err != nil {
		return false, fmt.Errorf("mark booking confirmed: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// List returns the most recent bookings first. A limit <= 0 returns all rows.
func (s *BookingStore) List(ctx context.Context, limit int) ([]model.Booking, error) {
	query := `SELECT ` + bookingCols + ` FROM bookings ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (s *BookingStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return count, nil
}
