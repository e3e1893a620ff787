package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/swimschool/internal/model"
)

type ContactStore struct {
	db *sql.DB
}

func NewContactStore(db *sql.DB) *ContactStore {
	return &ContactStore{db: db}
}

const contactCols = `id, name, email, phone, message, consent, send_copy, created_at, meta_ip, meta_user_agent, meta_host, meta_time`

func scanContact(scanner interface{ Scan(...any) error }) (*model.Contact, error) {
	var c model.Contact
	var metaTime sql.NullTime
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Message, &c.Consent, &c.Copy, &c.CreatedAt,
		&c.Meta.IP, &c.Meta.UserAgent, &c.Meta.Host, &metaTime,
	)
	if err != nil {
		return nil, err
	}
	if metaTime.Valid {
		c.Meta.Time = metaTime.Time
	}
	return &c, nil
}

func (s *ContactStore) Create(ctx context.Context, c *model.Contact) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO contacts (name, email, phone, message, consent, send_copy, created_at, meta_ip, meta_user_agent, meta_host, meta_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Email, c.Phone, c.Message, c.Consent, c.Copy, c.CreatedAt,
		c.Meta.IP, c.Meta.UserAgent, c.Meta.Host, nullTime(c.Meta.Time),
	)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	c.ID = id
	return nil
}

// Update rewrites a previously stored contact request, used when the sender
// retries after a failed mail dispatch.
func (s *ContactStore) Update(ctx context.Context, c *model.Contact) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE contacts SET name = ?, email = ?, phone = ?, message = ?, consent = ?, send_copy = ?,
			meta_ip = ?, meta_user_agent = ?, meta_host = ?, meta_time = ?
		WHERE id = ?`,
		c.Name, c.Email, c.Phone, c.Message, c.Consent, c.Copy,
		c.Meta.IP, c.Meta.UserAgent, c.Meta.Host, nullTime(c.Meta.Time),
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
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

func (s *ContactStore) GetByID(ctx context.Context, id int64) (*model.Contact, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+contactCols+` FROM contacts WHERE id = ?`, id)
	c, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get contact by id: %w", err)
	}
	return c, nil
}

// List returns contact requests newest first. A limit <= 0 returns all rows.
func (s *ContactStore) List(ctx context.Context, limit int) ([]model.Contact, error) {
	query := `SELECT ` + contactCols + ` FROM contacts ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

func (s *ContactStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return count, nil
}
