package model

import "time"

type Contact struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	Message   string         `json:"message"`
	Consent   bool           `json:"consent"`
	Copy      bool           `json:"copy"`
	CreatedAt time.Time      `json:"created_at"`
	Meta      SubmissionMeta `json:"meta"`
}
