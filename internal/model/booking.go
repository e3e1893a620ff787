package model

import "time"

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentPayPal       PaymentMethod = "paypal"
)

// Label returns the human-readable name used in emails and exports.
func (p PaymentMethod) Label() string {
	switch p {
	case PaymentCash:
		return "Cash"
	case PaymentBankTransfer:
		return "Bank transfer"
	case PaymentPayPal:
		return "PayPal"
	default:
		return string(p)
	}
}

// SubmissionMeta is captured server-side when a submission is persisted.
type SubmissionMeta struct {
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Host      string    `json:"host"`
	Time      time.Time `json:"time"`
}

type Booking struct {
	ID                int64      `json:"id"`
	ConfirmationToken string     `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	ConfirmedAt       *time.Time `json:"confirmed_at"`

	CoursePeriod    string `json:"course_period"`
	DesiredTimeSlot string `json:"desired_time_slot"`

	ChildName             string    `json:"child_name"`
	ChildBirthdate        time.Time `json:"child_birthdate"`
	ChildAddress          string    `json:"child_address"`
	HasSwimExperience     bool      `json:"has_swim_experience"`
	SwimExperienceDetails *string   `json:"swim_experience_details"`
	HealthNotes           *string   `json:"health_notes"`
	MaySwimWithoutAid     bool      `json:"may_swim_without_aid"`

	ParentName  string  `json:"parent_name"`
	ParentPhone *string `json:"parent_phone"`
	ParentEmail string  `json:"parent_email"`

	IsMemberOfClub bool          `json:"is_member_of_club"`
	PaymentMethod  PaymentMethod `json:"payment_method"`

	ParticipationConsent  bool `json:"participation_consent"`
	LiabilityAcknowledged bool `json:"liability_acknowledged"`
	PhotoConsent          bool `json:"photo_consent"`
	DataConsent           bool `json:"data_consent"`
	BookingConfirmation   bool `json:"booking_confirmation"`

	Meta SubmissionMeta `json:"meta"`
}

func (b *Booking) IsConfirmed() bool {
	return b.ConfirmedAt != nil
}

// ConfirmStatus is the result of visiting a confirmation link.
type ConfirmStatus string

const (
	ConfirmOK       ConfirmStatus = "ok"
	ConfirmAlready  ConfirmStatus = "already"
	ConfirmNotFound ConfirmStatus = "notfound"
)
