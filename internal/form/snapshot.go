package form

import (
	"time"

	"github.com/dukerupert/swimschool/internal/model"
)

// BookingSnapshot is the typed summary of an accepted booking, shown once on
// the success page. It carries every user-entered field but no identity,
// token or meta data.
type BookingSnapshot struct {
	CoursePeriod          string              `json:"coursePeriod"`
	DesiredTimeSlot       string              `json:"desiredTimeSlot"`
	ChildName             string              `json:"childName"`
	ChildBirthdate        time.Time           `json:"childBirthdate"`
	ChildAddress          string              `json:"childAddress"`
	HasSwimExperience     bool                `json:"hasSwimExperience"`
	SwimExperienceDetails *string             `json:"swimExperienceDetails,omitempty"`
	HealthNotes           *string             `json:"healthNotes,omitempty"`
	MaySwimWithoutAid     bool                `json:"maySwimWithoutAid"`
	ParentName            string              `json:"parentName"`
	ParentPhone           *string             `json:"parentPhone,omitempty"`
	ParentEmail           string              `json:"parentEmail"`
	IsMemberOfClub        bool                `json:"isMemberOfClub"`
	PaymentMethod         model.PaymentMethod `json:"paymentMethod"`
	ParticipationConsent  bool                `json:"participationConsent"`
	LiabilityAcknowledged bool                `json:"liabilityAcknowledged"`
	PhotoConsent          bool                `json:"photoConsent"`
	DataConsent           bool                `json:"dataConsent"`
	BookingConfirmation   bool                `json:"bookingConfirmation"`
}

func NewBookingSnapshot(b *model.Booking) BookingSnapshot {
	return BookingSnapshot{
		CoursePeriod:          b.CoursePeriod,
		DesiredTimeSlot:       b.DesiredTimeSlot,
		ChildName:             b.ChildName,
		ChildBirthdate:        b.ChildBirthdate,
		ChildAddress:          b.ChildAddress,
		HasSwimExperience:     b.HasSwimExperience,
		SwimExperienceDetails: copyString(b.SwimExperienceDetails),
		HealthNotes:           copyString(b.HealthNotes),
		MaySwimWithoutAid:     b.MaySwimWithoutAid,
		ParentName:            b.ParentName,
		ParentPhone:           copyString(b.ParentPhone),
		ParentEmail:           b.ParentEmail,
		IsMemberOfClub:        b.IsMemberOfClub,
		PaymentMethod:         b.PaymentMethod,
		ParticipationConsent:  b.ParticipationConsent,
		LiabilityAcknowledged: b.LiabilityAcknowledged,
		PhotoConsent:          b.PhotoConsent,
		DataConsent:           b.DataConsent,
		BookingConfirmation:   b.BookingConfirmation,
	}
}

// Booking rebuilds a record from the snapshot. ID, token, timestamps and
// meta are left zero.
func (s BookingSnapshot) Booking() *model.Booking {
	return &model.Booking{
		CoursePeriod:          s.CoursePeriod,
		DesiredTimeSlot:       s.DesiredTimeSlot,
		ChildName:             s.ChildName,
		ChildBirthdate:        s.ChildBirthdate,
		ChildAddress:          s.ChildAddress,
		HasSwimExperience:     s.HasSwimExperience,
		SwimExperienceDetails: copyString(s.SwimExperienceDetails),
		HealthNotes:           copyString(s.HealthNotes),
		MaySwimWithoutAid:     s.MaySwimWithoutAid,
		ParentName:            s.ParentName,
		ParentPhone:           copyString(s.ParentPhone),
		ParentEmail:           s.ParentEmail,
		IsMemberOfClub:        s.IsMemberOfClub,
		PaymentMethod:         s.PaymentMethod,
		ParticipationConsent:  s.ParticipationConsent,
		LiabilityAcknowledged: s.LiabilityAcknowledged,
		PhotoConsent:          s.PhotoConsent,
		DataConsent:           s.DataConsent,
		BookingConfirmation:   s.BookingConfirmation,
	}
}

// Form returns the snapshot as raw form input, for refilling the form.
func (s BookingSnapshot) Form() BookingForm {
	return BookingForm{
		DesiredTimeSlot:       s.DesiredTimeSlot,
		ChildName:             s.ChildName,
		ChildBirthdate:        s.ChildBirthdate.Format(dateLayout),
		ChildAddress:          s.ChildAddress,
		HasSwimExperience:     yesNo(s.HasSwimExperience),
		SwimExperienceDetails: deref(s.SwimExperienceDetails),
		HealthNotes:           deref(s.HealthNotes),
		MaySwimWithoutAid:     yesNo(s.MaySwimWithoutAid),
		ParentName:            s.ParentName,
		ParentPhone:           deref(s.ParentPhone),
		ParentEmail:           s.ParentEmail,
		IsMemberOfClub:        yesNo(s.IsMemberOfClub),
		PaymentMethod:         string(s.PaymentMethod),
		ParticipationConsent:  s.ParticipationConsent,
		LiabilityAcknowledged: s.LiabilityAcknowledged,
		PhotoConsent:          s.PhotoConsent,
		DataConsent:           s.DataConsent,
		BookingConfirmation:   s.BookingConfirmation,
	}
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
