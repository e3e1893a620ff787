package form

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/dukerupert/swimschool/internal/model"
)

// BookingForm is the raw booking submission as typed by the parent. Yes/no
// questions stay strings so an unanswered radio group can be told apart
// from "no".
type BookingForm struct {
	DesiredTimeSlot       string `form:"desiredTimeSlot" json:"desiredTimeSlot" validate:"required"`
	ChildName             string `form:"childName" json:"childName" validate:"required,max=160"`
	ChildBirthdate        string `form:"childBirthdate" json:"childBirthdate" validate:"required,datetime=2006-01-02,notfuture"`
	ChildAddress          string `form:"childAddress" json:"childAddress" validate:"required,min=5,max=1000"`
	HasSwimExperience     string `form:"hasSwimExperience" json:"hasSwimExperience" validate:"required,oneof=yes no"`
	SwimExperienceDetails string `form:"swimExperienceDetails" json:"swimExperienceDetails" validate:"max=500"`
	HealthNotes           string `form:"healthNotes" json:"healthNotes" validate:"max=5000"`
	MaySwimWithoutAid     string `form:"maySwimWithoutAid" json:"maySwimWithoutAid" validate:"required,oneof=yes no"`
	ParentName            string `form:"parentName" json:"parentName" validate:"required,max=160"`
	ParentPhone           string `form:"parentPhone" json:"parentPhone" validate:"max=40"`
	ParentEmail           string `form:"parentEmail" json:"parentEmail" validate:"required,email,max=200"`
	IsMemberOfClub        string `form:"isMemberOfClub" json:"isMemberOfClub" validate:"required,oneof=yes no"`
	PaymentMethod         string `form:"paymentMethod" json:"paymentMethod" validate:"required,oneof=cash bank_transfer paypal"`
	ParticipationConsent  bool   `form:"participationConsent" json:"participationConsent" validate:"eq=true"`
	LiabilityAcknowledged bool   `form:"liabilityAcknowledged" json:"liabilityAcknowledged" validate:"eq=true"`
	PhotoConsent          bool   `form:"photoConsent" json:"photoConsent"`
	DataConsent           bool   `form:"dataConsent" json:"dataConsent" validate:"eq=true"`
	BookingConfirmation   bool   `form:"bookingConfirmation" json:"bookingConfirmation" validate:"eq=true"`
}

func BindBooking(values url.Values) BookingForm {
	get := func(k string) string { return strings.TrimSpace(values.Get(k)) }
	return BookingForm{
		DesiredTimeSlot:       get("desiredTimeSlot"),
		ChildName:             get("childName"),
		ChildBirthdate:        get("childBirthdate"),
		ChildAddress:          get("childAddress"),
		HasSwimExperience:     get("hasSwimExperience"),
		SwimExperienceDetails: get("swimExperienceDetails"),
		HealthNotes:           get("healthNotes"),
		MaySwimWithoutAid:     get("maySwimWithoutAid"),
		ParentName:            get("parentName"),
		ParentPhone:           get("parentPhone"),
		ParentEmail:           get("parentEmail"),
		IsMemberOfClub:        get("isMemberOfClub"),
		PaymentMethod:         get("paymentMethod"),
		ParticipationConsent:  checked(values, "participationConsent"),
		LiabilityAcknowledged: checked(values, "liabilityAcknowledged"),
		PhotoConsent:          checked(values, "photoConsent"),
		DataConsent:           checked(values, "dataConsent"),
		BookingConfirmation:   checked(values, "bookingConfirmation"),
	}
}

// Validate checks the struct constraints and that the time slot is one of
// the configured slots.
func (f BookingForm) Validate(slots []string) FieldErrors {
	errs := validateStruct(f)
	if f.DesiredTimeSlot != "" && len(slots) > 0 && !slices.Contains(slots, f.DesiredTimeSlot) {
		errs = append(errs, FieldError{
			Field:   "desiredTimeSlot",
			Rule:    "oneof",
			Message: "Please choose one of the offered time slots.",
		})
	}
	return errs
}

// Booking maps a validated form to a new pending record for coursePeriod.
func (f BookingForm) Booking(coursePeriod string) (*model.Booking, error) {
	birthdate, err := time.Parse(dateLayout, f.ChildBirthdate)
	if err != nil {
		return nil, fmt.Errorf("parse birthdate: %w", err)
	}
	return &model.Booking{
		CoursePeriod:          coursePeriod,
		DesiredTimeSlot:       f.DesiredTimeSlot,
		ChildName:             f.ChildName,
		ChildBirthdate:        birthdate,
		ChildAddress:          f.ChildAddress,
		HasSwimExperience:     f.HasSwimExperience == "yes",
		SwimExperienceDetails: optional(f.SwimExperienceDetails),
		HealthNotes:           optional(f.HealthNotes),
		MaySwimWithoutAid:     f.MaySwimWithoutAid == "yes",
		ParentName:            f.ParentName,
		ParentPhone:           optional(f.ParentPhone),
		ParentEmail:           f.ParentEmail,
		IsMemberOfClub:        f.IsMemberOfClub == "yes",
		PaymentMethod:         model.PaymentMethod(f.PaymentMethod),
		ParticipationConsent:  f.ParticipationConsent,
		LiabilityAcknowledged: f.LiabilityAcknowledged,
		PhotoConsent:          f.PhotoConsent,
		DataConsent:           f.DataConsent,
		BookingConfirmation:   f.BookingConfirmation,
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
