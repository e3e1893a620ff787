package form

import (
	"net/url"
	"strings"

	"github.com/dukerupert/swimschool/internal/model"
)

// ContactForm is the raw contact submission. It doubles as the session
// snapshot used to refill the form after an error redirect.
type ContactForm struct {
	Name    string `form:"name" json:"name" validate:"required,max=120"`
	Email   string `form:"email" json:"email" validate:"required,email,max=200"`
	Phone   string `form:"phone" json:"phone" validate:"max=40"`
	Message string `form:"message" json:"message" validate:"required,min=10,max=5000"`
	Consent bool   `form:"consent" json:"consent" validate:"eq=true"`
	Copy    bool   `form:"copy" json:"copy"`
}

func BindContact(values url.Values) ContactForm {
	return ContactForm{
		Name:    strings.TrimSpace(values.Get("name")),
		Email:   strings.TrimSpace(values.Get("email")),
		Phone:   strings.TrimSpace(values.Get("phone")),
		Message: strings.TrimSpace(values.Get("message")),
		Consent: checked(values, "consent"),
		Copy:    checked(values, "copy"),
	}
}

func (f ContactForm) Validate() FieldErrors {
	return validateStruct(f)
}

// Contact maps a validated form to a new record.
func (f ContactForm) Contact() *model.Contact {
	return &model.Contact{
		Name:    f.Name,
		Email:   f.Email,
		Phone:   f.Phone,
		Message: f.Message,
		Consent: f.Consent,
		Copy:    f.Copy,
	}
}

func checked(values url.Values, key string) bool {
	switch strings.ToLower(strings.TrimSpace(values.Get(key))) {
	case "", "0", "false", "off", "no":
		return false
	default:
		return true
	}
}
