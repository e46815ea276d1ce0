// Package forms holds the signup and role-picker form models and their
// pre-submission checks. The identity provider remains the authority on
// credentials; these checks only spare a round trip.
package forms

import (
	"errors"
	"net/http"
	"strings"

	"github.com/hongminglow/afriglobal-be/internal/models"
)

var (
	ErrPasswordMismatch = errors.New("Passwords do not match")
	ErrTermsNotAccepted = errors.New("Please accept the terms and conditions")
)

// SignupForm is the data entered on the signup page.
type SignupForm struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
	Terms           bool
}

// ParseSignupForm reads a SignupForm from a submitted request.
func ParseSignupForm(r *http.Request) (SignupForm, error) {
	if err := r.ParseForm(); err != nil {
		return SignupForm{}, err
	}
	return SignupForm{
		FullName:        strings.TrimSpace(r.PostFormValue("fullName")),
		Email:           strings.TrimSpace(r.PostFormValue("email")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
		Terms:           checked(r.PostFormValue("terms")),
	}, nil
}

// Validate runs the password-confirmation check and then the terms check,
// returning the first failure.
func (f SignupForm) Validate() error {
	if f.Password != f.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if !f.Terms {
		return ErrTermsNotAccepted
	}
	return nil
}

func checked(v string) bool {
	switch strings.ToLower(v) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// RoleForm is the state of the role picker.
type RoleForm struct {
	Selected string
	Options  []models.RoleOption
}

// NewRoleForm returns the picker with selected pre-chosen, or the default role
// when selected is not a valid role.
func NewRoleForm(selected string) RoleForm {
	if !models.ValidRole(selected) {
		selected = models.DefaultRole
	}
	return RoleForm{Selected: selected, Options: models.Roles}
}

// SelectedTitle returns the display title of the selected role.
func (f RoleForm) SelectedTitle() string {
	for _, o := range f.Options {
		if o.ID == f.Selected {
			return o.Title
		}
	}
	return ""
}
