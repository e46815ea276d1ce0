package forms

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupForm_Validate(t *testing.T) {
	valid := SignupForm{FullName: "Ada", Email: "ada@example.com", Password: "pw", ConfirmPassword: "pw", Terms: true}

	tests := []struct {
		name   string
		mutate func(*SignupForm)
		want   error
	}{
		{"valid", func(*SignupForm) {}, nil},
		{"mismatch", func(f *SignupForm) { f.ConfirmPassword = "other" }, ErrPasswordMismatch},
		{"terms", func(f *SignupForm) { f.Terms = false }, ErrTermsNotAccepted},
		{"mismatch reported first", func(f *SignupForm) { f.ConfirmPassword = "other"; f.Terms = false }, ErrPasswordMismatch},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := valid
			tc.mutate(&f)
			assert.Equal(t, tc.want, f.Validate())
		})
	}
}

func TestParseSignupForm(t *testing.T) {
	form := url.Values{
		"fullName":        {"  Ada Obi "},
		"email":           {"ada@example.com "},
		"password":        {" pw "},
		"confirmPassword": {" pw "},
		"terms":           {"on"},
	}
	req := httptest.NewRequest(http.MethodPost, "/sign-up", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	f, err := ParseSignupForm(req)
	require.NoError(t, err)
	assert.Equal(t, "Ada Obi", f.FullName)
	assert.Equal(t, "ada@example.com", f.Email)
	assert.Equal(t, " pw ", f.Password)
	assert.True(t, f.Terms)
}

func TestNewRoleForm(t *testing.T) {
	f := NewRoleForm("")
	assert.Equal(t, "investor", f.Selected)
	assert.Equal(t, "Investor/Buyer", f.SelectedTitle())
	assert.Len(t, f.Options, 2)

	f = NewRoleForm("exporter")
	assert.Equal(t, "Exporter", f.SelectedTitle())

	assert.Equal(t, "investor", NewRoleForm("admin").Selected)
}
