// ABOUTME: Tests for collaborator form validation
// ABOUTME: Checks each field rule and the whole-record validators

package directory

import (
	"strings"
	"testing"

	"github.com/EdwinJoye/cda31-dev3-frontend/internal/client"
)

func TestFieldValidators(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(string) error
		input   string
		wantErr bool
	}{
		{"name ok", ValidateName, "Al", false},
		{"name short", ValidateName, "A", true},
		{"name spaces only", ValidateName, "  ", true},
		{"email ok", ValidateEmail, "a@b", false},
		{"email missing at", ValidateEmail, "ab.com", true},
		{"email with space", ValidateEmail, "a b@c.d", true},
		{"password ok", ValidatePassword, "secret", false},
		{"password short", ValidatePassword, "12345", true},
		{"optional password empty", ValidateOptionalPassword, "", false},
		{"optional password short", ValidateOptionalPassword, "123", true},
		{"phone empty", ValidatePhone, "", false},
		{"phone ok", ValidatePhone, "0601020304", false},
		{"phone short", ValidatePhone, "060102", true},
		{"birthdate ok", ValidateBirthdate, "1990-04-12", false},
		{"birthdate empty", ValidateBirthdate, "", true},
		{"birthdate format", ValidateBirthdate, "12/04/1990", true},
		{"place empty", ValidatePlace, "", false},
		{"place short", ValidatePlace, "X", true},
		{"place ok", ValidatePlace, "Lyon", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.fn(tc.input)
			if (err != nil) != tc.wantErr {
				t.Errorf("expected error=%v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestValidateEmail_StripsControlCharacters(t *testing.T) {
	err := ValidateEmail("bad\nvalue")
	if err == nil || strings.Contains(err.Error(), "\n") {
		t.Errorf("expected sanitized error, got %q", err)
	}
}

func validInput() client.UserInput {
	return client.UserInput{
		Gender:    client.GenderFemale,
		FirstName: "Dana",
		LastName:  "Scully",
		Email:     "dana@example.com",
		Password:  "secret1",
		Birthdate: "1964-02-23",
		Category:  client.CategoryTechnique,
	}
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*client.UserInput)
		field  string
	}{
		{"valid", func(*client.UserInput) {}, ""},
		{"short first name", func(in *client.UserInput) { in.FirstName = "D" }, "firstname"},
		{"bad email", func(in *client.UserInput) { in.Email = "nope" }, "email"},
		{"short password", func(in *client.UserInput) { in.Password = "abc" }, "password"},
		{"missing birthdate", func(in *client.UserInput) { in.Birthdate = "" }, "birthdate"},
		{"bad gender", func(in *client.UserInput) { in.Gender = "robot" }, "gender"},
		{"bad category", func(in *client.UserInput) { in.Category = "Sales" }, "category"},
		{"empty category allowed", func(in *client.UserInput) { in.Category = "" }, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			err := ValidateInput(in)
			if tc.field == "" {
				if err != nil {
					t.Errorf("expected valid, got %v", err)
				}
				return
			}
			if err == nil || !strings.HasPrefix(err.Error(), tc.field+":") {
				t.Errorf("expected %s error, got %v", tc.field, err)
			}
		})
	}
}

func TestValidatePatch(t *testing.T) {
	short := "X"
	good := "Lyon"
	badGender := client.Gender("robot")

	if err := ValidatePatch(client.UserPatch{}); err != nil {
		t.Errorf("empty patch should be valid, got %v", err)
	}
	if err := ValidatePatch(client.UserPatch{City: &good}); err != nil {
		t.Errorf("expected valid city, got %v", err)
	}
	if err := ValidatePatch(client.UserPatch{City: &short}); err == nil {
		t.Error("expected short city to fail")
	}
	if err := ValidatePatch(client.UserPatch{Gender: &badGender}); err == nil {
		t.Error("expected bad gender to fail")
	}
}
