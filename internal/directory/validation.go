// ABOUTME: Field validation for the collaborator create and edit forms
// ABOUTME: Validators match huh's func(string) error signature

package directory

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/EdwinJoye/cda31-dev3-frontend/internal/client"
)

// BirthdateLayout is the date format the API exchanges
const BirthdateLayout = "2006-01-02"

// emailPattern is deliberately loose: something@something without spaces
var emailPattern = regexp.MustCompile(`^\S+@\S+$`)

// sanitizeForMessage removes control characters from user input echoed in errors
func sanitizeForMessage(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}

// ValidateName requires at least two characters
func ValidateName(s string) error {
	if len([]rune(strings.TrimSpace(s))) < 2 {
		return errors.New("minimum 2 characters")
	}
	return nil
}

// ValidateEmail checks the value looks like an address
func ValidateEmail(s string) error {
	if !emailPattern.MatchString(s) {
		return fmt.Errorf("invalid email: %s", sanitizeForMessage(s))
	}
	return nil
}

// ValidatePassword requires six characters
func ValidatePassword(s string) error {
	if len([]rune(s)) < 6 {
		return errors.New("minimum 6 characters")
	}
	return nil
}

// ValidateOptionalPassword accepts empty, for edits that keep the password
func ValidateOptionalPassword(s string) error {
	if s == "" {
		return nil
	}
	return ValidatePassword(s)
}

// ValidatePhone accepts empty or at least ten characters
func ValidatePhone(s string) error {
	if s != "" && len([]rune(s)) < 10 {
		return errors.New("invalid phone number")
	}
	return nil
}

// ValidateBirthdate requires a YYYY-MM-DD date
func ValidateBirthdate(s string) error {
	if s == "" {
		return errors.New("birthdate is required")
	}
	if _, err := time.Parse(BirthdateLayout, s); err != nil {
		return fmt.Errorf("birthdate must be YYYY-MM-DD: %s", sanitizeForMessage(s))
	}
	return nil
}

// ValidatePlace accepts empty or at least two characters, for city and country
func ValidatePlace(s string) error {
	if s != "" && len([]rune(s)) < 2 {
		return errors.New("minimum 2 characters")
	}
	return nil
}

// ValidateInput checks a create request, returning the first failing field
func ValidateInput(in client.UserInput) error {
	checks := []struct {
		field string
		err   error
	}{
		{"firstname", ValidateName(in.FirstName)},
		{"lastname", ValidateName(in.LastName)},
		{"email", ValidateEmail(in.Email)},
		{"password", ValidatePassword(in.Password)},
		{"phone", ValidatePhone(in.Phone)},
		{"birthdate", ValidateBirthdate(in.Birthdate)},
		{"city", ValidatePlace(in.City)},
		{"country", ValidatePlace(in.Country)},
	}
	for _, c := range checks {
		if c.err != nil {
			return fmt.Errorf("%s: %w", c.field, c.err)
		}
	}
	if _, ok := client.ParseGender(string(in.Gender)); !ok {
		return fmt.Errorf("gender: must be male, female or other")
	}
	if in.Category != "" {
		if _, ok := client.ParseCategory(string(in.Category)); !ok {
			return fmt.Errorf("category: must be Marketing, Client or Technique")
		}
	}
	return nil
}

// ValidatePatch checks only the fields present in a partial update
func ValidatePatch(p client.UserPatch) error {
	type check struct {
		field string
		value *string
		fn    func(string) error
	}
	for _, c := range []check{
		{"firstname", p.FirstName, ValidateName},
		{"lastname", p.LastName, ValidateName},
		{"email", p.Email, ValidateEmail},
		{"password", p.Password, ValidatePassword},
		{"phone", p.Phone, ValidatePhone},
		{"birthdate", p.Birthdate, ValidateBirthdate},
		{"city", p.City, ValidatePlace},
		{"country", p.Country, ValidatePlace},
	} {
		if c.value == nil {
			continue
		}
		if err := c.fn(*c.value); err != nil {
			return fmt.Errorf("%s: %w", c.field, err)
		}
	}
	if p.Gender != nil {
		if _, ok := client.ParseGender(string(*p.Gender)); !ok {
			return fmt.Errorf("gender: must be male, female or other")
		}
	}
	if p.Category != nil {
		if _, ok := client.ParseCategory(string(*p.Category)); !ok {
			return fmt.Errorf("category: must be Marketing, Client or Technique")
		}
	}
	return nil
}
