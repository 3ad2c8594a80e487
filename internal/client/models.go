// ABOUTME: Directory entry and authentication models for the intranet API
// ABOUTME: Mirrors the JSON contract of the remote collaborator endpoints

package client

import "strings"

// Gender of a directory entry
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Genders lists the accepted gender values in display order
var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

// Category is the department a directory entry belongs to
type Category string

const (
	CategoryMarketing Category = "Marketing"
	CategoryClient    Category = "Client"
	CategoryTechnique Category = "Technique"
)

// Categories lists the accepted categories in display order
var Categories = []Category{CategoryMarketing, CategoryClient, CategoryTechnique}

// ParseCategory returns the category matching s (case-insensitive)
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// ParseGender returns the gender matching s (case-insensitive)
func ParseGender(s string) (Gender, bool) {
	for _, g := range Genders {
		if strings.EqualFold(string(g), s) {
			return g, true
		}
	}
	return "", false
}

// User is a collaborator record in the administrative directory.
// Optional attributes are empty strings when the API sends null.
type User struct {
	ID        int      `json:"id"`
	Gender    Gender   `json:"gender"`
	FirstName string   `json:"firstname"`
	LastName  string   `json:"lastname"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone,omitempty"`
	Birthdate string   `json:"birthdate,omitempty"`
	City      string   `json:"city,omitempty"`
	Country   string   `json:"country,omitempty"`
	Photo     string   `json:"photo,omitempty"`
	Category  Category `json:"category,omitempty"`
	IsAdmin   bool     `json:"isAdmin"`
}

// FullName returns "first last"
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserInput is the body submitted to create a collaborator
type UserInput struct {
	Gender    Gender   `json:"gender"`
	FirstName string   `json:"firstname"`
	LastName  string   `json:"lastname"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Phone     string   `json:"phone,omitempty"`
	Birthdate string   `json:"birthdate,omitempty"`
	City      string   `json:"city,omitempty"`
	Country   string   `json:"country,omitempty"`
	Photo     string   `json:"photo,omitempty"`
	Category  Category `json:"category,omitempty"`
	IsAdmin   bool     `json:"isAdmin"`
}

// UserPatch is a partial update. Nil fields are not sent and are left
// untouched when merged into a local record.
type UserPatch struct {
	Gender    *Gender   `json:"gender,omitempty"`
	FirstName *string   `json:"firstname,omitempty"`
	LastName  *string   `json:"lastname,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Password  *string   `json:"password,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Birthdate *string   `json:"birthdate,omitempty"`
	City      *string   `json:"city,omitempty"`
	Country   *string   `json:"country,omitempty"`
	Photo     *string   `json:"photo,omitempty"`
	Category  *Category `json:"category,omitempty"`
	IsAdmin   *bool     `json:"isAdmin,omitempty"`
}

// IsEmpty reports whether the patch carries no field at all
func (p UserPatch) IsEmpty() bool {
	return p.Gender == nil && p.FirstName == nil && p.LastName == nil &&
		p.Email == nil && p.Password == nil && p.Phone == nil &&
		p.Birthdate == nil && p.City == nil && p.Country == nil &&
		p.Photo == nil && p.Category == nil && p.IsAdmin == nil
}

// Apply returns u with every field present in p overwritten.
// Password is write-only and never stored locally.
func (u User) Apply(p UserPatch) User {
	if p.Gender != nil {
		u.Gender = *p.Gender
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Birthdate != nil {
		u.Birthdate = *p.Birthdate
	}
	if p.City != nil {
		u.City = *p.City
	}
	if p.Country != nil {
		u.Country = *p.Country
	}
	if p.Photo != nil {
		u.Photo = *p.Photo
	}
	if p.Category != nil {
		u.Category = *p.Category
	}
	if p.IsAdmin != nil {
		u.IsAdmin = *p.IsAdmin
	}
	return u
}

// Credentials are posted to both login endpoints
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
