// ABOUTME: Create and edit form for a collaborator as a bubbletea model
// ABOUTME: Emits a full input on create and only the changed fields on edit

package userform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/EdwinJoye/cda31-dev3-frontend/internal/client"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/directory"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/tui/styles"
)

// SubmittedMsg carries the form result. Exactly one of Input and Patch is set.
type SubmittedMsg struct {
	ID    int
	Input *client.UserInput
	Patch *client.UserPatch
}

// CancelledMsg is sent when the form is abandoned
type CancelledMsg struct{}

// values holds every field as huh edits it
type values struct {
	gender    string
	firstName string
	lastName  string
	email     string
	password  string
	phone     string
	birthdate string
	city      string
	country   string
	photo     string
	category  string
	admin     bool
}

func fromUser(u client.User) values {
	return values{
		gender:    string(u.Gender),
		firstName: u.FirstName,
		lastName:  u.LastName,
		email:     u.Email,
		phone:     u.Phone,
		birthdate: u.Birthdate,
		city:      u.City,
		country:   u.Country,
		photo:     u.Photo,
		category:  string(u.Category),
		admin:     u.IsAdmin,
	}
}

// UserForm edits one collaborator
type UserForm struct {
	form      *huh.Form
	original  *client.User
	v         values
	canAdmin  bool
	width     int
	submitted bool
}

// NewCreate builds an empty form. canAdmin shows the administrator toggle.
func NewCreate(canAdmin bool) *UserForm {
	f := &UserForm{
		v:        values{gender: string(client.GenderMale), category: string(client.CategoryClient)},
		canAdmin: canAdmin,
	}
	f.form = f.build()
	return f
}

// NewEdit builds a form prefilled from u
func NewEdit(u client.User, canAdmin bool) *UserForm {
	f := &UserForm{
		original: &u,
		v:        fromUser(u),
		canAdmin: canAdmin,
	}
	f.form = f.build()
	return f
}

// Editing reports whether the form updates an existing collaborator
func (f *UserForm) Editing() bool {
	return f.original != nil
}

func (f *UserForm) build() *huh.Form {
	title := "New collaborator"
	passwordCheck := directory.ValidatePassword
	passwordHint := ""
	if f.original != nil {
		title = fmt.Sprintf("Edit %s", f.original.FullName())
		passwordCheck = directory.ValidateOptionalPassword
		passwordHint = "Leave empty to keep the current password"
	}

	identity := []huh.Field{
		huh.NewSelect[string]().Title("Gender").Options(genderOptions()...).Value(&f.v.gender),
		huh.NewInput().Title("First name").Value(&f.v.firstName).Validate(directory.ValidateName),
		huh.NewInput().Title("Last name").Value(&f.v.lastName).Validate(directory.ValidateName),
		huh.NewInput().Title("Email").Value(&f.v.email).Validate(directory.ValidateEmail),
		huh.NewInput().Title("Password").Description(passwordHint).
			EchoMode(huh.EchoModePassword).Value(&f.v.password).Validate(passwordCheck),
	}

	details := []huh.Field{
		huh.NewInput().Title("Phone").Value(&f.v.phone).Validate(directory.ValidatePhone),
		huh.NewInput().Title("Birthdate").Placeholder("YYYY-MM-DD").Value(&f.v.birthdate).Validate(directory.ValidateBirthdate),
		huh.NewInput().Title("City").Value(&f.v.city).Validate(directory.ValidatePlace),
		huh.NewInput().Title("Country").Value(&f.v.country).Validate(directory.ValidatePlace),
		huh.NewInput().Title("Photo URL").Value(&f.v.photo),
		huh.NewSelect[string]().Title("Category").Options(categoryOptions()...).Value(&f.v.category),
	}
	if f.canAdmin {
		details = append(details, huh.NewConfirm().Title("Administrator").Value(&f.v.admin))
	}

	return huh.NewForm(
		huh.NewGroup(identity...).Title(title),
		huh.NewGroup(details...).Title("Details"),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

// Init implements tea.Model
func (f *UserForm) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *UserForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "esc" {
			return f, func() tea.Msg { return CancelledMsg{} }
		}
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	if f.form.State == huh.StateCompleted && !f.submitted {
		f.submitted = true
		result := f.Result()
		return f, func() tea.Msg { return result }
	}
	return f, cmd
}

// Reopen rebuilds the form around the values already entered
func (f *UserForm) Reopen() tea.Cmd {
	f.form = f.build()
	f.submitted = false
	return f.form.Init()
}

// View implements tea.Model
func (f *UserForm) View() string {
	return f.form.View()
}

// Result converts the current values into a submission
func (f *UserForm) Result() SubmittedMsg {
	if f.original == nil {
		in := f.input()
		return SubmittedMsg{Input: &in}
	}
	patch := f.patch()
	return SubmittedMsg{ID: f.original.ID, Patch: &patch}
}

func (f *UserForm) input() client.UserInput {
	return client.UserInput{
		Gender:    client.Gender(f.v.gender),
		FirstName: strings.TrimSpace(f.v.firstName),
		LastName:  strings.TrimSpace(f.v.lastName),
		Email:     strings.TrimSpace(f.v.email),
		Password:  f.v.password,
		Phone:     strings.TrimSpace(f.v.phone),
		Birthdate: strings.TrimSpace(f.v.birthdate),
		City:      strings.TrimSpace(f.v.city),
		Country:   strings.TrimSpace(f.v.country),
		Photo:     strings.TrimSpace(f.v.photo),
		Category:  client.Category(f.v.category),
		IsAdmin:   f.canAdmin && f.v.admin,
	}
}

// patch holds only the fields that differ from the original record
func (f *UserForm) patch() client.UserPatch {
	var p client.UserPatch
	orig := fromUser(*f.original)
	changed := func(now, before string) *string {
		now = strings.TrimSpace(now)
		if now == before {
			return nil
		}
		return &now
	}

	p.FirstName = changed(f.v.firstName, orig.firstName)
	p.LastName = changed(f.v.lastName, orig.lastName)
	p.Email = changed(f.v.email, orig.email)
	p.Phone = changed(f.v.phone, orig.phone)
	p.Birthdate = changed(f.v.birthdate, orig.birthdate)
	p.City = changed(f.v.city, orig.city)
	p.Country = changed(f.v.country, orig.country)
	p.Photo = changed(f.v.photo, orig.photo)
	if f.v.password != "" {
		pw := f.v.password
		p.Password = &pw
	}
	if f.v.gender != orig.gender {
		g := client.Gender(f.v.gender)
		p.Gender = &g
	}
	if f.v.category != orig.category {
		c := client.Category(f.v.category)
		p.Category = &c
	}
	if f.canAdmin && f.v.admin != orig.admin {
		admin := f.v.admin
		p.IsAdmin = &admin
	}
	return p
}

func genderOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(client.Genders))
	for _, g := range client.Genders {
		label := strings.ToUpper(string(g[:1])) + string(g[1:])
		opts = append(opts, huh.NewOption(label, string(g)))
	}
	return opts
}

func categoryOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(client.Categories))
	for _, c := range client.Categories {
		opts = append(opts, huh.NewOption(string(c), string(c)))
	}
	return opts
}
