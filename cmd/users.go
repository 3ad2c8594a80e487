// ABOUTME: Users command group for the intranet CLI
// ABOUTME: Lists, shows, creates, updates and deletes collaborators

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/EdwinJoye/cda31-dev3-frontend/internal/client"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/directory"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/tui/styles"
)

var usersCmd = &cobra.Command{
	Use:     "users",
	Aliases: []string{"user", "collaborators"},
	Short:   "Manage the collaborator directory",
}

// list flags
var (
	listName     string
	listCategory string
	listText     string
	listPage     int
	listPerPage  int
)

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collaborators, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, e *env) int {
			return runUsersList(ctx, e, os.Stdout, directory.Filter{
				Name:     listName,
				Category: client.Category(listCategory),
				Text:     listText,
			}, listPage, listPerPage)
		})
	},
}

var usersShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one collaborator",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])
		execute(func(ctx context.Context, e *env) int {
			return runUsersShow(ctx, e, os.Stdout, id)
		})
	},
}

var usersRandomCmd = &cobra.Command{
	Use:   "random",
	Short: "Show a random collaborator other than yourself",
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, e *env) int {
			return runUsersRandom(ctx, e, os.Stdout)
		})
	},
}

// userFlags holds the field flags shared by create and update
type userFlags struct {
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

func (uf *userFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&uf.gender, "gender", "", "male, female or other")
	fs.StringVar(&uf.firstName, "firstname", "", "First name")
	fs.StringVar(&uf.lastName, "lastname", "", "Last name")
	fs.StringVar(&uf.email, "email", "", "Email address")
	fs.StringVar(&uf.password, "password", "", "Password")
	fs.StringVar(&uf.phone, "phone", "", "Phone number")
	fs.StringVar(&uf.birthdate, "birthdate", "", "Birthdate (YYYY-MM-DD)")
	fs.StringVar(&uf.city, "city", "", "City")
	fs.StringVar(&uf.country, "country", "", "Country")
	fs.StringVar(&uf.photo, "photo", "", "Photo URL")
	fs.StringVar(&uf.category, "category", "", "Marketing, Client or Technique")
	fs.BoolVar(&uf.admin, "admin", false, "Grant administrator rights")
}

// input builds a create request from the flags
func (uf *userFlags) input() client.UserInput {
	in := client.UserInput{
		Gender:    client.Gender(uf.gender),
		FirstName: uf.firstName,
		LastName:  uf.lastName,
		Email:     uf.email,
		Password:  uf.password,
		Phone:     uf.phone,
		Birthdate: uf.birthdate,
		City:      uf.city,
		Country:   uf.country,
		Photo:     uf.photo,
		Category:  client.Category(uf.category),
		IsAdmin:   uf.admin,
	}
	if g, ok := client.ParseGender(uf.gender); ok {
		in.Gender = g
	}
	if c, ok := client.ParseCategory(uf.category); ok {
		in.Category = c
	}
	return in
}

// patch builds a partial update from the flags the user actually set
func (uf *userFlags) patch(fs *pflag.FlagSet) client.UserPatch {
	var p client.UserPatch
	str := func(name string, v string) *string {
		if !fs.Changed(name) {
			return nil
		}
		return &v
	}
	p.FirstName = str("firstname", uf.firstName)
	p.LastName = str("lastname", uf.lastName)
	p.Email = str("email", uf.email)
	p.Password = str("password", uf.password)
	p.Phone = str("phone", uf.phone)
	p.Birthdate = str("birthdate", uf.birthdate)
	p.City = str("city", uf.city)
	p.Country = str("country", uf.country)
	p.Photo = str("photo", uf.photo)
	if fs.Changed("gender") {
		g := client.Gender(uf.gender)
		if parsed, ok := client.ParseGender(uf.gender); ok {
			g = parsed
		}
		p.Gender = &g
	}
	if fs.Changed("category") {
		c := client.Category(uf.category)
		if parsed, ok := client.ParseCategory(uf.category); ok {
			c = parsed
		}
		p.Category = &c
	}
	if fs.Changed("admin") {
		admin := uf.admin
		p.IsAdmin = &admin
	}
	return p
}

var (
	createFlags userFlags
	updateFlags userFlags
	deleteYes   bool
)

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a collaborator (administrators only)",
	Long:  `Create a collaborator from flags. With no flags an interactive form is shown.`,
	Run: func(cmd *cobra.Command, args []string) {
		in := createFlags.input()
		if cmd.Flags().NFlag() == 0 {
			if err := promptNewUser(&in); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(exitFailure)
			}
		}
		execute(func(ctx context.Context, e *env) int {
			return runUsersCreate(ctx, e, os.Stdout, in)
		})
	},
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Update fields of a collaborator",
	Long:  `Only the flags given on the command line are sent; other fields keep their value.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])
		patch := updateFlags.patch(cmd.Flags())
		execute(func(ctx context.Context, e *env) int {
			return runUsersUpdate(ctx, e, os.Stdout, id, patch)
		})
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a collaborator (administrators only)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])
		execute(func(ctx context.Context, e *env) int {
			confirm := func(u *client.User) bool { return deleteYes || confirmDelete(u) }
			return runUsersDelete(ctx, e, os.Stdout, id, confirm)
		})
	},
}

func init() {
	usersListCmd.Flags().StringVar(&listName, "name", "", "Filter by full name")
	usersListCmd.Flags().StringVar(&listCategory, "category", "", "Filter by category (Marketing, Client, Technique)")
	usersListCmd.Flags().StringVar(&listText, "text", "", "Search name, email, city and country")
	usersListCmd.Flags().IntVar(&listPage, "page", 1, "Page number")
	usersListCmd.Flags().IntVar(&listPerPage, "per-page", directory.DefaultPerPage, "Collaborators per page")

	createFlags.register(usersCreateCmd.Flags())
	updateFlags.register(usersUpdateCmd.Flags())
	usersDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")

	usersCmd.AddCommand(usersListCmd, usersShowCmd, usersRandomCmd, usersCreateCmd, usersUpdateCmd, usersDeleteCmd)
	rootCmd.AddCommand(usersCmd)
}

// parseID converts a positional id argument or exits
func parseID(arg string) int {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		fmt.Fprintf(os.Stderr, "Error: invalid id %q\n", arg)
		os.Exit(exitFailure)
	}
	return id
}

// runUsersList fetches, filters and pages the directory and returns exit code
func runUsersList(ctx context.Context, e *env, w io.Writer, filter directory.Filter, page, perPage int) int {
	if code := e.requireSession(w); code != exitOK {
		return code
	}
	if filter.Category != "" {
		c, ok := client.ParseCategory(string(filter.Category))
		if !ok {
			fmt.Fprintf(w, "Error: unknown category %q\n", filter.Category)
			return exitFailure
		}
		filter.Category = c
	}

	users, ok := e.directory.FetchAll(ctx)
	if !ok {
		return exitFailure
	}

	matched := filter.Apply(users)
	shown, totalPages := directory.Paginate(matched, page, perPage)

	if IsJSONOutput() {
		fmt.Fprintln(w, formatUserListJSON(shown, page, totalPages, len(matched)))
	} else {
		fmt.Fprintln(w, formatUserListHuman(shown, page, totalPages, len(matched)))
	}
	return exitOK
}

// runUsersShow prints one collaborator and returns exit code
func runUsersShow(ctx context.Context, e *env, w io.Writer, id int) int {
	if code := e.requireSession(w); code != exitOK {
		return code
	}

	u := e.directory.FetchByID(ctx, id)
	if u == nil {
		return exitFailure
	}
	printUser(w, u)
	return exitOK
}

// runUsersRandom prints a random collaborator and returns exit code
func runUsersRandom(ctx context.Context, e *env, w io.Writer) int {
	if code := e.requireSession(w); code != exitOK {
		return code
	}

	u := e.directory.FetchRandom(ctx)
	if u == nil {
		if e.directory.LastError() == "" {
			fmt.Fprintln(w, "No collaborator available.")
		}
		return exitFailure
	}
	printUser(w, u)
	return exitOK
}

// runUsersCreate validates and submits a new collaborator and returns exit code
func runUsersCreate(ctx context.Context, e *env, w io.Writer, in client.UserInput) int {
	if code := e.requireSession(w); code != exitOK {
		return code
	}
	if code := e.requireAdmin(w); code != exitOK {
		return code
	}
	if err := directory.ValidateInput(in); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitFailure
	}

	created, err := e.directory.Create(ctx, in)
	if err != nil {
		return exitFailure
	}
	if created == nil {
		// The server did not echo the record; find it in the refreshed list
		for _, u := range e.directory.Users() {
			if u.Email == in.Email {
				created = &u
				break
			}
		}
	}

	if created == nil {
		fmt.Fprintf(w, "Created %s %s.\n", in.FirstName, in.LastName)
		return exitOK
	}
	printUser(w, created)
	return exitOK
}

// runUsersUpdate validates and submits a partial update and returns exit code
func runUsersUpdate(ctx context.Context, e *env, w io.Writer, id int, patch client.UserPatch) int {
	if code := e.requireSession(w); code != exitOK {
		return code
	}
	if me := e.session.ConnectedUser(); me != nil && me.ID != id && !me.IsAdmin {
		fmt.Fprintln(w, "Error: only administrators can edit other collaborators")
		return exitFailure
	}
	if patch.IsAdmin != nil && !e.session.IsAdmin() {
		fmt.Fprintln(w, "Error: only administrators can change administrator rights")
		return exitFailure
	}
	if patch.IsEmpty() {
		fmt.Fprintln(w, "Error: nothing to update; pass at least one field flag")
		return exitFailure
	}
	if err := directory.ValidatePatch(patch); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitFailure
	}

	if !e.directory.Update(ctx, id, patch) {
		return exitFailure
	}

	u := e.directory.FetchByID(ctx, id)
	if u == nil {
		fmt.Fprintf(w, "Updated collaborator %d.\n", id)
		return exitOK
	}
	printUser(w, u)
	return exitOK
}

// runUsersDelete deletes a collaborator after confirm approves and returns exit code
func runUsersDelete(ctx context.Context, e *env, w io.Writer, id int, confirm func(*client.User) bool) int {
	if code := e.requireSession(w); code != exitOK {
		return code
	}
	if code := e.requireAdmin(w); code != exitOK {
		return code
	}

	target := e.directory.FetchByID(ctx, id)
	if target == nil {
		return exitFailure
	}
	if !confirm(target) {
		fmt.Fprintln(w, "Cancelled.")
		return exitOK
	}

	if !e.directory.Delete(ctx, id) {
		return exitFailure
	}
	if IsJSONOutput() {
		fmt.Fprintf(w, "{\"deleted\":%d}\n", id)
	} else {
		fmt.Fprintf(w, "Deleted %s (id %d).\n", target.FullName(), id)
	}
	return exitOK
}

// printUser writes a single collaborator in the selected format
func printUser(w io.Writer, u *client.User) {
	if IsJSONOutput() {
		fmt.Fprintln(w, formatUserJSON(u))
	} else {
		fmt.Fprintln(w, formatUserHuman(u))
	}
}

// confirmDelete asks before deleting u
func confirmDelete(u *client.User) bool {
	var ok bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Delete %s?", u.FullName())).
		Description(fmt.Sprintf("%s (id %d) will be removed permanently.", u.Email, u.ID)).
		Affirmative("Delete").
		Negative("Cancel").
		Value(&ok).
		WithTheme(styles.FormTheme()).
		Run()
	return err == nil && ok
}

// promptNewUser fills in a create request interactively
func promptNewUser(in *client.UserInput) error {
	if in.Gender == "" {
		in.Gender = client.GenderMale
	}
	if in.Category == "" {
		in.Category = client.CategoryClient
	}
	gender := string(in.Gender)
	category := string(in.Category)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Gender").Options(genderOptions()...).Value(&gender),
			huh.NewInput().Title("First name").Value(&in.FirstName).Validate(directory.ValidateName),
			huh.NewInput().Title("Last name").Value(&in.LastName).Validate(directory.ValidateName),
			huh.NewInput().Title("Email").Value(&in.Email).Validate(directory.ValidateEmail),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&in.Password).Validate(directory.ValidatePassword),
		).Title("Identity"),
		huh.NewGroup(
			huh.NewInput().Title("Phone").Value(&in.Phone).Validate(directory.ValidatePhone),
			huh.NewInput().Title("Birthdate").Placeholder("YYYY-MM-DD").Value(&in.Birthdate).Validate(directory.ValidateBirthdate),
			huh.NewInput().Title("City").Value(&in.City).Validate(directory.ValidatePlace),
			huh.NewInput().Title("Country").Value(&in.Country).Validate(directory.ValidatePlace),
			huh.NewSelect[string]().Title("Category").Options(categoryOptions()...).Value(&category),
			huh.NewConfirm().Title("Administrator").Value(&in.IsAdmin),
		).Title("Details"),
	).WithTheme(styles.FormTheme())

	if err := form.Run(); err != nil {
		return err
	}
	in.Gender = client.Gender(gender)
	in.Category = client.Category(category)
	return nil
}

func genderOptions() []huh.Option[string] {
	return []huh.Option[string]{
		huh.NewOption("Male", string(client.GenderMale)),
		huh.NewOption("Female", string(client.GenderFemale)),
		huh.NewOption("Other", string(client.GenderOther)),
	}
}

func categoryOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(client.Categories))
	for _, c := range client.Categories {
		opts = append(opts, huh.NewOption(string(c), string(c)))
	}
	return opts
}
