// ABOUTME: Tests for the users command group
// ABOUTME: Verifies listing, lookups, mutations, access rules and flag handling

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/EdwinJoye/cda31-dev3-frontend/internal/apitest"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/client"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/directory"
)

func validNewUser() client.UserInput {
	return client.UserInput{
		Gender:    client.GenderFemale,
		FirstName: "Nina",
		LastName:  "New",
		Email:     "nina@x.io",
		Password:  "pw1234",
		Category:  client.CategoryMarketing,
	}
}

func TestUsersCommands_RequireSession(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		run  func(w *bytes.Buffer) int
	}{
		{"list", func(w *bytes.Buffer) int { return runUsersList(ctx, te.env, w, directory.Filter{}, 1, 8) }},
		{"show", func(w *bytes.Buffer) int { return runUsersShow(ctx, te.env, w, 1) }},
		{"random", func(w *bytes.Buffer) int { return runUsersRandom(ctx, te.env, w) }},
		{"create", func(w *bytes.Buffer) int { return runUsersCreate(ctx, te.env, w, validNewUser()) }},
		{"update", func(w *bytes.Buffer) int {
			city := "Paris"
			return runUsersUpdate(ctx, te.env, w, 1, client.UserPatch{City: &city})
		}},
		{"delete", func(w *bytes.Buffer) int {
			return runUsersDelete(ctx, te.env, w, 3, func(*client.User) bool { return true })
		}},
		{"stats", func(w *bytes.Buffer) int { return runStats(ctx, te.env, w, testNow) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if code := tt.run(&buf); code != exitNotAuthenticated {
				t.Errorf("exit code %d, want %d", code, exitNotAuthenticated)
			}
			if !strings.Contains(buf.String(), "Not logged in") {
				t.Errorf("unexpected output %q", buf.String())
			}
		})
	}

	for _, route := range []string{apitest.RouteList, apitest.RouteGet, apitest.RouteCreate, apitest.RouteUpdate, apitest.RouteDelete} {
		if n := te.srv.Calls(route); n != 0 {
			t.Errorf("%s called %d times without a session", route, n)
		}
	}
}

func TestRunUsersList(t *testing.T) {
	te := newTestEnv(t)
	te.login(t, "rita@x.io")

	var buf bytes.Buffer
	if code := runUsersList(context.Background(), te.env, &buf, directory.Filter{}, 1, 8); code != exitOK {
		t.Fatalf("exit code %d", code)
	}
	out := buf.String()
	for _, want := range []string{"Ada Admin", "Rita Regular", "Carl Client", "Page 1/1, 3 collaborators"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// Newest first
	if strings.Index(out, "Carl Client") > strings.Index(out, "Ada Admin") {
		t.Error("expected collaborators sorted by id descending")
	}
}

func TestRunUsersList_FilterAndPageJSON(t *testing.T) {
	te := newTestEnv(t)
	te.login(t, "rita@x.io")
	jsonOutput = true

	var buf bytes.Buffer
	code := runUsersList(context.Background(), te.env, &buf, directory.Filter{Category: "client"}, 2, 1)
	if code != exitOK {
		t.Fatalf("exit code %d", code)
	}

	var page userPage
	if err := json.Unmarshal(buf.Bytes(), &page); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if page.Total != 2 || page.TotalPages != 2 || page.Page != 2 {
		t.Errorf("unexpected paging %+v", page)
	}
	if len(page.Users) != 1 || page.Users[0].ID != 2 {
		t.Errorf("page 2 should hold Rita, got %+v", page.Users)
	}
}

func TestRunUsersList_UnknownCategory(t *testing.T) {
	te := newTestEnv(t)
	te.login(t, "rita@x.io")

	var buf bytes.Buffer
	if code := runUsersList(context.Background(), te.env, &buf, directory.Filter{Category: "Sales"}, 1, 8); code != exitFailure {
		t.Errorf("exit code %d, want %d", code, exitFailure)
	}
	if te.srv.Calls(apitest.RouteList) != 0 {
		t.Error("invalid filters should not reach the API")
	}
}

func TestRunUsersList_ServerFailure(t *testing.T) {
	te := newTestEnv(t)
	te.login(t, "rita@x.io")
	te.srv.Fail(apitest.RouteList, 500, "database down")

	var buf bytes.Buffer
	if code := runUsersList(context.Background(), te.env, &buf, directory.Filter{}, 1, 8); code != exitFailure {
		t.Errorf("exit code %d, want %d", code, exitFailure)
	}
	if !strings.Contains(te.notes.String(), "database down") {
		t.Errorf("expected server message in notification, got %q", te.notes.String())
	}
}

func TestRunUsersShow(t *testing.T) {
	te := newTestEnv(t)
	te.login(t, "admin@x.io")

	var buf bytes.Buffer
	if code := runUsersShow(context.Background(), te.env, &buf, 2); code != exitOK {
		t.Fatalf("exit code %d", code)
	}
	for _, want := range []string{"Rita Regular", "rita@x.io", "1990-04-02", "Lyon"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	if code := runUsersShow(context.Background(), te.env, &buf, 99); code != exitFailure {
		t.Errorf("missing user: exit code %d, want %d", code, exitFailure)
	}
}

func TestRunUsersRandom(t *testing.T) {
	te := newTestEnv(t)
	te.login(t, "rita@x.io")
	te.srv.SetRandomSequence(2, 1)

	var buf bytes.Buffer
	if code := runUsersRandom(context.Background(), te.env, &buf); code != exitOK {
		t.Fatalf("exit code %d", code)
	}
	if !strings.Contains(buf.String(), "Ada Admin") {
		t.Errorf("random pick should skip the connected user:\n%s", buf.String())
	}
}

func TestRunUsersCreate(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()

	t.Run("regular user is refused", func(t *testing.T) {
		te.login(t, "rita@x.io")
		var buf bytes.Buffer
		if code := runUsersCreate(ctx, te.env, &buf, validNewUser()); code != exitFailure {
			t.Errorf("exit code %d, want %d", code, exitFailure)
		}
		if te.srv.Calls(apitest.RouteCreate) != 0 {
			t.Error("create should not reach the API")
		}
	})

	te.login(t, "admin@x.io")

	t.Run("invalid input", func(t *testing.T) {
		in := validNewUser()
		in.Email = "not-an-email"
		var buf bytes.Buffer
		if code := runUsersCreate(ctx, te.env, &buf, in); code != exitFailure {
			t.Errorf("exit code %d, want %d", code, exitFailure)
		}
		if !strings.Contains(buf.String(), "email") {
			t.Errorf("expected an email validation error, got %q", buf.String())
		}
	})

	t.Run("created", func(t *testing.T) {
		var buf bytes.Buffer
		if code := runUsersCreate(ctx, te.env, &buf, validNewUser()); code != exitOK {
			t.Fatalf("exit code %d, notes %q", code, te.notes.String())
		}
		if !strings.Contains(buf.String(), "Nina New") {
			t.Errorf("unexpected output %q", buf.String())
		}
		if te.srv.Len() != 4 {
			t.Errorf("server has %d users, want 4", te.srv.Len())
		}
	})

	t.Run("created without echo", func(t *testing.T) {
		te.srv.SetEchoCreate(false)
		in := validNewUser()
		in.Email = "noecho@x.io"
		var buf bytes.Buffer
		if code := runUsersCreate(ctx, te.env, &buf, in); code != exitOK {
			t.Fatalf("exit code %d", code)
		}
		if !strings.Contains(buf.String(), "noecho@x.io") {
			t.Errorf("expected the record found after refetch, got %q", buf.String())
		}
	})
}

func TestRunUsersUpdate(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()
	te.login(t, "rita@x.io")
	city := "Nantes"

	t.Run("empty patch", func(t *testing.T) {
		var buf bytes.Buffer
		if code := runUsersUpdate(ctx, te.env, &buf, 2, client.UserPatch{}); code != exitFailure {
			t.Errorf("exit code %d, want %d", code, exitFailure)
		}
	})

	t.Run("other user as regular user", func(t *testing.T) {
		var buf bytes.Buffer
		if code := runUsersUpdate(ctx, te.env, &buf, 3, client.UserPatch{City: &city}); code != exitFailure {
			t.Errorf("exit code %d, want %d", code, exitFailure)
		}
		if te.srv.Calls(apitest.RouteUpdate) != 0 {
			t.Error("update should not reach the API")
		}
	})

	t.Run("invalid field", func(t *testing.T) {
		bad := "31/12/1990"
		var buf bytes.Buffer
		if code := runUsersUpdate(ctx, te.env, &buf, 2, client.UserPatch{Birthdate: &bad}); code != exitFailure {
			t.Errorf("exit code %d, want %d", code, exitFailure)
		}
	})

	t.Run("admin flag as regular user", func(t *testing.T) {
		admin := true
		var buf bytes.Buffer
		if code := runUsersUpdate(ctx, te.env, &buf, 2, client.UserPatch{IsAdmin: &admin, City: &city}); code != exitFailure {
			t.Errorf("exit code %d, want %d", code, exitFailure)
		}
		if !strings.Contains(buf.String(), "administrator rights") {
			t.Errorf("unexpected output %q", buf.String())
		}
		if te.srv.Calls(apitest.RouteUpdate) != 0 {
			t.Error("update should not reach the API")
		}
		if te.session.IsAdmin() {
			t.Error("connected user must not become an administrator")
		}
		if code := runUsersCreate(ctx, te.env, &buf, validNewUser()); code != exitFailure {
			t.Errorf("create after refused promotion: exit code %d, want %d", code, exitFailure)
		}
	})

	t.Run("own profile", func(t *testing.T) {
		var buf bytes.Buffer
		if code := runUsersUpdate(ctx, te.env, &buf, 2, client.UserPatch{City: &city}); code != exitOK {
			t.Fatalf("exit code %d, notes %q", code, te.notes.String())
		}
		if u, _ := te.srv.User(2); u.City != "Nantes" {
			t.Errorf("server city = %q", u.City)
		}
		if !strings.Contains(buf.String(), "Nantes") {
			t.Errorf("expected updated record in output:\n%s", buf.String())
		}
		if me := te.session.ConnectedUser(); me.City != "Nantes" {
			t.Error("connected profile should be refreshed")
		}
	})
}

func TestRunUsersUpdate_AdminGrantsRights(t *testing.T) {
	te := newTestEnv(t)
	te.login(t, "admin@x.io")

	admin := true
	var buf bytes.Buffer
	if code := runUsersUpdate(context.Background(), te.env, &buf, 2, client.UserPatch{IsAdmin: &admin}); code != exitOK {
		t.Fatalf("exit code %d, notes %q", code, te.notes.String())
	}
	if u, _ := te.srv.User(2); !u.IsAdmin {
		t.Error("rita should be an administrator")
	}
}

func TestRunUsersDelete(t *testing.T) {
	te := newTestEnv(t)
	ctx := context.Background()
	te.login(t, "admin@x.io")

	var buf bytes.Buffer
	code := runUsersDelete(ctx, te.env, &buf, 3, func(*client.User) bool { return false })
	if code != exitOK || !strings.Contains(buf.String(), "Cancelled") {
		t.Errorf("declined delete: exit %d output %q", code, buf.String())
	}
	if te.srv.Calls(apitest.RouteDelete) != 0 {
		t.Error("declined delete should not reach the API")
	}

	buf.Reset()
	var asked *client.User
	code = runUsersDelete(ctx, te.env, &buf, 3, func(u *client.User) bool { asked = u; return true })
	if code != exitOK {
		t.Fatalf("exit code %d", code)
	}
	if asked == nil || asked.ID != 3 {
		t.Errorf("confirmation should receive the target, got %+v", asked)
	}
	if !strings.Contains(buf.String(), "Deleted Carl Client (id 3)") {
		t.Errorf("unexpected output %q", buf.String())
	}
	if _, ok := te.srv.User(3); ok {
		t.Error("user should be gone")
	}
}

func TestRunUsersDelete_RegularUserRefused(t *testing.T) {
	te := newTestEnv(t)
	te.login(t, "rita@x.io")

	var buf bytes.Buffer
	code := runUsersDelete(context.Background(), te.env, &buf, 3, func(*client.User) bool { return true })
	if code != exitFailure {
		t.Errorf("exit code %d, want %d", code, exitFailure)
	}
	if _, ok := te.srv.User(3); !ok {
		t.Error("user should still exist")
	}
}

func TestUserFlags_PatchOnlyChanged(t *testing.T) {
	var uf userFlags
	fs := pflag.NewFlagSet("update", pflag.ContinueOnError)
	uf.register(fs)

	if err := fs.Parse([]string{"--city", "Paris", "--category", "marketing", "--admin=false", "--phone", ""}); err != nil {
		t.Fatal(err)
	}
	p := uf.patch(fs)

	if p.City == nil || *p.City != "Paris" {
		t.Errorf("City = %v", p.City)
	}
	if p.Category == nil || *p.Category != client.CategoryMarketing {
		t.Errorf("Category = %v, want normalized Marketing", p.Category)
	}
	if p.IsAdmin == nil || *p.IsAdmin {
		t.Errorf("IsAdmin = %v, want explicit false", p.IsAdmin)
	}
	if p.Phone == nil || *p.Phone != "" {
		t.Errorf("Phone = %v, want explicit empty string", p.Phone)
	}
	if p.FirstName != nil || p.Email != nil || p.Password != nil || p.Gender != nil {
		t.Errorf("unset flags leaked into the patch: %+v", p)
	}
}

func TestUserFlags_InputNormalizes(t *testing.T) {
	uf := userFlags{gender: "FEMALE", category: "technique", firstName: "Ann"}
	in := uf.input()
	if in.Gender != client.GenderFemale || in.Category != client.CategoryTechnique {
		t.Errorf("input = %+v", in)
	}
}

func TestFormatUserListHuman_Empty(t *testing.T) {
	if got := formatUserListHuman(nil, 1, 0, 0); got != "No collaborators found." {
		t.Errorf("got %q", got)
	}
	if got := formatUserListHuman(nil, 5, 2, 10); !strings.Contains(got, "Page 5 is empty") {
		t.Errorf("got %q", got)
	}
}
