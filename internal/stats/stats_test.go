// ABOUTME: Tests for directory statistics
// ABOUTME: Uses a fixed clock so ages are deterministic

package stats

import (
	"testing"
	"time"

	"github.com/EdwinJoye/cda31-dev3-frontend/internal/client"
)

var now = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func countOf(counts []Count, label string) int {
	for _, c := range counts {
		if c.Label == label {
			return c.Count
		}
	}
	return -1
}

func TestCompute(t *testing.T) {
	users := []client.User{
		{ID: 1, Gender: client.GenderFemale, City: "Paris", Category: client.CategoryTechnique, Birthdate: "2000-12-31", IsAdmin: true},
		{ID: 2, Gender: client.GenderMale, City: "Paris", Category: client.CategoryClient, Birthdate: "1990-01-01"},
		{ID: 3, Gender: client.GenderMale, City: "Lyon", Category: client.CategoryClient, Birthdate: "1980-05-05T00:00:00Z"},
		{ID: 4, Gender: client.GenderOther, Category: client.CategoryMarketing},
	}

	s := Compute(users, now)

	if s.Total != 4 {
		t.Errorf("expected total 4, got %d", s.Total)
	}
	if s.Admins != 1 || s.AdminPercent != 25 {
		t.Errorf("expected 1 admin (25%%), got %d (%d%%)", s.Admins, s.AdminPercent)
	}
	// Ages 26, 36, 46
	if s.WithAge != 3 || s.AverageAge != 36 {
		t.Errorf("expected average 36 over 3, got %d over %d", s.AverageAge, s.WithAge)
	}

	categoryTests := map[string]int{"Marketing": 1, "Client": 2, "Technique": 1}
	for label, expected := range categoryTests {
		if got := countOf(s.Categories, label); got != expected {
			t.Errorf("category %s: expected %d, got %d", label, expected, got)
		}
	}

	genderTests := map[string]int{"female": 1, "male": 2, "other": 1}
	for label, expected := range genderTests {
		if got := countOf(s.Genders, label); got != expected {
			t.Errorf("gender %s: expected %d, got %d", label, expected, got)
		}
	}

	if len(s.Cities) != 3 || s.Cities[0].Label != "Paris" || s.Cities[0].Count != 2 {
		t.Errorf("expected Paris first with 2, got %+v", s.Cities)
	}
	if got := countOf(s.Cities, UnspecifiedCity); got != 1 {
		t.Errorf("expected 1 unspecified city, got %d", got)
	}

	ageTests := map[string]int{AgeGroup20to30: 1, AgeGroup30to40: 1, AgeGroup40Plus: 1}
	for label, expected := range ageTests {
		if got := countOf(s.AgeGroups, label); got != expected {
			t.Errorf("age group %s: expected %d, got %d", label, expected, got)
		}
	}
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil, now)

	if s.Total != 0 || s.AdminPercent != 0 || s.AverageAge != 0 {
		t.Errorf("expected zero summary, got %+v", s)
	}
	if len(s.Categories) != 3 || len(s.Genders) != 3 || len(s.AgeGroups) != 3 {
		t.Error("expected every category, gender and age group listed even when empty")
	}
	if len(s.Cities) != 0 {
		t.Errorf("expected no cities, got %+v", s.Cities)
	}
}

func TestCompute_TopCities(t *testing.T) {
	var users []client.User
	for i, city := range []string{"A", "B", "C", "D", "E", "F", "F", "E"} {
		users = append(users, client.User{ID: i + 1, City: city})
	}

	s := Compute(users, now)

	expected := []string{"E", "F", "A", "B", "C"}
	if len(s.Cities) != TopCities {
		t.Fatalf("expected %d cities, got %d", TopCities, len(s.Cities))
	}
	for i, label := range expected {
		if s.Cities[i].Label != label {
			t.Errorf("position %d: expected %s, got %s", i, label, s.Cities[i].Label)
		}
	}
}

func TestAge(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		ok       bool
	}{
		{"1990-12-31", 36, true},
		{"1990-01-01T10:00:00Z", 36, true},
		{"", 0, false},
		{"garbage-in", 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			age, ok := Age(tc.input, now)
			if ok != tc.ok || age != tc.expected {
				t.Errorf("expected (%d, %v), got (%d, %v)", tc.expected, tc.ok, age, ok)
			}
		})
	}
}
