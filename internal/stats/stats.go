// ABOUTME: Aggregate statistics over the collaborator directory
// ABOUTME: Computes headcounts, age figures and category, gender and city breakdowns

package stats

import (
	"math"
	"sort"
	"time"

	"github.com/EdwinJoye/cda31-dev3-frontend/internal/client"
)

// UnspecifiedCity buckets collaborators without a city
const UnspecifiedCity = "Unspecified"

// TopCities is how many cities the summary keeps
const TopCities = 5

// Age group labels, in display order
const (
	AgeGroup20to30 = "20-30"
	AgeGroup30to40 = "30-40"
	AgeGroup40Plus = "40+"
)

// AgeGroups lists the age group labels in display order
var AgeGroups = []string{AgeGroup20to30, AgeGroup30to40, AgeGroup40Plus}

// Count is a labelled tally
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summary is the statistics dashboard content
type Summary struct {
	Total        int     `json:"total"`
	Admins       int     `json:"admins"`
	AdminPercent int     `json:"adminPercent"`
	AverageAge   int     `json:"averageAge"`
	WithAge      int     `json:"withAge"`
	Categories   []Count `json:"categories"`
	Genders      []Count `json:"genders"`
	Cities       []Count `json:"cities"`
	AgeGroups    []Count `json:"ageGroups"`
}

// Age returns the difference in calendar years between the birthdate and
// now, ignoring month and day. ok is false when birthdate is missing or
// unparseable.
func Age(birthdate string, now time.Time) (int, bool) {
	if len(birthdate) < 10 {
		return 0, false
	}
	born, err := time.Parse("2006-01-02", birthdate[:10])
	if err != nil {
		return 0, false
	}
	return now.Year() - born.Year(), true
}

// Compute builds the summary for users as of now
func Compute(users []client.User, now time.Time) Summary {
	s := Summary{Total: len(users)}

	categories := make(map[client.Category]int)
	genders := make(map[client.Gender]int)
	cities := make(map[string]int)
	ageGroups := make(map[string]int)
	ageSum := 0

	for _, u := range users {
		if u.IsAdmin {
			s.Admins++
		}
		categories[u.Category]++
		genders[u.Gender]++

		city := u.City
		if city == "" {
			city = UnspecifiedCity
		}
		cities[city]++

		age, ok := Age(u.Birthdate, now)
		if !ok {
			continue
		}
		s.WithAge++
		ageSum += age
		switch {
		case age >= 20 && age < 30:
			ageGroups[AgeGroup20to30]++
		case age >= 30 && age < 40:
			ageGroups[AgeGroup30to40]++
		case age >= 40:
			ageGroups[AgeGroup40Plus]++
		}
	}

	if s.Total > 0 {
		s.AdminPercent = int(math.Round(float64(s.Admins) * 100 / float64(s.Total)))
	}
	if s.WithAge > 0 {
		s.AverageAge = int(math.Round(float64(ageSum) / float64(s.WithAge)))
	}

	for _, c := range client.Categories {
		s.Categories = append(s.Categories, Count{Label: string(c), Count: categories[c]})
	}
	for _, g := range client.Genders {
		s.Genders = append(s.Genders, Count{Label: string(g), Count: genders[g]})
	}
	for _, label := range AgeGroups {
		s.AgeGroups = append(s.AgeGroups, Count{Label: label, Count: ageGroups[label]})
	}
	s.Cities = topCounts(cities, TopCities)

	return s
}

// topCounts returns the n largest tallies, ties ordered by label
func topCounts(m map[string]int, n int) []Count {
	counts := make([]Count, 0, len(m))
	for label, count := range m {
		counts = append(counts, Count{Label: label, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Label < counts[j].Label
	})
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}
