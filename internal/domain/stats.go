package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Age bands used by UserStats.
const (
	YoungMaxAge = 25
	AdultMaxAge = 60
)

type UserStats struct {
	Total       int            `json:"total"`
	ByCity      map[string]int `json:"by_city"`
	YoungCount  int            `json:"young"`
	AdultCount  int            `json:"adult"`
	SeniorCount int            `json:"senior"`
}

type CityCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

// NewUserStats aggregates users into the city and age-band breakdowns.
func NewUserStats(users []User) UserStats {
	stats := UserStats{
		Total:  len(users),
		ByCity: make(map[string]int),
	}
	for _, u := range users {
		stats.ByCity[u.City]++
		switch {
		case u.Age <= YoungMaxAge:
			stats.YoungCount++
		case u.Age <= AdultMaxAge:
			stats.AdultCount++
		default:
			stats.SeniorCount++
		}
	}
	return stats
}

// CitiesByCount orders the city breakdown by count descending, then name.
func (s UserStats) CitiesByCount() []CityCount {
	cities := make([]CityCount, 0, len(s.ByCity))
	for city, count := range s.ByCity {
		cities = append(cities, CityCount{City: city, Count: count})
	}
	sort.Slice(cities, func(i, j int) bool {
		if cities[i].Count != cities[j].Count {
			return cities[i].Count > cities[j].Count
		}
		return cities[i].City < cities[j].City
	})
	return cities
}

func (s UserStats) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Total users: %d\n", s.Total)
	if s.Total == 0 {
		return sb.String()
	}
	sb.WriteString("\nBy city:\n")
	for _, c := range s.CitiesByCount() {
		fmt.Fprintf(&sb, "%s: %d\n", c.City, c.Count)
	}
	sb.WriteString("\nBy age:\n")
	fmt.Fprintf(&sb, "Up to %d: %d\n", YoungMaxAge, s.YoungCount)
	fmt.Fprintf(&sb, "%d-%d: %d\n", YoungMaxAge+1, AdultMaxAge, s.AdultCount)
	fmt.Fprintf(&sb, "Over %d: %d\n", AdultMaxAge, s.SeniorCount)
	return sb.String()
}

type EventStats struct {
	Total      int              `json:"total"`
	Upcoming   int              `json:"upcoming"`
	Past       int              `json:"past"`
	Ongoing    int              `json:"ongoing"`
	ByCategory map[Category]int `json:"by_category"`
}

func (s EventStats) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Total events: %d\n", s.Total)
	fmt.Fprintf(&sb, "Upcoming: %d\n", s.Upcoming)
	fmt.Fprintf(&sb, "Past: %d\n", s.Past)
	fmt.Fprintf(&sb, "Happening now: %d\n", s.Ongoing)
	sb.WriteString("\nBy category:\n")
	for _, c := range Categories() {
		if n := s.ByCategory[c]; n > 0 {
			fmt.Fprintf(&sb, "%s: %d\n", c.Label(), n)
		}
	}
	return sb.String()
}
