package engine

import (
	"sort"

	"customerdash/internal/models"
)

// RecordStore holds the customer table in struct-of-arrays form plus the
// province coordinate lookup. It is never mutated after Build and may be
// shared by any number of goroutines without locking.
type RecordStore struct {
	// Data columns (one entry per customer)
	ages        []int32
	incomes     []float64
	experiences []int32
	genders     []models.Gender

	// Dictionary encoded ids (0..N), dictionaries in first-appearance order
	professionIDs []int32
	generationIDs []int32
	provinceIDs   []int32

	professionDict []string
	generationDict []string
	provinceDict   []string

	// Closed profession set: every dictionary entry plus configured extras.
	professionSet map[string]struct{}

	coordinates map[string]models.ProvinceCoordinate
}

// Len returns the number of customers.
func (s *RecordStore) Len() int { return len(s.ages) }

// Record reconstructs customer i in source order.
func (s *RecordStore) Record(i int) models.CustomerRecord {
	return models.CustomerRecord{
		Profession:     s.professionDict[s.professionIDs[i]],
		Gender:         s.genders[i].String(),
		Province:       s.provinceDict[s.provinceIDs[i]],
		Age:            int(s.ages[i]),
		Generation:     s.generationDict[s.generationIDs[i]],
		AnnualIncome:   s.incomes[i],
		WorkExperience: int(s.experiences[i]),
	}
}

// Professions returns the closed profession set in byte order.
func (s *RecordStore) Professions() []string {
	out := make([]string, 0, len(s.professionSet))
	for p := range s.professionSet {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// HasProfession reports whether p is in the closed profession set.
func (s *RecordStore) HasProfession(p string) bool {
	_, ok := s.professionSet[p]
	return ok
}

// Coordinate looks up a province in the coordinate table.
func (s *RecordStore) Coordinate(province string) (models.ProvinceCoordinate, bool) {
	c, ok := s.coordinates[province]
	return c, ok
}

// AgeBounds returns the observed minimum and maximum age; ok is false for an
// empty store.
func (s *RecordStore) AgeBounds() (lo, hi int, ok bool) {
	if len(s.ages) == 0 {
		return 0, 0, false
	}
	mn, mx := s.ages[0], s.ages[0]
	for _, a := range s.ages[1:] {
		if a < mn {
			mn = a
		}
		if a > mx {
			mx = a
		}
	}
	return int(mn), int(mx), true
}

// Validate checks cross-table invariants that the pipelines rely on.
func (s *RecordStore) Validate() error {
	return s.checkJoin()
}

// checkJoin reports every customer province missing from the coordinate table.
func (s *RecordStore) checkJoin() error {
	missing := make([]bool, len(s.provinceDict))
	found := false
	for id, p := range s.provinceDict {
		if _, ok := s.coordinates[p]; !ok {
			missing[id] = true
			found = true
		}
	}
	if !found {
		return nil
	}

	jm := &JoinMismatchError{}
	for _, pid := range s.provinceIDs {
		if missing[pid] {
			jm.Rows++
		}
	}
	for id, p := range s.provinceDict {
		if missing[id] {
			jm.Provinces = append(jm.Provinces, p)
		}
	}
	sort.Strings(jm.Provinces)
	return jm
}
