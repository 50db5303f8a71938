package engine

import (
	"fmt"
	"math"
	"strings"

	"customerdash/internal/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Options fixes the closed category sets. Empty slices mean "whatever the
// customer table contains".
type Options struct {
	Professions []string
	Generations []string
}

// Builder dictionary-encodes customer records into a RecordStore. It is not
// safe for concurrent use and must not be used after Build.
type Builder struct {
	store *RecordStore

	profIdx map[string]int32
	genIdx  map[string]int32
	provIdx map[string]int32

	knownProf map[string]struct{}
	knownGen  map[string]struct{}

	caser cases.Caser
	rows  int
}

// NewBuilder returns an empty builder for the given closed sets.
func NewBuilder(opts Options) *Builder {
	b := &Builder{
		store: &RecordStore{
			professionSet: make(map[string]struct{}),
			coordinates:   make(map[string]models.ProvinceCoordinate),
		},
		profIdx: make(map[string]int32),
		genIdx:  make(map[string]int32),
		provIdx: make(map[string]int32),
		caser:   cases.Title(language.Und),
	}
	if len(opts.Professions) > 0 {
		b.knownProf = toSet(opts.Professions)
	}
	if len(opts.Generations) > 0 {
		b.knownGen = toSet(opts.Generations)
	}
	return b
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.TrimSpace(v)] = struct{}{}
	}
	return set
}

// Add validates and appends one customer.
func (b *Builder) Add(rec models.CustomerRecord) error {
	b.rows++
	bad := func(field, format string, args ...any) error {
		return &DataIntegrityError{Source: "customers", Row: b.rows, Field: field, Reason: fmt.Sprintf(format, args...)}
	}

	profession := strings.TrimSpace(rec.Profession)
	generation := strings.TrimSpace(rec.Generation)
	province := strings.TrimSpace(rec.Province)

	switch {
	case profession == "":
		return bad("profession", "empty")
	case generation == "":
		return bad("generation", "empty")
	case province == "":
		return bad("province", "empty")
	case rec.Age < 0 || rec.Age > math.MaxInt32:
		return bad("age", "out of range: %d", rec.Age)
	case rec.WorkExperience < 0 || rec.WorkExperience > math.MaxInt32:
		return bad("work_experience", "out of range: %d", rec.WorkExperience)
	case rec.AnnualIncome < 0 || math.IsNaN(rec.AnnualIncome) || math.IsInf(rec.AnnualIncome, 0):
		return bad("annual_income", "must be a non-negative number, got %v", rec.AnnualIncome)
	}
	if b.knownProf != nil {
		if _, ok := b.knownProf[profession]; !ok {
			return bad("profession", "%q is not a known profession", profession)
		}
	}
	if b.knownGen != nil {
		if _, ok := b.knownGen[generation]; !ok {
			return bad("generation", "%q is not a known generation", generation)
		}
	}

	var gender models.Gender
	switch b.caser.String(strings.TrimSpace(rec.Gender)) {
	case "Male":
		gender = models.GenderMale
	case "Female":
		gender = models.GenderFemale
	default:
		return bad("gender", "%q is not Male or Female", rec.Gender)
	}

	s := b.store
	s.ages = append(s.ages, int32(rec.Age))
	s.incomes = append(s.incomes, rec.AnnualIncome)
	s.experiences = append(s.experiences, int32(rec.WorkExperience))
	s.genders = append(s.genders, gender)
	s.professionIDs = append(s.professionIDs, encode(b.profIdx, &s.professionDict, profession))
	s.generationIDs = append(s.generationIDs, encode(b.genIdx, &s.generationDict, generation))
	s.provinceIDs = append(s.provinceIDs, encode(b.provIdx, &s.provinceDict, province))
	return nil
}

func encode(idx map[string]int32, dict *[]string, v string) int32 {
	if id, ok := idx[v]; ok {
		return id
	}
	id := int32(len(*dict))
	*dict = append(*dict, v)
	idx[v] = id
	return id
}

// Build attaches the coordinate table and returns the finished store. The
// join itself is checked lazily by the pipelines and by Validate.
func (b *Builder) Build(coords []models.ProvinceCoordinate) (*RecordStore, error) {
	s := b.store
	for i, c := range coords {
		bad := func(field, format string, args ...any) error {
			return &DataIntegrityError{Source: "coordinates", Row: i + 1, Field: field, Reason: fmt.Sprintf(format, args...)}
		}
		c.Province = strings.TrimSpace(c.Province)
		switch {
		case c.Province == "":
			return nil, bad("province", "empty")
		case math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90:
			return nil, bad("latitude", "out of range: %v", c.Latitude)
		case math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180:
			return nil, bad("longitude", "out of range: %v", c.Longitude)
		}
		if _, dup := s.coordinates[c.Province]; dup {
			return nil, bad("province", "duplicate %q", c.Province)
		}
		s.coordinates[c.Province] = c
	}

	for _, p := range s.professionDict {
		s.professionSet[p] = struct{}{}
	}
	for p := range b.knownProf {
		s.professionSet[p] = struct{}{}
	}

	b.store = nil
	return s, nil
}

// NewRecordStore builds a store from in-memory tables.
func NewRecordStore(records []models.CustomerRecord, coords []models.ProvinceCoordinate, opts Options) (*RecordStore, error) {
	b := NewBuilder(opts)
	for _, r := range records {
		if err := b.Add(r); err != nil {
			return nil, err
		}
	}
	return b.Build(coords)
}
