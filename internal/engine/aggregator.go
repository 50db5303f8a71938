package engine

import (
	"customerdash/internal/models"
)

// ProfessionVolume counts customers and sums annual income per profession,
// in first-appearance order. Professions without customers are absent.
func (s *RecordStore) ProfessionVolume() []models.ProfessionVolume {
	numProfs := len(s.professionDict)
	counts := make([]int, numProfs)
	sums := make([]float64, numProfs)

	for j, pid := range s.professionIDs {
		counts[pid]++
		sums[pid] += s.incomes[j]
	}

	out := make([]models.ProfessionVolume, 0, numProfs)
	for i, n := range counts {
		if n > 0 {
			out = append(out, models.ProfessionVolume{
				Profession: s.professionDict[i], Count: n, IncomeSum: sums[i],
			})
		}
	}
	return out
}

// GeographicDemand cross-tabulates province by gender and joins each row to
// its coordinates. A province without coordinates fails the whole call.
func (s *RecordStore) GeographicDemand() ([]models.ProvinceDemand, error) {
	if err := s.checkJoin(); err != nil {
		return nil, err
	}

	// Flattened [Province][Gender] -> [Province * 2 + Gender]
	numGenders := len(models.Genders)
	matrix := make([]int, len(s.provinceDict)*numGenders)
	for j, pid := range s.provinceIDs {
		matrix[int(pid)*numGenders+int(s.genders[j])]++
	}

	out := make([]models.ProvinceDemand, 0, len(s.provinceDict))
	for pid, name := range s.provinceDict {
		male := matrix[pid*numGenders+int(models.GenderMale)]
		female := matrix[pid*numGenders+int(models.GenderFemale)]
		if male+female == 0 {
			continue
		}
		c := s.coordinates[name]
		out = append(out, models.ProvinceDemand{
			Province:  name,
			Male:      male,
			Female:    female,
			Total:     male + female,
			Latitude:  c.Latitude,
			Longitude: c.Longitude,
		})
	}
	return out, nil
}

// GenerationDistribution counts the customers of one profession per
// generation, in first-appearance order of generation.
func (s *RecordStore) GenerationDistribution(profession string) ([]models.GenerationCount, error) {
	if !s.HasProfession(profession) {
		return nil, &ParameterError{Name: "profession", Value: profession, Reason: "not a known profession"}
	}

	// -1 for a declared profession that has no customers
	target := int32(-1)
	for id, p := range s.professionDict {
		if p == profession {
			target = int32(id)
			break
		}
	}

	counts := make([]int, len(s.generationDict))
	for j, pid := range s.professionIDs {
		if pid == target {
			counts[s.generationIDs[j]]++
		}
	}

	out := make([]models.GenerationCount, 0, len(counts))
	for gid, n := range counts {
		if n > 0 {
			out = append(out, models.GenerationCount{Generation: s.generationDict[gid], Count: n})
		}
	}
	return out, nil
}

// ProfessionGender counts customers per (profession, gender) pair over the
// whole population. Pairs without customers are absent.
func (s *RecordStore) ProfessionGender() []models.ProfessionGenderCount {
	numGenders := len(models.Genders)
	matrix := make([]int, len(s.professionDict)*numGenders)
	for j, pid := range s.professionIDs {
		matrix[int(pid)*numGenders+int(s.genders[j])]++
	}

	out := make([]models.ProfessionGenderCount, 0, len(matrix))
	for pid, name := range s.professionDict {
		for _, g := range models.Genders {
			if n := matrix[pid*numGenders+int(g)]; n > 0 {
				out = append(out, models.ProfessionGenderCount{Profession: name, Gender: g.String(), Count: n})
			}
		}
	}
	return out
}

// IncomeExperience returns one point per customer whose age lies in
// [minAge, maxAge], in source order.
func (s *RecordStore) IncomeExperience(minAge, maxAge int) ([]models.IncomeExperiencePoint, error) {
	if minAge < 0 {
		return nil, &ParameterError{Name: "min_age", Value: minAge, Reason: "must not be negative"}
	}
	if minAge > maxAge {
		return nil, &ParameterError{Name: "min_age", Value: minAge, Reason: "greater than max_age"}
	}

	out := make([]models.IncomeExperiencePoint, 0)
	for j, age := range s.ages {
		if int(age) < minAge || int(age) > maxAge {
			continue
		}
		out = append(out, models.IncomeExperiencePoint{
			WorkExperience: int(s.experiences[j]),
			AnnualIncome:   s.incomes[j],
			Profession:     s.professionDict[s.professionIDs[j]],
		})
	}
	return out, nil
}
