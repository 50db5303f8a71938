package engine

import (
	"context"

	"customerdash/internal/models"

	"golang.org/x/sync/errgroup"
)

// Controls returns the widget options: professions in byte order with the
// first one preselected, the observed age bounds, and the default age range
// clamped to those bounds.
func (s *RecordStore) Controls(defaultMin, defaultMax int) models.Controls {
	c := models.Controls{Professions: s.Professions()}
	if len(c.Professions) > 0 {
		c.DefaultProfession = c.Professions[0]
	}
	c.MinAge, c.MaxAge, _ = s.AgeBounds()
	lo, hi := s.ClampAgeRange(defaultMin, defaultMax)
	c.DefaultAgeRange = [2]int{lo, hi}
	return c
}

// ClampAgeRange fits lo and hi independently into the observed age bounds.
// A reversed pair stays reversed. The pipelines never clamp; this is for
// callers building a default.
func (s *RecordStore) ClampAgeRange(lo, hi int) (int, int) {
	mn, mx, ok := s.AgeBounds()
	if !ok {
		return 0, 0
	}
	lo = min(max(lo, mn), mx)
	hi = min(max(hi, mn), mx)
	return lo, hi
}

// Dashboard runs every pipeline for one control state. The store is shared
// read-only, so the pipelines run concurrently; the first error wins.
func (s *RecordStore) Dashboard(ctx context.Context, profession string, minAge, maxAge int) (*models.DashboardData, error) {
	data := &models.DashboardData{
		Profession: profession,
		AgeRange:   [2]int{minAge, maxAge},
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		data.ProfessionVolume = s.ProfessionVolume()
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		data.GeographicDemand, err = s.GeographicDemand()
		return err
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		data.Generations, err = s.GenerationDistribution(profession)
		return err
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		data.ProfessionGender = s.ProfessionGender()
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		data.IncomeExperience, err = s.IncomeExperience(minAge, maxAge)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}
