package models

// Gender is the closed Male|Female enum of the customer table.
type Gender uint8

const (
	GenderFemale Gender = iota
	GenderMale
)

// Genders lists every gender in output order.
var Genders = []Gender{GenderFemale, GenderMale}

func (g Gender) String() string {
	if g == GenderMale {
		return "Male"
	}
	return "Female"
}

// CustomerRecord is one row of the customer table as read from a source.
type CustomerRecord struct {
	Profession     string  `json:"profession"`
	Gender         string  `json:"gender"`
	Province       string  `json:"province"`
	Age            int     `json:"age"`
	Generation     string  `json:"generation"`
	AnnualIncome   float64 `json:"annual_income"`
	WorkExperience int     `json:"work_experience"`
}

type ProvinceCoordinate struct {
	Province  string  `json:"province"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// --- pipeline results ---

type ProfessionVolume struct {
	Profession string  `json:"profession"`
	Count      int     `json:"count"`
	IncomeSum  float64 `json:"income_sum"`
}

type ProvinceDemand struct {
	Province  string  `json:"province"`
	Male      int     `json:"male"`
	Female    int     `json:"female"`
	Total     int     `json:"total"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type GenerationCount struct {
	Generation string `json:"generation"`
	Count      int    `json:"count"`
}

type ProfessionGenderCount struct {
	Profession string `json:"profession"`
	Gender     string `json:"gender"`
	Count      int    `json:"count"`
}

type IncomeExperiencePoint struct {
	WorkExperience int     `json:"work_experience"`
	AnnualIncome   float64 `json:"annual_income"`
	Profession     string  `json:"profession"`
}

// Controls describes the options and defaults of the two dashboard widgets.
type Controls struct {
	Professions       []string `json:"professions"`
	DefaultProfession string   `json:"default_profession"`
	MinAge            int      `json:"min_age"`
	MaxAge            int      `json:"max_age"`
	DefaultAgeRange   [2]int   `json:"default_age_range"`
}

// DashboardData bundles every chart's data for one control state.
type DashboardData struct {
	Profession       string                  `json:"profession"`
	AgeRange         [2]int                  `json:"age_range"`
	ProfessionVolume []ProfessionVolume      `json:"profession_volume"`
	GeographicDemand []ProvinceDemand        `json:"geographic_demand"`
	Generations      []GenerationCount       `json:"generations"`
	ProfessionGender []ProfessionGenderCount `json:"profession_gender"`
	IncomeExperience []IncomeExperiencePoint `json:"income_experience"`
}
