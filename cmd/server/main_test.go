package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"customerdash/internal/models"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"customers.csv": "Profession,gender,province,age,generation,Annual_Income,Work_Experience\n" +
			"Engineer,Male,Jakarta,30,Y,50000,5\n" +
			"Engineer,Female,Jakarta,45,X,60000,15\n",
		"coordinate.csv": "province,latitude,longitude\nJakarta,-6.2,106.8\n",
		"config.yaml": "data:\n  customers: " + filepath.Join(dir, "customers.csv") +
			"\n  coordinates: " + filepath.Join(dir, "coordinate.csv") + "\nlog:\n  level: error\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return filepath.Join(dir, "config.yaml")
}

func TestReportCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"report", "--config", writeFixtures(t), "--profession", "Engineer", "--min-age", "25", "--max-age", "40"})
	require.NoError(t, rootCmd.Execute())

	var data models.DashboardData
	require.NoError(t, json.Unmarshal(out.Bytes(), &data), out.String())
	assert.Equal(t, "Engineer", data.Profession)
	assert.Equal(t, []models.ProfessionVolume{{Profession: "Engineer", Count: 2, IncomeSum: 110000}}, data.ProfessionVolume)
	assert.Equal(t, []models.GenerationCount{{Generation: "Y", Count: 1}, {Generation: "X", Count: 1}}, data.Generations)
	assert.Equal(t, []models.IncomeExperiencePoint{{WorkExperience: 5, AnnualIncome: 50000, Profession: "Engineer"}}, data.IncomeExperience)
}
