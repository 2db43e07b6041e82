package models

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopulationCSVRoundTrip(t *testing.T) {
	customers := []*CustomerProfile{
		{
			ID:               "cus_001",
			Name:             "王小明",
			AgeGroup:         "18-24",
			Occupation:       "Student",
			Income:           2500,
			Preference:       "Latte",
			Frequency:        "Daily",
			PriceSensitivity: "High",
			PreferredBrand:   "Luckin",
			BrandLoyalty:     0.72,
			Persona:          "你是一名18-24岁的Student，生活在上海。",
		},
		{
			ID:               "cus_002",
			Name:             "李阿姨",
			AgeGroup:         "55+",
			Occupation:       "Retired",
			Income:           4800,
			Preference:       "Americano",
			Frequency:        "Weekly",
			PriceSensitivity: "Medium",
			Persona:          "你是一名55+岁的Retired，生活在上海。",
		},
	}

	path := filepath.Join(t.TempDir(), "population.csv")
	require.NoError(t, WritePopulationCSV(path, customers))

	loaded, err := LoadPopulation(path)
	require.NoError(t, err)
	assert.Equal(t, customers, loaded)
}

func TestWritePopulationCSVStartsWithBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "population.csv")
	require.NoError(t, WritePopulationCSV(path, []*CustomerProfile{{ID: "c1", Persona: "测试"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\uFEFF"))
}

func TestLoadPopulationMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,name\nc1,王小明\n"), 0o644))

	_, err := LoadPopulation(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column")
}

func TestLoadPopulationEmptyFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, WritePopulationCSV(path, nil))

	_, err := LoadPopulation(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no customers")
}

func TestSystemPromptDistanceWillingness(t *testing.T) {
	student := &CustomerProfile{AgeGroup: "18-24", Occupation: "Student", Persona: "人设"}
	assert.Contains(t, student.SystemPrompt(), "超过800米基本不想走")

	retired := &CustomerProfile{AgeGroup: "55+", Occupation: "Retired", Persona: "人设"}
	assert.Contains(t, retired.SystemPrompt(), "完全不接受外卖")

	worker := &CustomerProfile{AgeGroup: "25-34", Occupation: "White Collar", Persona: "人设"}
	assert.Contains(t, worker.SystemPrompt(), "就近购买或外卖")
}

func TestSystemPromptBrandLoyalty(t *testing.T) {
	loyal := &CustomerProfile{
		AgeGroup:       "25-34",
		Occupation:     "White Collar",
		Persona:        "人设",
		PreferredBrand: "Starbucks",
		BrandLoyalty:   0.85,
	}
	prompt := loyal.SystemPrompt()
	assert.Contains(t, prompt, "星巴克")
	assert.Contains(t, prompt, "0.85")

	noBrand := &CustomerProfile{AgeGroup: "25-34", Occupation: "White Collar", Persona: "人设"}
	assert.NotContains(t, noBrand.SystemPrompt(), "品牌忠诚度")
}

func TestPreferredBrandName(t *testing.T) {
	c := &CustomerProfile{PreferredBrand: "Nowwa"}
	assert.Equal(t, "Nowwa 挪瓦咖啡", c.PreferredBrandName())

	c = &CustomerProfile{PreferredBrand: "自家烘焙坊"}
	assert.Equal(t, "自家烘焙坊", c.PreferredBrandName(), "unknown identifiers pass through")

	c = &CustomerProfile{}
	assert.Empty(t, c.PreferredBrandName())
}

func TestDailyBudget(t *testing.T) {
	c := &CustomerProfile{Income: 9000}
	assert.InDelta(t, 300.0, c.DailyBudget(), 1e-9)
}
