// Package factories synthesises the customer population the simulation
// samples from, mirroring the demographic structure of the Shanghai survey
// data the project started with.
package factories

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/jaswdr/faker"
	"github.com/linqiyu/coffeesim/internal/models"
	"github.com/lucsky/cuid"
)

type incomeStats struct {
	mean  float64
	sigma float64
}

var (
	ageGroups = []string{"18-24", "25-34", "35-44", "45-54", "55-64", "65+"}
	ageProbs  = []float64{0.08, 0.30, 0.25, 0.15, 0.10, 0.12}

	occupations = []string{"Student", "White Collar", "Tech/Finance", "Freelance", "Service/Blue", "Retired"}

	// lognormal income by occupation: a long tail of high earners
	incomeByOccupation = map[string]incomeStats{
		"Student":      {mean: 2500, sigma: 0.4},
		"White Collar": {mean: 13000, sigma: 0.3},
		"Tech/Finance": {mean: 24000, sigma: 0.4},
		"Freelance":    {mean: 11000, sigma: 0.8},
		"Service/Blue": {mean: 7000, sigma: 0.2},
		"Retired":      {mean: 6000, sigma: 0.3},
	}

	// brands a synthetic customer may be loyal to, weighted toward the big
	// chains that dominate the district
	brandPool = []string{"Luckin", "Starbucks", "Manner", "Nowwa", "Tims", "MStand", "Seesaw"}
)

// CustomerFactory builds customer profiles from a seedable random source so
// generated populations are reproducible.
type CustomerFactory struct {
	fake faker.Faker
	rng  *rand.Rand
}

func NewCustomerFactory(seed int64) *CustomerFactory {
	src := rand.NewSource(seed)
	return &CustomerFactory{
		fake: faker.NewWithSeed(src),
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// GeneratePopulation creates n customer profiles.
func (f *CustomerFactory) GeneratePopulation(n int) []*models.CustomerProfile {
	customers := make([]*models.CustomerProfile, n)
	for i := 0; i < n; i++ {
		customers[i] = f.CreateCustomer()
	}
	return customers
}

// CreateCustomer samples one profile: age group, age-conditional occupation,
// lognormal income, derived preferences, and an optional brand attachment.
func (f *CustomerFactory) CreateCustomer() *models.CustomerProfile {
	ageGroup := f.weightedChoice(ageGroups, ageProbs)
	occupation := f.occupationForAge(ageGroup)
	income := f.income(occupation)
	preference, frequency, sensitivity := f.preferences(ageGroup, occupation, income)
	brand, loyalty := f.brandAttachment()

	persona := fmt.Sprintf(
		"你是一名%s岁的%s，生活在上海。月收入约%d元。你对咖啡的需求频率是%s。你最喜欢的口味是%s。在价格方面，你的敏感度属于%s。",
		ageGroup, occupation, income, frequency, preference, sensitivity,
	)

	return &models.CustomerProfile{
		ID:               cuid.New(),
		Name:             f.fake.Person().Name(),
		AgeGroup:         ageGroup,
		Occupation:       occupation,
		Income:           income,
		Preference:       preference,
		Frequency:        frequency,
		PriceSensitivity: sensitivity,
		PreferredBrand:   brand,
		BrandLoyalty:     loyalty,
		Persona:          persona,
	}
}

// occupationForAge applies P(occupation | age group).
func (f *CustomerFactory) occupationForAge(ageGroup string) string {
	switch ageGroup {
	case "18-24":
		return f.weightedChoice(occupations, []float64{0.60, 0.20, 0.05, 0.05, 0.10, 0.00})
	case "25-34":
		return f.weightedChoice(occupations, []float64{0.02, 0.45, 0.25, 0.15, 0.13, 0.00})
	case "35-44":
		return f.weightedChoice(occupations, []float64{0.00, 0.40, 0.30, 0.15, 0.15, 0.00})
	case "55-64", "65+":
		pRetire := 0.4
		if ageGroup == "65+" {
			pRetire = 0.8
		}
		pWork := (1 - pRetire) / 4
		return f.weightedChoice(occupations, []float64{0.00, pWork, pWork, pWork, pWork, pRetire})
	default:
		return f.weightedChoice(occupations, []float64{0.00, 0.30, 0.15, 0.20, 0.35, 0.00})
	}
}

func (f *CustomerFactory) income(occupation string) int {
	stats := incomeByOccupation[occupation]
	// mean = exp(mu + sigma^2/2), so mu = ln(mean) - sigma^2/2
	mu := math.Log(stats.mean) - stats.sigma*stats.sigma/2
	income := math.Exp(f.rng.NormFloat64()*stats.sigma + mu)
	if income < 1500 {
		income = 1500
	}
	return int(income)
}

func (f *CustomerFactory) preferences(ageGroup, occupation string, income int) (preference, frequency, sensitivity string) {
	switch {
	case occupation == "Tech/Finance" || occupation == "White Collar" || ageGroup == "25-34":
		frequency = "High"
	case occupation == "Retired":
		frequency = "Low"
	default:
		frequency = "Medium"
	}

	r := f.rng.Float64()
	switch {
	case occupation == "Student":
		if r < 0.6 {
			preference = "Specialty"
		} else {
			preference = "Latte"
		}
	case occupation == "Tech/Finance" && frequency == "High":
		if r < 0.5 {
			preference = "Americano"
		} else {
			preference = "Latte"
		}
	case ageGroup == "55-64" || ageGroup == "65+":
		if r < 0.3 {
			preference = "Americano"
		} else {
			preference = "Tea"
		}
	default:
		preference = f.weightedChoice([]string{"Latte", "Americano", "Specialty"}, []float64{0.5, 0.3, 0.2})
	}

	switch {
	case income > 25000:
		sensitivity = "Low"
	case income < 8000:
		sensitivity = "High"
	default:
		sensitivity = "Medium"
	}
	return preference, frequency, sensitivity
}

// brandAttachment gives roughly six in ten customers a preferred brand with
// a loyalty strength in [0,1].
func (f *CustomerFactory) brandAttachment() (string, float64) {
	if f.rng.Float64() >= 0.6 {
		return "", 0
	}
	brand := brandPool[f.rng.Intn(len(brandPool))]
	loyalty := math.Round(f.rng.Float64()*100) / 100
	return brand, loyalty
}

func (f *CustomerFactory) weightedChoice(values []string, probs []float64) string {
	r := f.rng.Float64()
	cumulative := 0.0
	for i, p := range probs {
		cumulative += p
		if r < cumulative {
			return values[i]
		}
	}
	return values[len(values)-1]
}
