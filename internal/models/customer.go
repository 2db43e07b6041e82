package models

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// BrandDisplayNames maps brand library identifiers to the display names
// used in prompts and decision records.
var BrandDisplayNames = map[string]string{
	"Luckin":      "瑞幸咖啡",
	"Starbucks":   "星巴克",
	"Nowwa":       "Nowwa 挪瓦咖啡",
	"Manner":      "Manner Coffee",
	"Tims":        "Tims 天好咖啡",
	"Seesaw":      "Seesaw Coffee",
	"MStand":      "M Stand",
	"Arabica":     "%ARABICA",
	"PiYe":        "皮爷咖啡",
	"BluebottleC": "蓝瓶咖啡",
	"Yongbo":      "永璞咖啡",
}

// CustomerProfile is one synthetic consumer. Profiles are immutable once
// constructed; loyalty and sensitivity feed the scorer deterministically.
type CustomerProfile struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	AgeGroup         string  `json:"age_group"`
	Occupation       string  `json:"occupation"`
	Income           int     `json:"income"`
	Preference       string  `json:"preference"`
	Frequency        string  `json:"frequency"`
	PriceSensitivity string  `json:"price_sensitivity"`
	PreferredBrand   string  `json:"brand_preference"`
	BrandLoyalty     float64 `json:"brand_loyalty"`
	Persona          string  `json:"persona_description"`
	Location         Point   `json:"location"`
}

// DailyBudget derives a rough daily spend allowance from monthly income.
func (c *CustomerProfile) DailyBudget() float64 {
	return float64(c.Income) / 30.0
}

// SystemPrompt renders the persona text handed to the oracle as the system
// message: base persona, distance willingness by demographic, brand loyalty.
func (c *CustomerProfile) SystemPrompt() string {
	var distancePref string
	switch {
	case c.AgeGroup == "18-24" || c.Occupation == "Student":
		distancePref = "你比较懒，超过800米基本不想走，除非有巨额优惠或特色打卡点。"
	case c.Occupation == "Retired":
		distancePref = "你时间充裕，把买咖啡当散步，完全不接受外卖，愿意走远路去环境好的店。"
	default:
		distancePref = "作为打工人，工作日你倾向于就近购买或外卖，非常看重排队时间。"
	}

	var brandPref string
	if name := c.PreferredBrandName(); name != "" {
		brandPref = fmt.Sprintf("你对%s有一定偏好，品牌忠诚度约%.2f。", name, c.BrandLoyalty)
	}

	return c.Persona + "\n" + distancePref + "\n" + brandPref
}

// PreferredBrandName resolves the display name of the preferred brand, or
// returns the raw identifier when no mapping is known.
func (c *CustomerProfile) PreferredBrandName() string {
	if c.PreferredBrand == "" {
		return ""
	}
	if name, ok := BrandDisplayNames[c.PreferredBrand]; ok {
		return name
	}
	return c.PreferredBrand
}

var populationHeader = []string{
	"id", "name", "age_group", "occupation", "income",
	"preference", "frequency", "price_sensitivity",
	"brand_preference", "brand_loyalty", "persona_description",
}

// LoadPopulation reads a population CSV produced by the generate command.
// Locations are not part of the file; the simulation loop assigns them from
// its seeded random source.
func LoadPopulation(path string) ([]*CustomerProfile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening population file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading population header: %w", err)
	}
	// files written for Excel compatibility carry a UTF-8 BOM
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"id", "age_group", "occupation", "income", "preference", "price_sensitivity"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("population file missing column %q", required)
		}
	}

	field := func(fields []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(fields) {
			return ""
		}
		return fields[i]
	}

	var customers []*CustomerProfile
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading population row: %w", err)
		}

		income, _ := strconv.Atoi(field(fields, "income"))
		loyalty, _ := strconv.ParseFloat(field(fields, "brand_loyalty"), 64)

		customers = append(customers, &CustomerProfile{
			ID:               field(fields, "id"),
			Name:             field(fields, "name"),
			AgeGroup:         field(fields, "age_group"),
			Occupation:       field(fields, "occupation"),
			Income:           income,
			Preference:       field(fields, "preference"),
			Frequency:        field(fields, "frequency"),
			PriceSensitivity: field(fields, "price_sensitivity"),
			PreferredBrand:   field(fields, "brand_preference"),
			BrandLoyalty:     loyalty,
			Persona:          field(fields, "persona_description"),
		})
	}

	if len(customers) == 0 {
		return nil, fmt.Errorf("population file %s contains no customers", path)
	}
	return customers, nil
}

// WritePopulationCSV writes profiles with a UTF-8 BOM so spreadsheet tools
// render the Chinese persona text correctly.
func WritePopulationCSV(path string, customers []*CustomerProfile) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating population file: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString("\uFEFF"); err != nil {
		return err
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(populationHeader); err != nil {
		return err
	}
	for _, c := range customers {
		row := []string{
			c.ID,
			c.Name,
			c.AgeGroup,
			c.Occupation,
			strconv.Itoa(c.Income),
			c.Preference,
			c.Frequency,
			c.PriceSensitivity,
			c.PreferredBrand,
			strconv.FormatFloat(c.BrandLoyalty, 'f', 2, 64),
			c.Persona,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
