package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// MenuItem is one sellable drink with its base price.
type MenuItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Menu preserves the brand library's item ordering. The first item acts as
// the fallback when no entry matches a customer's flavour preference, so
// insertion order is part of the contract.
type Menu []MenuItem

// UnmarshalJSON accepts the brand library's object form ({"拿铁": 22.0, ...})
// and keeps the keys in document order, which a plain map would lose.
func (m *Menu) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("menu must be a JSON object, got %v", tok)
	}

	items := Menu{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("menu key is not a string: %v", keyTok)
		}
		var price float64
		if err := dec.Decode(&price); err != nil {
			return fmt.Errorf("menu item %q: %w", name, err)
		}
		items = append(items, MenuItem{Name: name, Price: price})
	}
	*m = items
	return nil
}

func (m Menu) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, item := range m {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(item.Name)
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		val, err := json.Marshal(item.Price)
		if err != nil {
			return nil, err
		}
		buf = append(buf, val...)
	}
	return append(buf, '}'), nil
}

// Brand is one entry of the static brand library.
type Brand struct {
	Name             string `json:"brand_name"`
	Category         string `json:"category"`
	BusinessModel    string `json:"business_model"`
	Promotions       string `json:"promotions"`
	Menu             Menu   `json:"menu"`
	SupportsDelivery bool   `json:"supports_delivery"`
}

// BrandLibrary maps brand identifier to its static attributes.
type BrandLibrary map[string]Brand

// LoadBrandLibrary reads the brand library JSON file.
func LoadBrandLibrary(path string) (BrandLibrary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening brand library: %w", err)
	}
	var library BrandLibrary
	if err := json.Unmarshal(data, &library); err != nil {
		return nil, fmt.Errorf("parsing brand library: %w", err)
	}
	if len(library) == 0 {
		return nil, fmt.Errorf("brand library %s is empty", path)
	}
	return library, nil
}

// ShopInstance is a brand placed on the map with its run-local physical
// state. Instances are created once at market initialisation and read-only
// while the simulation runs.
type ShopInstance struct {
	ID               string
	BrandID          string
	BrandName        string
	Category         string
	BusinessModel    string
	Promotions       string
	Menu             Menu
	SupportsDelivery bool
	Location         Point
	QueueTime        int // minutes
}

