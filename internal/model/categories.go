package model

import (
	"path/filepath"
	"strings"
)

// Category identifies one of the five record files that make up an export batch.
type Category string

const (
	Prescriptions Category = "prescriptions"
	Medications   Category = "medications"
	Sectors       Category = "sectors"
	Units         Category = "units"
	Frequency     Category = "frequency"
)

// CategoryInfo describes a category for display and file-name routing.
type CategoryInfo struct {
	Key     Category `json:"key"`
	Label   string   `json:"label"`
	Aliases []string `json:"-"` // lower-case fragments matched against file names
}

// AllCategories lists the categories in canonical order. Every scan over
// categories (validation, reports, staging) follows this order.
var AllCategories = []CategoryInfo{
	{Key: Prescriptions, Label: "Prescriptions", Aliases: []string{"prescricao", "prescricoes", "prescription", "presc"}},
	{Key: Medications, Label: "Medications", Aliases: []string{"medicamento", "medicamentos", "medication", "med"}},
	{Key: Sectors, Label: "Sectors", Aliases: []string{"setor", "setores", "sector"}},
	{Key: Units, Label: "Units", Aliases: []string{"unidade", "unidades", "unidademedida", "unit", "uni"}},
	{Key: Frequency, Label: "Frequency", Aliases: []string{"frequencia", "frequencias", "frequency", "freq"}},
}

// CategoryKeys returns just the keys of AllCategories.
func CategoryKeys() []Category {
	keys := make([]Category, len(AllCategories))
	for i, c := range AllCategories {
		keys[i] = c.Key
	}
	return keys
}

// CategoryByKey returns the CategoryInfo for the given key, or ok=false.
func CategoryByKey(key string) (CategoryInfo, bool) {
	for _, c := range AllCategories {
		if string(c.Key) == key {
			return c, true
		}
	}
	return CategoryInfo{}, false
}

// Label returns the display label of c, or the raw key when c is unknown.
func (c Category) Label() string {
	if info, ok := CategoryByKey(string(c)); ok {
		return info.Label
	}
	return string(c)
}

// Match is the outcome of routing a file name to a category.
type Match struct {
	Category  Category
	Ambiguous bool // another category matched with an alias of the same length
}

// MatchCategory routes a file name to a category by alias. The longest alias
// contained in the lower-cased base name (extension stripped) wins.
func MatchCategory(fileName string) (Match, bool) {
	base := strings.ToLower(filepath.Base(fileName))
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var best Match
	bestLen := 0
	for _, c := range AllCategories {
		score := 0
		for _, alias := range c.Aliases {
			if strings.Contains(base, alias) && len(alias) > score {
				score = len(alias)
			}
		}
		switch {
		case score > bestLen:
			best = Match{Category: c.Key}
			bestLen = score
		case score > 0 && score == bestLen:
			best.Ambiguous = true
		}
	}
	if bestLen == 0 {
		return Match{}, false
	}
	return best, true
}
