package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"structwatch/internal/engine/esi"
)

func structureWithServices(id int64, names ...string) esi.RawStructure {
	services := make([]esi.RawService, len(names))
	for i, name := range names {
		services[i] = esi.RawService{Name: name, State: "online"}
	}
	return esi.RawStructure{StructureID: id, Services: services}
}

func TestCollectServiceLocalizations(t *testing.T) {
	byLang := map[string][]esi.RawStructure{
		"en-us": {structureWithServices(1, "Clone Bay", "Market")},
		"de":    {structureWithServices(1, "Klonbucht", "Markt")},
		"ko":    {structureWithServices(1, "클론 베이", "마켓")},
	}

	collected := collectServiceLocalizations(byLang, "en-us")

	require.Contains(t, collected, int64(1))
	assert.NotContains(t, collected[1], "en-us")
	assert.Equal(t, []string{"Klonbucht", "Markt"}, collected[1]["de"])
	assert.Equal(t, []string{"클론 베이", "마켓"}, collected[1]["ko"])
}

func TestCondenseServiceLocalizations(t *testing.T) {
	byLang := map[string][]esi.RawStructure{
		"en-us": {structureWithServices(1, "Clone Bay", "Market")},
		"de":    {structureWithServices(1, "Klonbucht", "Markt")},
	}

	collected := collectServiceLocalizations(byLang, "en-us")
	condensed := condenseServiceLocalizations(byLang, "en-us", collected)

	require.Len(t, condensed[1], 2)
	assert.Equal(t, "Clone Bay", condensed[1][0].Name.Default)
	assert.Equal(t, "Klonbucht", condensed[1][0].Name.Resolve("de"))
	assert.Equal(t, "Market", condensed[1][1].Name.Default)
	assert.Equal(t, "Markt", condensed[1][1].Name.Resolve("de"))
}

// a language fetch that returned fewer services than the default keeps
// the default name for the tail
func TestCondenseServiceLocalizationsShortTranslation(t *testing.T) {
	byLang := map[string][]esi.RawStructure{
		"en-us": {structureWithServices(1, "Clone Bay", "Market")},
		"de":    {structureWithServices(1, "Klonbucht")},
	}

	collected := collectServiceLocalizations(byLang, "en-us")
	condensed := condenseServiceLocalizations(byLang, "en-us", collected)

	require.Len(t, condensed[1], 2)
	assert.Equal(t, "Klonbucht", condensed[1][0].Name.Resolve("de"))
	assert.Equal(t, "Market", condensed[1][1].Name.Resolve("de"))
}

func TestCondenseServiceLocalizationsNoServices(t *testing.T) {
	byLang := map[string][]esi.RawStructure{
		"en-us": {{StructureID: 1}},
	}

	condensed := condenseServiceLocalizations(byLang, "en-us", nil)
	assert.Empty(t, condensed[1])
}
