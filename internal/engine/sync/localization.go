package sync

import (
	"structwatch/internal/engine/esi"
	"structwatch/internal/pkg/localized"
	"structwatch/internal/platform/models"
)

// collectServiceLocalizations gathers, per structure, the service name
// lists of every non-default language fetch. Service order is positional
// within a structure, which is how ESI correlates translations.
func collectServiceLocalizations(structuresByLang map[string][]esi.RawStructure, defaultLang string) map[int64]map[string][]string {
	out := make(map[int64]map[string][]string)
	for lang, structures := range structuresByLang {
		if lang == defaultLang {
			continue
		}
		for _, s := range structures {
			if len(s.Services) == 0 {
				continue
			}
			names := make([]string, len(s.Services))
			for i, svc := range s.Services {
				names[i] = svc.Name
			}
			if out[s.StructureID] == nil {
				out[s.StructureID] = make(map[string][]string)
			}
			out[s.StructureID][lang] = names
		}
	}
	return out
}

// condenseServiceLocalizations merges the default-language structures
// with the collected translations into service records carrying
// localized names.
func condenseServiceLocalizations(structuresByLang map[string][]esi.RawStructure, defaultLang string, collected map[int64]map[string][]string) map[int64][]models.StructureService {
	out := make(map[int64][]models.StructureService)
	for _, s := range structuresByLang[defaultLang] {
		services := make([]models.StructureService, 0, len(s.Services))
		for i, svc := range s.Services {
			name := localized.New(svc.Name)
			for lang, names := range collected[s.StructureID] {
				if i < len(names) {
					name = name.WithVariant(lang, names[i])
				}
			}
			services = append(services, models.StructureService{
				StructureID: s.StructureID,
				Name:        name,
				State:       models.ServiceState(svc.State),
			})
		}
		out[s.StructureID] = services
	}
	return out
}
