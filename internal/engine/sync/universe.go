package sync

import (
	"context"
	stdsync "sync"

	"structwatch/internal/engine/esi"
	"structwatch/internal/pkg/localized"
)

// ReferenceGateway is the public reference-data surface of ESI used to
// resolve planets and type names.
type ReferenceGateway interface {
	ResolvePlanetName(ctx context.Context, name string) (int64, error)
	Planet(ctx context.Context, planetID int64) (*esi.RawPlanet, error)
	UniverseType(ctx context.Context, typeID int64, lang string) (*esi.RawType, error)
}

// ESIUniverse resolves planets through ESI with an in-process cache.
// Reference data is immutable for the lifetime of a worker process.
type ESIUniverse struct {
	gw          ReferenceGateway
	languages   []string
	defaultLang string

	mu        stdsync.Mutex
	planets   map[string]*Planet
	typeNames map[int64]localized.String
}

func NewESIUniverse(gw ReferenceGateway, defaultLang string, languages []string) *ESIUniverse {
	return &ESIUniverse{
		gw:          gw,
		languages:   languages,
		defaultLang: defaultLang,
		planets:     make(map[string]*Planet),
		typeNames:   make(map[int64]localized.String),
	}
}

// PlanetByName resolves an exact planet name, or nil when ESI does not
// know it.
func (u *ESIUniverse) PlanetByName(ctx context.Context, name string) (*Planet, error) {
	u.mu.Lock()
	cached, ok := u.planets[name]
	u.mu.Unlock()
	if ok {
		return cached, nil
	}

	planetID, err := u.gw.ResolvePlanetName(ctx, name)
	if err != nil {
		return nil, err
	}
	if planetID == 0 {
		// negative results are not cached; a later fetch may succeed
		return nil, nil
	}

	raw, err := u.gw.Planet(ctx, planetID)
	if err != nil {
		return nil, err
	}
	typeName, err := u.typeName(ctx, raw.TypeID)
	if err != nil {
		return nil, err
	}

	planet := &Planet{ID: raw.PlanetID, Name: raw.Name, TypeName: typeName}
	u.mu.Lock()
	u.planets[name] = planet
	u.mu.Unlock()
	return planet, nil
}

func (u *ESIUniverse) typeName(ctx context.Context, typeID int64) (localized.String, error) {
	u.mu.Lock()
	cached, ok := u.typeNames[typeID]
	u.mu.Unlock()
	if ok {
		return cached, nil
	}

	base, err := u.gw.UniverseType(ctx, typeID, u.defaultLang)
	if err != nil {
		return localized.String{}, err
	}
	name := localized.New(base.Name)
	for _, lang := range u.languages {
		if lang == u.defaultLang {
			continue
		}
		variant, err := u.gw.UniverseType(ctx, typeID, lang)
		if err != nil {
			return localized.String{}, err
		}
		name = name.WithVariant(lang, variant.Name)
	}

	u.mu.Lock()
	u.typeNames[typeID] = name
	u.mu.Unlock()
	return name, nil
}
