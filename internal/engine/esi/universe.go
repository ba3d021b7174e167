package esi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sethvargo/go-retry"
)

// Reference-data endpoints. These are public and need no credential.

type RawPlanet struct {
	PlanetID int64  `json:"planet_id"`
	Name     string `json:"name"`
	SystemID int64  `json:"system_id"`
	TypeID   int64  `json:"type_id"`
}

type RawType struct {
	TypeID int64  `json:"type_id"`
	Name   string `json:"name"`
}

type rawIDEntry struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type rawIDsResult struct {
	Planets []rawIDEntry `json:"planets"`
}

// ResolvePlanetName maps an exact planet name to its ID. Returns 0 when
// ESI does not know the name.
func (c *Client) ResolvePlanetName(ctx context.Context, name string) (int64, error) {
	var out rawIDsResult
	if err := c.postPublic(ctx, "resolve planet name", "/universe/ids/", []string{name}, &out); err != nil {
		return 0, err
	}
	for _, entry := range out.Planets {
		if entry.Name == name {
			return entry.ID, nil
		}
	}
	return 0, nil
}

func (c *Client) Planet(ctx context.Context, planetID int64) (*RawPlanet, error) {
	var out RawPlanet
	path := fmt.Sprintf("/universe/planets/%d/", planetID)
	if err := c.getPublic(ctx, "planet", path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UniverseType(ctx context.Context, typeID int64, lang string) (*RawType, error) {
	var out RawType
	path := fmt.Sprintf("/universe/types/%d/?language=%s", typeID, lang)
	if err := c.getPublic(ctx, "universe type", path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) getPublic(ctx context.Context, op, path string, out any) error {
	return c.doPublic(ctx, op, http.MethodGet, path, nil, out)
}

func (c *Client) postPublic(ctx context.Context, op, path string, body, out any) error {
	payload, err := marshalBody(op, body)
	if err != nil {
		return err
	}
	return c.doPublic(ctx, op, http.MethodPost, path, payload, out)
}

func (c *Client) doPublic(ctx context.Context, op, method, path string, body []byte, out any) error {
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.retryBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		return c.doOnce(ctx, op, method, path, body, "", out)
	})
}
