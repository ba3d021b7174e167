package esi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sethvargo/go-retry"

	"structwatch/internal/platform/config"
	"structwatch/internal/platform/models"
)

// TokenSource provides the ESI access token for a credential reference.
// An empty token means no credential is configured.
type TokenSource interface {
	AccessToken(ctx context.Context, credentialRef string) (string, error)
}

// StaticTokenSource serves tokens from configuration, keyed by
// credential reference.
type StaticTokenSource map[string]string

func (s StaticTokenSource) AccessToken(_ context.Context, credentialRef string) (string, error) {
	return s[credentialRef], nil
}

// Client is the HTTP implementation of Gateway.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	tokens        TokenSource
	credentialRef string
	maxRetries    uint64
	retryBackoff  time.Duration
}

func NewClient(cfg config.ESIConfig, tokens TokenSource, credentialRef string) *Client {
	return &Client{
		baseURL:       cfg.BaseURL,
		httpClient:    &http.Client{Timeout: cfg.RequestTimeout},
		tokens:        tokens,
		credentialRef: credentialRef,
		maxRetries:    cfg.MaxRetries,
		retryBackoff:  cfg.RetryBackoff,
	}
}

func (c *Client) CorporationStructures(ctx context.Context, corporationID int64, lang string) ([]RawStructure, error) {
	var out []RawStructure
	path := fmt.Sprintf("/corporations/%d/structures/?language=%s", corporationID, lang)
	if err := c.get(ctx, "corporation structures", path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UniverseStructure(ctx context.Context, structureID int64) (*RawUniverseStructure, error) {
	var out RawUniverseStructure
	path := fmt.Sprintf("/universe/structures/%d/", structureID)
	if err := c.get(ctx, "universe structure", path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CustomsOffices(ctx context.Context, corporationID int64) ([]RawCustomsOffice, error) {
	var out []RawCustomsOffice
	path := fmt.Sprintf("/corporations/%d/customs_offices/", corporationID)
	if err := c.get(ctx, "customs offices", path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Starbases(ctx context.Context, corporationID int64) ([]RawStarbase, error) {
	var out []RawStarbase
	path := fmt.Sprintf("/corporations/%d/starbases/", corporationID)
	if err := c.get(ctx, "starbases", path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) StarbaseDetail(ctx context.Context, corporationID, starbaseID, systemID int64) (*RawStarbaseDetail, error) {
	var out RawStarbaseDetail
	path := fmt.Sprintf("/corporations/%d/starbases/%d/?system_id=%d", corporationID, starbaseID, systemID)
	if err := c.get(ctx, "starbase detail", path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Assets(ctx context.Context, corporationID int64) ([]RawAsset, error) {
	var out []RawAsset
	path := fmt.Sprintf("/corporations/%d/assets/", corporationID)
	if err := c.get(ctx, "assets", path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AssetNames(ctx context.Context, corporationID int64, itemIDs []int64) ([]RawAssetName, error) {
	var out []RawAssetName
	path := fmt.Sprintf("/corporations/%d/assets/names/", corporationID)
	if err := c.post(ctx, "asset names", path, itemIDs, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Notifications(ctx context.Context, corporationID int64) ([]RawNotification, error) {
	var out []RawNotification
	path := fmt.Sprintf("/corporations/%d/notifications/", corporationID)
	if err := c.get(ctx, "notifications", path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, op, path string, out any) error {
	return c.do(ctx, op, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	payload, err := marshalBody(op, body)
	if err != nil {
		return err
	}
	return c.do(ctx, op, http.MethodPost, path, payload, out)
}

func marshalBody(op string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, newError(models.ErrorUnknown, op, err)
	}
	return payload, nil
}

// do issues one authenticated request, retrying only upstream 5xx
// failures with bounded exponential backoff.
func (c *Client) do(ctx context.Context, op, method, path string, body []byte, out any) error {
	token, err := c.tokens.AccessToken(ctx, c.credentialRef)
	if err != nil {
		return newError(models.ErrorUnknown, op, err)
	}
	if token == "" {
		return newError(models.ErrorNoCredential, op, nil)
	}
	if expired, err := tokenExpired(token); err == nil && expired {
		return newError(models.ErrorAuthExpired, op, nil)
	}

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.retryBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		return c.doOnce(ctx, op, method, path, body, token, out)
	})
}

func (c *Client) doOnce(ctx context.Context, op, method, path string, body []byte, token string, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return newError(models.ErrorUnknown, op, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// transport errors count as upstream trouble and are retried
		return retry.RetryableError(newError(models.ErrorUpstreamUnavailable, op, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return newError(models.ErrorUnknown, op, err)
		}
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return newError(models.ErrorAuthInvalid, op, httpStatusError(resp.StatusCode))
	case resp.StatusCode == http.StatusForbidden:
		return newError(models.ErrorInsufficientScope, op, httpStatusError(resp.StatusCode))
	case resp.StatusCode >= 500:
		return retry.RetryableError(newError(models.ErrorUpstreamUnavailable, op, httpStatusError(resp.StatusCode)))
	default:
		return newError(models.ErrorUnknown, op, httpStatusError(resp.StatusCode))
	}
}

func httpStatusError(code int) error {
	return fmt.Errorf("HTTP %d", code)
}

// tokenExpired inspects the access token's exp claim without verifying
// the signature; ESI tokens are JWTs and verification happens upstream.
func tokenExpired(token string) (bool, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false, err
	}
	return exp.Before(time.Now()), nil
}
