// Package geo looks up Indonesian administrative regions for delivery
// address forms, read through the shared cache since the data is close to
// static.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iosramgio/appkonveksimax-sub003/internal/adapters/cache"
)

const defaultBaseURL = "https://www.emsifa.com/api-wilayah-indonesia/api"

type Region struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      cache.Cache
	ttl        time.Duration
}

func NewClient(c cache.Cache, ttl time.Duration) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      c,
		ttl:        ttl,
	}
}

func (c *Client) Provinces(ctx context.Context) ([]Region, error) {
	return c.lookup(ctx, "provinces", "/provinces.json")
}

func (c *Client) Regencies(ctx context.Context, provinceID string) ([]Region, error) {
	if provinceID == "" {
		return nil, fmt.Errorf("provinceID kosong")
	}
	return c.lookup(ctx, "regencies:"+provinceID, "/regencies/"+provinceID+".json")
}

func (c *Client) Districts(ctx context.Context, regencyID string) ([]Region, error) {
	if regencyID == "" {
		return nil, fmt.Errorf("regencyID kosong")
	}
	return c.lookup(ctx, "districts:"+regencyID, "/districts/"+regencyID+".json")
}

func (c *Client) lookup(ctx context.Context, cacheKey, path string) ([]Region, error) {
	key := c.cache.Key("region", cacheKey)
	if raw, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		var regions []Region
		if json.Unmarshal([]byte(raw), &regions) == nil {
			return regions, nil
		}
	} else if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("region cache get")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return nil, fmt.Errorf("wilayah api status %d", res.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	var regions []Region
	if err := json.Unmarshal(body, &regions); err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, string(body), c.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("region cache set")
	}
	return regions, nil
}
