package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Load reads a catalog from a local file path or an http(s) URL.
func Load(ctx context.Context, source string) (*Catalog, error) {
	if strings.TrimSpace(source) == "" {
		return nil, errors.New("catalog source is empty")
	}

	if !isRemote(source) {
		f, err := os.Open(source)
		if err != nil {
			return nil, errors.Wrap(err, "opening catalog")
		}
		defer f.Close()
		return Decode(f)
	}

	return fetch(ctx, source)
}

// Decode parses and validates a JSON catalog.
func Decode(r io.Reader) (*Catalog, error) {
	var c Catalog
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, errors.Wrap(err, "decoding catalog")
	}

	if err := validator.New().Struct(&c); err != nil {
		return nil, errors.Wrap(err, "invalid catalog")
	}

	return &c, nil
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func fetch(ctx context.Context, url string) (*Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	req.Header.Set("User-Agent", "busfinder/1.0")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	return Decode(resp.Body)
}
