package fonts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// DirSource serves font files from a local directory laid out as
// "<Family>-<Variant>.ttf", e.g. "Roboto-Bold.ttf". Spaces in family names
// are preserved in the file name.
type DirSource struct {
	Dir string
}

func (s DirSource) Fetch(_ context.Context, family string, v Variant) ([]byte, error) {
	name := fmt.Sprintf("%s-%s.ttf", family, v)
	path := filepath.Join(s.Dir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font file %s: %w", name, err)
	}
	return raw, nil
}

// HTTPSource downloads TTF files from a web font mirror. The request URL is
// "<BaseURL>/<Family>-<Variant>.ttf" with spaces in the family replaced by
// "+", matching the naming the upload tooling produces.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

func (s HTTPSource) Fetch(ctx context.Context, family string, v Variant) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	name := strings.ReplaceAll(family, " ", "+")
	fontURL := fmt.Sprintf("%s/%s-%s.ttf", strings.TrimRight(s.BaseURL, "/"), url.PathEscape(name), v)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fontURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build font request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", fontURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", fontURL, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read font body: %w", err)
	}
	return raw, nil
}
