package gtfsimport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	// DefaultCKANURL is the package_show endpoint of the Toronto open data portal
	DefaultCKANURL = "https://ckan0.cf.opendata.inter.prod-toronto.ca/api/3/action/package_show"
	// DefaultPackageID is the TTC schedules package
	DefaultPackageID = "ttc-routes-and-schedules"
)

// ErrNoZipResource is returned when a package lists no downloadable zip
var ErrNoZipResource = errors.New("no ZIP resource in package")

type packageShowResponse struct {
	Success bool `json:"success"`
	Result  struct {
		Resources []struct {
			Name            string `json:"name"`
			Format          string `json:"format"`
			URL             string `json:"url"`
			DatastoreActive bool   `json:"datastore_active"`
		} `json:"resources"`
	} `json:"result"`
}

// ResolveDownloadURL asks a CKAN package_show endpoint for packageID and
// returns the URL of its first ZIP resource that is not datastore-backed
func ResolveDownloadURL(ctx context.Context, client *http.Client, apiURL, packageID string) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}

	u, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("ckan: invalid api url: %w", err)
	}
	q := u.Query()
	q.Set("id", packageID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("ckan: building request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ckan: fetching package metadata: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ckan: HTTP %d for package %s", resp.StatusCode, packageID)
	}

	var body packageShowResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("ckan: decoding package metadata: %w", err)
	}
	if !body.Success {
		return "", fmt.Errorf("ckan: package_show for %s was not successful", packageID)
	}

	for _, res := range body.Result.Resources {
		if strings.EqualFold(res.Format, "ZIP") && !res.DatastoreActive {
			return res.URL, nil
		}
	}
	return "", fmt.Errorf("ckan: package %s: %w", packageID, ErrNoZipResource)
}
