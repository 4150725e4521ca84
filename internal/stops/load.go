package stops

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
)

// Load fetches the stop table from a local path or an http(s) URL and
// parses it. Fetch failures are returned as *SourceLoadError.
func Load(ctx context.Context, source string, client *http.Client, cols ColumnMap) (*Table, error) {
	data, err := fetch(ctx, source, client)
	if err != nil {
		return nil, &SourceLoadError{Source: source, Err: err}
	}

	table, err := Parse(string(data), cols)
	if err != nil {
		return nil, err
	}
	table.source = source

	slog.Info("stop table loaded",
		"source", source,
		"stops", table.Len(),
		"directions", len(table.directions),
	)
	if table.skipped > 0 || table.invalidCoords > 0 {
		slog.Debug("stop table rows degraded",
			"source", source,
			"skipped_rows", table.skipped,
			"invalid_coordinates", table.invalidCoords,
		)
	}
	return table, nil
}

func fetch(ctx context.Context, source string, client *http.Client) ([]byte, error) {
	if source == "" {
		return nil, fmt.Errorf("no source configured")
	}

	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return os.ReadFile(source)
	}

	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
