// Command textmystop searches the stop table from the terminal and
// builds the table from a GTFS feed.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/randytsao24/textmystop/internal/config"
	"github.com/randytsao24/textmystop/internal/gtfsimport"
	"github.com/randytsao24/textmystop/internal/location"
	"github.com/randytsao24/textmystop/internal/logging"
	"github.com/randytsao24/textmystop/internal/stops"
	"github.com/randytsao24/textmystop/internal/viewmodel"
)

type flags struct {
	mode    string
	source  string
	query   string
	lat     string
	lng     string
	postal  string
	radius  float64
	tiers   string
	limit   int
	group   string
	format  string
	out     string
	gtfs    string
	ckan    bool
	ckanURL string
	pkg     string
}

func main() {
	var f flags
	flag.StringVar(&f.mode, "mode", "search", "search|import|interactive")
	flag.StringVar(&f.source, "source", "", "stop table path or URL (overrides STOPS_SOURCE)")
	flag.StringVar(&f.query, "q", "", "search text")
	flag.StringVar(&f.lat, "lat", "", "latitude of the reference position")
	flag.StringVar(&f.lng, "lng", "", "longitude of the reference position")
	flag.StringVar(&f.postal, "postal", "", "postal code used as the reference position")
	flag.Float64Var(&f.radius, "radius", 0, "only stops within this many meters")
	flag.StringVar(&f.tiers, "tiers", "", "comma-separated radius tiers in meters, e.g. 500,1000,2000")
	flag.IntVar(&f.limit, "limit", 0, "maximum number of stops (0 = all)")
	flag.StringVar(&f.group, "group", "", "direction|none (default from GROUP_BY_DIRECTION)")
	flag.StringVar(&f.format, "format", "text", "text|json|xlsx")
	flag.StringVar(&f.out, "out", "", "output file (required for xlsx and import)")
	flag.StringVar(&f.gtfs, "gtfs", "", "GTFS zip path or URL for import")
	flag.BoolVar(&f.ckan, "ckan", false, "resolve the GTFS zip from the CKAN package for import")
	flag.StringVar(&f.ckanURL, "ckanURL", gtfsimport.DefaultCKANURL, "CKAN package_show endpoint")
	flag.StringVar(&f.pkg, "package", gtfsimport.DefaultPackageID, "CKAN package id")
	flag.Parse()

	cfg, err := config.Load()
	if err == nil {
		if f.source != "" {
			cfg.StopsSource = f.source
		}
		err = cfg.Validate()
	}
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}
	logging.Init(os.Stderr, cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := &http.Client{Timeout: cfg.HTTPTimeout}

	switch f.mode {
	case "search":
		err = runSearch(ctx, cfg, client, f)
	case "interactive":
		err = runInteractive(ctx, cfg, client, f)
	case "import":
		err = runImport(ctx, client, f)
	default:
		err = fmt.Errorf("unknown mode %q", f.mode)
	}
	if err != nil {
		slog.Error(f.mode+" failed", "error", err)
		os.Exit(1)
	}
}

func runSearch(ctx context.Context, cfg *config.Config, client *http.Client, f flags) error {
	opts, err := buildOptions(cfg, f)
	if err != nil {
		return err
	}
	locator, err := buildLocator(cfg, f)
	if err != nil {
		return err
	}

	table, err := stops.Load(ctx, cfg.StopsSource, client, cfg.Columns)
	if err != nil {
		return err
	}

	origin, err := locator.Locate(ctx)
	if err != nil {
		if _, none := locator.(location.UnavailableLocator); !none {
			slog.Warn("location unavailable, using source order", "error", err)
		}
	}

	out, err := openOutput(f.format, f.out, cfg.SMSRecipient)
	if err != nil {
		return err
	}
	out.Render(viewmodel.Build(table.Records(), f.query, origin, opts))
	return out.Close()
}

// runInteractive treats every stdin line as the new query. The table load
// and the location lookup run in the background and re-render as they
// finish.
func runInteractive(ctx context.Context, cfg *config.Config, client *http.Client, f flags) error {
	opts, err := buildOptions(cfg, f)
	if err != nil {
		return err
	}
	locator, err := buildLocator(cfg, f)
	if err != nil {
		return err
	}
	out, err := openOutput(f.format, f.out, cfg.SMSRecipient)
	if err != nil {
		return err
	}

	session := viewmodel.NewSession(out, opts, cfg.SearchDebounce)
	defer session.Close()
	if f.query != "" {
		session.QueryChanged(f.query)
	}

	loaded := make(chan struct{})
	go func() {
		defer close(loaded)
		table, err := stops.Load(ctx, cfg.StopsSource, client, cfg.Columns)
		if err != nil {
			session.LoadFailed(err)
			return
		}
		session.Loaded(table)
	}()
	located := session.Resolve(ctx, locator)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return out.Close()
		case line, ok := <-lines:
			if !ok {
				<-loaded
				<-located
				session.Flush()
				return out.Close()
			}
			session.QueryChanged(line)
		}
	}
}

func runImport(ctx context.Context, client *http.Client, f flags) error {
	if f.out == "" {
		return errors.New("-out is required for import")
	}

	source := f.gtfs
	if f.ckan {
		resolved, err := gtfsimport.ResolveDownloadURL(ctx, client, f.ckanURL, f.pkg)
		if err != nil {
			return err
		}
		slog.Info("resolved GTFS download", "package", f.pkg, "url", resolved)
		source = resolved
	}
	if source == "" {
		return errors.New("-gtfs or -ckan is required for import")
	}

	rows, err := gtfsimport.BuildFromSource(ctx, source, client)
	if err != nil {
		return err
	}

	file, err := os.Create(f.out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", f.out, err)
	}
	if err := gtfsimport.WriteCSV(file, rows); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", f.out, err)
	}
	if err := file.Close(); err != nil {
		return err
	}

	slog.Info("stop table written", "file", f.out, "stops", len(rows))
	return nil
}

func buildOptions(cfg *config.Config, f flags) (viewmodel.Options, error) {
	if f.radius != 0 && !viewmodel.ValidRadius(f.radius) {
		return viewmodel.Options{}, fmt.Errorf("-radius: invalid value %v", f.radius)
	}

	opts := viewmodel.Options{
		GroupByDirection: cfg.GroupByDirection,
		RadiusTiers:      cfg.RadiusTiers,
		RadiusMeters:     f.radius,
		Limit:            f.limit,
	}
	if f.radius > 0 {
		opts.RadiusTiers = nil
	}
	if f.tiers != "" {
		tiers, err := viewmodel.ParseRadiusTiers(f.tiers)
		if err != nil {
			return opts, fmt.Errorf("-tiers: %w", err)
		}
		opts.RadiusTiers = tiers
	}

	switch f.group {
	case "":
	case "direction":
		opts.GroupByDirection = true
	case "none":
		opts.GroupByDirection = false
	default:
		return opts, fmt.Errorf("-group: unknown value %q", f.group)
	}
	return opts, nil
}

func buildLocator(cfg *config.Config, f flags) (location.Locator, error) {
	switch {
	case f.lat != "" || f.lng != "":
		if f.lat == "" || f.lng == "" {
			return nil, errors.New("-lat and -lng must be given together")
		}
		coord, err := location.ParseCoordinate(f.lat, f.lng)
		if err != nil {
			return nil, err
		}
		return location.StaticLocator{Coordinate: coord}, nil
	case f.postal != "":
		codes := location.NewPostalCodeService()
		if err := codes.Load(cfg.PostalCodesFile); err != nil {
			slog.Warn("postal codes unavailable", "file", cfg.PostalCodesFile, "error", err)
		}
		return location.PostalLocator{Codes: codes, Code: f.postal}, nil
	default:
		return location.UnavailableLocator{}, nil
	}
}
