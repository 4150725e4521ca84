package transit

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/randytsao24/textmystop/internal/cache"
)

// ErrNoAlertsFeed is returned when no service alerts feed is configured
var ErrNoAlertsFeed = errors.New("service alerts feed not configured")

// ServiceAlert represents an active service alert
type ServiceAlert struct {
	ID          string   `json:"id"`
	Routes      []string `json:"routes"`
	Stops       []string `json:"stops,omitempty"`
	Header      string   `json:"header"`
	Description string   `json:"description"`
}

// AlertService fetches and caches service alerts
type AlertService struct {
	feedURL string
	client  *http.Client
	cache   *cache.Cache[[]ServiceAlert]
	now     func() time.Time
}

// NewAlertService creates a new alert service
func NewAlertService(feedURL string, timeout time.Duration, cacheTTL time.Duration) *AlertService {
	return &AlertService{
		feedURL: feedURL,
		client:  &http.Client{Timeout: timeout},
		cache:   cache.New[[]ServiceAlert](cacheTTL),
		now:     time.Now,
	}
}

// HasFeed returns true if a feed URL is configured
func (s *AlertService) HasFeed() bool {
	return s.feedURL != ""
}

// GetAlertsForStop returns active alerts naming the stop itself or any
// of the given routes
func (s *AlertService) GetAlertsForStop(ctx context.Context, stopID string, routes []string) ([]ServiceAlert, error) {
	if !s.HasFeed() {
		return nil, ErrNoAlertsFeed
	}

	allAlerts, err := s.cache.GetOrLoad("all", func() ([]ServiceAlert, error) {
		feed, err := fetchFeed(ctx, s.client, s.feedURL)
		if err != nil {
			return nil, err
		}
		return parseAlerts(feed, s.now()), nil
	})
	if err != nil {
		return nil, err
	}

	routeSet := make(map[string]bool, len(routes))
	for _, r := range routes {
		routeSet[r] = true
	}

	filtered := make([]ServiceAlert, 0)
	for _, alert := range allAlerts {
		if alertMatches(alert, stopID, routeSet) {
			filtered = append(filtered, alert)
		}
	}
	return filtered, nil
}

// Close stops the alert cache
func (s *AlertService) Close() {
	s.cache.Close()
}

func alertMatches(alert ServiceAlert, stopID string, routes map[string]bool) bool {
	for _, s := range alert.Stops {
		if s == stopID {
			return true
		}
	}
	for _, r := range alert.Routes {
		if routes[r] {
			return true
		}
	}
	return false
}

func parseAlerts(feed *gtfs.FeedMessage, now time.Time) []ServiceAlert {
	var alerts []ServiceAlert
	nowUnix := now.Unix()

	for _, entity := range feed.GetEntity() {
		alert := entity.GetAlert()
		if alert == nil {
			continue
		}

		active := len(alert.GetActivePeriod()) == 0
		for _, period := range alert.GetActivePeriod() {
			start := int64(period.GetStart())
			end := int64(period.GetEnd())
			if nowUnix >= start && (end == 0 || nowUnix < end) {
				active = true
				break
			}
		}
		if !active {
			continue
		}

		var routes, stops []string
		seenRoutes := make(map[string]bool)
		seenStops := make(map[string]bool)
		for _, ie := range alert.GetInformedEntity() {
			if routeID := ie.GetRouteId(); routeID != "" && !seenRoutes[routeID] {
				seenRoutes[routeID] = true
				routes = append(routes, routeID)
			}
			if stopID := ie.GetStopId(); stopID != "" && !seenStops[stopID] {
				seenStops[stopID] = true
				stops = append(stops, stopID)
			}
		}

		header := translatedText(alert.GetHeaderText())
		if header == "" {
			continue
		}

		alerts = append(alerts, ServiceAlert{
			ID:          entity.GetId(),
			Routes:      routes,
			Stops:       stops,
			Header:      header,
			Description: translatedText(alert.GetDescriptionText()),
		})
	}

	return alerts
}

func translatedText(ts *gtfs.TranslatedString) string {
	if ts == nil {
		return ""
	}
	for _, t := range ts.GetTranslation() {
		if t.GetLanguage() == "en" || t.GetLanguage() == "" {
			return t.GetText()
		}
	}
	if len(ts.GetTranslation()) > 0 {
		return ts.GetTranslation()[0].GetText()
	}
	return ""
}
