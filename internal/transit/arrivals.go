package transit

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/randytsao24/textmystop/internal/cache"
)

// ErrNoFeed is returned when no TripUpdates feed is configured
var ErrNoFeed = errors.New("trip updates feed not configured")

// Arrival represents an upcoming vehicle at a stop
type Arrival struct {
	Route       string    `json:"route"`
	TripID      string    `json:"trip_id,omitempty"`
	StopID      string    `json:"stop_id"`
	ArrivalTime time.Time `json:"arrival_time"`
	MinutesAway int       `json:"minutes_away"`
}

// ArrivalService reads upcoming arrivals from a GTFS-RT TripUpdates feed
type ArrivalService struct {
	feedURL string
	client  *http.Client
	cache   *cache.Cache[*gtfs.FeedMessage]
	now     func() time.Time
}

// NewArrivalService creates an arrival service. An empty feedURL gives a
// service that reports ErrNoFeed.
func NewArrivalService(feedURL string, timeout, cacheTTL time.Duration) *ArrivalService {
	return &ArrivalService{
		feedURL: feedURL,
		client:  &http.Client{Timeout: timeout},
		cache:   cache.New[*gtfs.FeedMessage](cacheTTL),
		now:     time.Now,
	}
}

// HasFeed returns true if a feed URL is configured
func (s *ArrivalService) HasFeed() bool {
	return s.feedURL != ""
}

// GetArrivals returns future arrivals at stopID, soonest first. A limit
// of zero or less returns all of them.
func (s *ArrivalService) GetArrivals(ctx context.Context, stopID string, limit int) ([]Arrival, error) {
	if !s.HasFeed() {
		return nil, ErrNoFeed
	}

	feed, err := s.cache.GetOrLoad("trip_updates", func() (*gtfs.FeedMessage, error) {
		return fetchFeed(ctx, s.client, s.feedURL)
	})
	if err != nil {
		return nil, err
	}

	arrivals := parseArrivals(feed, stopID, s.now())
	sort.SliceStable(arrivals, func(i, j int) bool {
		return arrivals[i].ArrivalTime.Before(arrivals[j].ArrivalTime)
	})

	if limit > 0 && len(arrivals) > limit {
		arrivals = arrivals[:limit]
	}
	return arrivals, nil
}

// Close stops the feed cache
func (s *ArrivalService) Close() {
	s.cache.Close()
}

func parseArrivals(feed *gtfs.FeedMessage, stopID string, now time.Time) []Arrival {
	arrivals := make([]Arrival, 0)

	for _, entity := range feed.GetEntity() {
		tripUpdate := entity.GetTripUpdate()
		if tripUpdate == nil {
			continue
		}

		trip := tripUpdate.GetTrip()

		for _, stopTimeUpdate := range tripUpdate.GetStopTimeUpdate() {
			if stopTimeUpdate.GetStopId() != stopID {
				continue
			}
			if stopTimeUpdate.GetScheduleRelationship() == gtfs.TripUpdate_StopTimeUpdate_SKIPPED {
				continue
			}

			arrivalTime := stopTimeUpdate.GetArrival().GetTime()
			if arrivalTime == 0 {
				arrivalTime = stopTimeUpdate.GetDeparture().GetTime()
			}
			if arrivalTime == 0 {
				continue
			}

			arrTime := time.Unix(arrivalTime, 0)
			if arrTime.Before(now) {
				continue // Skip past arrivals
			}

			arrivals = append(arrivals, Arrival{
				Route:       trip.GetRouteId(),
				TripID:      trip.GetTripId(),
				StopID:      stopTimeUpdate.GetStopId(),
				ArrivalTime: arrTime,
				MinutesAway: int(arrTime.Sub(now).Minutes()),
			})
		}
	}

	return arrivals
}
