package transit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

var testNow = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func stopTime(stopID string, at time.Time) *gtfs.TripUpdate_StopTimeUpdate {
	return &gtfs.TripUpdate_StopTimeUpdate{
		StopId:  proto.String(stopID),
		Arrival: &gtfs.TripUpdate_StopTimeEvent{Time: proto.Int64(at.Unix())},
	}
}

func tripEntity(id, route string, updates ...*gtfs.TripUpdate_StopTimeUpdate) *gtfs.FeedEntity {
	return &gtfs.FeedEntity{
		Id: proto.String(id),
		TripUpdate: &gtfs.TripUpdate{
			Trip: &gtfs.TripDescriptor{
				TripId:  proto.String("trip-" + id),
				RouteId: proto.String(route),
			},
			StopTimeUpdate: updates,
		},
	}
}

func text(s string) *gtfs.TranslatedString {
	return &gtfs.TranslatedString{
		Translation: []*gtfs.TranslatedString_Translation{
			{Text: proto.String(s), Language: proto.String("en")},
		},
	}
}

func alertEntity(id, header string, start, end time.Time, selectors ...*gtfs.EntitySelector) *gtfs.FeedEntity {
	period := &gtfs.TimeRange{}
	if !start.IsZero() {
		period.Start = proto.Uint64(uint64(start.Unix()))
	}
	if !end.IsZero() {
		period.End = proto.Uint64(uint64(end.Unix()))
	}
	return &gtfs.FeedEntity{
		Id: proto.String(id),
		Alert: &gtfs.Alert{
			ActivePeriod:    []*gtfs.TimeRange{period},
			InformedEntity:  selectors,
			HeaderText:      text(header),
			DescriptionText: text(header + " details"),
		},
	}
}

func feedMessage(entities ...*gtfs.FeedEntity) *gtfs.FeedMessage {
	return &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Timestamp:           proto.Uint64(uint64(testNow.Unix())),
		},
		Entity: entities,
	}
}

// feedServer serves msg as protobuf and counts requests
func feedServer(t *testing.T, msg *gtfs.FeedMessage) (*httptest.Server, *int32) {
	t.Helper()
	body, err := proto.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal feed: %v", err)
	}
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/x-protobuf")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestGetArrivals(t *testing.T) {
	skipped := stopTime("1001", testNow.Add(4*time.Minute))
	skipped.ScheduleRelationship = gtfs.TripUpdate_StopTimeUpdate_SKIPPED.Enum()

	departureOnly := &gtfs.TripUpdate_StopTimeUpdate{
		StopId:    proto.String("1001"),
		Departure: &gtfs.TripUpdate_StopTimeEvent{Time: proto.Int64(testNow.Add(12 * time.Minute).Unix())},
	}

	msg := feedMessage(
		tripEntity("a", "504", stopTime("1001", testNow.Add(9*time.Minute)), stopTime("1002", testNow.Add(10*time.Minute))),
		tripEntity("b", "304", stopTime("1001", testNow.Add(3*time.Minute))),
		tripEntity("c", "504", stopTime("1001", testNow.Add(-2*time.Minute))),
		tripEntity("d", "504", skipped),
		tripEntity("e", "304", departureOnly),
	)
	srv, _ := feedServer(t, msg)

	svc := NewArrivalService(srv.URL, 5*time.Second, time.Minute)
	defer svc.Close()
	svc.now = func() time.Time { return testNow }

	arrivals, err := svc.GetArrivals(context.Background(), "1001", 0)
	if err != nil {
		t.Fatalf("GetArrivals: %v", err)
	}

	wantRoutes := []string{"304", "504", "304"}
	wantMinutes := []int{3, 9, 12}
	if len(arrivals) != len(wantRoutes) {
		t.Fatalf("got %d arrivals, want %d: %+v", len(arrivals), len(wantRoutes), arrivals)
	}
	for i, a := range arrivals {
		if a.Route != wantRoutes[i] || a.MinutesAway != wantMinutes[i] {
			t.Errorf("arrival %d = %s in %d min, want %s in %d min", i, a.Route, a.MinutesAway, wantRoutes[i], wantMinutes[i])
		}
		if a.StopID != "1001" {
			t.Errorf("arrival %d stop = %s", i, a.StopID)
		}
	}

	limited, err := svc.GetArrivals(context.Background(), "1001", 1)
	if err != nil {
		t.Fatalf("GetArrivals: %v", err)
	}
	if len(limited) != 1 || limited[0].TripID != "trip-b" {
		t.Errorf("limit 1 = %+v, want trip-b", limited)
	}
}

func TestGetArrivalsCachesFeed(t *testing.T) {
	srv, hits := feedServer(t, feedMessage(tripEntity("a", "504", stopTime("1001", testNow.Add(time.Minute)))))

	svc := NewArrivalService(srv.URL, 5*time.Second, time.Minute)
	defer svc.Close()
	svc.now = func() time.Time { return testNow }

	for i := 0; i < 3; i++ {
		if _, err := svc.GetArrivals(context.Background(), "1001", 0); err != nil {
			t.Fatalf("GetArrivals: %v", err)
		}
	}
	if got := atomic.LoadInt32(hits); got != 1 {
		t.Errorf("feed fetched %d times, want 1", got)
	}
}

func TestGetArrivalsErrors(t *testing.T) {
	svc := NewArrivalService("", time.Second, time.Minute)
	defer svc.Close()
	if svc.HasFeed() {
		t.Error("HasFeed() = true without a URL")
	}
	if _, err := svc.GetArrivals(context.Background(), "1001", 0); !errors.Is(err, ErrNoFeed) {
		t.Errorf("err = %v, want ErrNoFeed", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	failing := NewArrivalService(srv.URL, time.Second, time.Minute)
	defer failing.Close()
	if _, err := failing.GetArrivals(context.Background(), "1001", 0); err == nil {
		t.Error("expected an error from a failing feed")
	}

	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not a protobuf \xff\xff\xff"))
	}))
	defer garbage.Close()

	bad := NewArrivalService(garbage.URL, time.Second, time.Minute)
	defer bad.Close()
	if _, err := bad.GetArrivals(context.Background(), "1001", 0); err == nil {
		t.Error("expected an error from an undecodable feed")
	}
}

func TestGetAlertsForStop(t *testing.T) {
	msg := feedMessage(
		alertEntity("route-504", "504 King diverting", testNow.Add(-time.Hour), time.Time{},
			&gtfs.EntitySelector{RouteId: proto.String("504")}),
		alertEntity("stop-1001", "Stop 1001 closed", testNow.Add(-time.Hour), testNow.Add(time.Hour),
			&gtfs.EntitySelector{StopId: proto.String("1001")}),
		alertEntity("expired", "Old alert", testNow.Add(-2*time.Hour), testNow.Add(-time.Hour),
			&gtfs.EntitySelector{RouteId: proto.String("504")}),
		alertEntity("future", "Weekend closure", testNow.Add(24*time.Hour), time.Time{},
			&gtfs.EntitySelector{RouteId: proto.String("504")}),
		alertEntity("other", "Line 2 delay", testNow.Add(-time.Hour), time.Time{},
			&gtfs.EntitySelector{RouteId: proto.String("2")}),
	)
	srv, _ := feedServer(t, msg)

	svc := NewAlertService(srv.URL, 5*time.Second, time.Minute)
	defer svc.Close()
	svc.now = func() time.Time { return testNow }

	alerts, err := svc.GetAlertsForStop(context.Background(), "1001", []string{"304", "504"})
	if err != nil {
		t.Fatalf("GetAlertsForStop: %v", err)
	}

	want := []string{"route-504", "stop-1001"}
	if len(alerts) != len(want) {
		t.Fatalf("got %d alerts, want %d: %+v", len(alerts), len(want), alerts)
	}
	for i, a := range alerts {
		if a.ID != want[i] {
			t.Errorf("alert %d = %s, want %s", i, a.ID, want[i])
		}
	}
	if alerts[0].Description != "504 King diverting details" {
		t.Errorf("Description = %q", alerts[0].Description)
	}

	none, err := svc.GetAlertsForStop(context.Background(), "9999", []string{"301"})
	if err != nil {
		t.Fatalf("GetAlertsForStop: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("unrelated stop = %+v, want an empty list", none)
	}
}

func TestGetAlertsNoFeed(t *testing.T) {
	svc := NewAlertService("", time.Second, time.Minute)
	defer svc.Close()
	if _, err := svc.GetAlertsForStop(context.Background(), "1001", nil); !errors.Is(err, ErrNoAlertsFeed) {
		t.Errorf("err = %v, want ErrNoAlertsFeed", err)
	}
}

func TestTranslatedText(t *testing.T) {
	ts := &gtfs.TranslatedString{
		Translation: []*gtfs.TranslatedString_Translation{
			{Text: proto.String("Bonjour"), Language: proto.String("fr")},
			{Text: proto.String("Hello"), Language: proto.String("en")},
		},
	}
	if got := translatedText(ts); got != "Hello" {
		t.Errorf("translatedText = %q, want Hello", got)
	}

	ts.Translation = ts.Translation[:1]
	if got := translatedText(ts); got != "Bonjour" {
		t.Errorf("translatedText fallback = %q, want Bonjour", got)
	}
	if translatedText(nil) != "" {
		t.Error("translatedText(nil) should be empty")
	}
}
