package viewmodel

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/randytsao24/textmystop/internal/location"
	"github.com/randytsao24/textmystop/internal/models"
	"github.com/randytsao24/textmystop/internal/stops"
)

type captureRenderer struct {
	mu      sync.Mutex
	renders []models.ViewModel
}

func (c *captureRenderer) Render(vm models.ViewModel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renders = append(c.renders, vm)
}

func (c *captureRenderer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.renders)
}

func (c *captureRenderer) last(t *testing.T) models.ViewModel {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.renders) == 0 {
		t.Fatal("nothing rendered")
	}
	return c.renders[len(c.renders)-1]
}

const sessionTable = `stop_id,stop_name,stop_lat,stop_lon,Direction
A,King St,43.65,-79.38,East
B,Bay St,bad,-79.38,West
C,Queen St,43.70,-79.38,East
`

func parseTable(t *testing.T) *stops.Table {
	t.Helper()
	table, err := stops.Parse(sessionTable, stops.DefaultColumns())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return table
}

func TestSessionNothingRenderedBeforeLoad(t *testing.T) {
	r := &captureRenderer{}
	s := NewSession(r, Options{}, 0)
	defer s.Close()

	s.QueryChanged("bay")
	s.Located(coord(t, "43.651", "-79.381"))

	if r.count() != 0 {
		t.Fatalf("rendered %d times before load, want 0", r.count())
	}

	s.Loaded(parseTable(t))

	vm := r.last(t)
	if got := stopIDs(vm.Stops); !reflect.DeepEqual(got, []string{"B"}) {
		t.Errorf("first render = %v, want the early query applied ([B])", got)
	}
	if vm.Degraded {
		t.Error("first render should use the early origin")
	}
}

func TestSessionLocationOutcomes(t *testing.T) {
	r := &captureRenderer{}
	s := NewSession(r, Options{}, 0)
	defer s.Close()

	s.Loaded(parseTable(t))
	if vm := r.last(t); !vm.Degraded {
		t.Error("view before location resolves should be degraded")
	}

	s.Located(coord(t, "43.70", "-79.38"))
	if got := stopIDs(r.last(t).Stops); !reflect.DeepEqual(got, []string{"C", "A", "B"}) {
		t.Errorf("located order = %v, want [C A B]", got)
	}

	s.LocationFailed(location.ErrLocationUnavailable)
	vm := r.last(t)
	if !vm.Degraded {
		t.Error("view after a location failure should be degraded")
	}
	if got := stopIDs(vm.Stops); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("degraded order = %v, want insertion order", got)
	}
}

func TestSessionLoadFailed(t *testing.T) {
	r := &captureRenderer{}
	s := NewSession(r, Options{}, 0)
	defer s.Close()

	s.LoadFailed(errors.New("fetch failed"))

	vm := r.last(t)
	if len(vm.Stops) != 0 {
		t.Errorf("got %d stops after a failed load, want 0", len(vm.Stops))
	}
}

func TestSessionDebouncedQuery(t *testing.T) {
	r := &captureRenderer{}
	s := NewSession(r, Options{}, 20*time.Millisecond)
	defer s.Close()

	s.Loaded(parseTable(t))
	before := r.count()

	s.QueryChanged("q")
	s.QueryChanged("qu")
	s.QueryChanged("queen")

	deadline := time.Now().Add(2 * time.Second)
	for r.count() == before && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)

	if got := r.count() - before; got != 1 {
		t.Errorf("rendered %d times for three quick changes, want 1", got)
	}
	if got := stopIDs(r.last(t).Stops); !reflect.DeepEqual(got, []string{"C"}) {
		t.Errorf("stops = %v, want [C]", got)
	}
}

func TestSessionFlush(t *testing.T) {
	r := &captureRenderer{}
	s := NewSession(r, Options{}, time.Hour)
	defer s.Close()

	s.Loaded(parseTable(t))
	s.QueryChanged("king")
	s.Flush()

	if got := stopIDs(r.last(t).Stops); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("stops = %v, want [A]", got)
	}
}

func TestSessionResolve(t *testing.T) {
	r := &captureRenderer{}
	s := NewSession(r, Options{}, 0)
	defer s.Close()
	s.Loaded(parseTable(t))

	<-s.Resolve(context.Background(), location.StaticLocator{Coordinate: coord(t, "43.651", "-79.381")})
	if vm := r.last(t); vm.Degraded || vm.Stops[0].ID != "A" {
		t.Errorf("after resolve: degraded %v, first %s", vm.Degraded, vm.Stops[0].ID)
	}

	<-s.Resolve(context.Background(), location.UnavailableLocator{})
	if vm := r.last(t); !vm.Degraded {
		t.Error("after a failed resolve the view should be degraded")
	}
}

func TestSessionCurrent(t *testing.T) {
	s := NewSession(RendererFunc(func(models.ViewModel) {}), Options{}, 0)
	defer s.Close()

	if vm := s.Current(); len(vm.Stops) != 0 {
		t.Errorf("Current before load has %d stops, want 0", len(vm.Stops))
	}

	s.Loaded(parseTable(t))
	s.QueryChanged("st")
	if vm := s.Current(); len(vm.Stops) != 3 {
		t.Errorf("Current has %d stops, want 3", len(vm.Stops))
	}
}
