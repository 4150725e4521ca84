package location

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/randytsao24/textmystop/internal/models"
)

// fsaLength is the length of a forward sortation area, the first half of
// a Canadian postal code
const fsaLength = 3

// PostalCodeService manages postal area centroids
type PostalCodeService struct {
	codes  map[string]models.PostalCode
	mu     sync.RWMutex
	loaded bool
}

// NewPostalCodeService creates a new postal code service
func NewPostalCodeService() *PostalCodeService {
	return &PostalCodeService{
		codes: make(map[string]models.PostalCode),
	}
}

// Load reads postal area data from a JSON file
func (s *PostalCodeService) Load(filepath string) error {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return fmt.Errorf("reading postal code file: %w", err)
	}

	// The JSON is a map of FSA -> centroid
	var raw map[string]struct {
		Lat          float64 `json:"lat"`
		Lng          float64 `json:"lng"`
		City         string  `json:"city"`
		Neighborhood string  `json:"neighborhood"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing postal code JSON: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for code, loc := range raw {
		key := NormalizePostalCode(code)
		s.codes[key] = models.PostalCode{
			Code:         key,
			Lat:          loc.Lat,
			Lng:          loc.Lng,
			City:         loc.City,
			Neighborhood: loc.Neighborhood,
		}
	}

	s.loaded = true
	return nil
}

// NormalizePostalCode reduces a full or partial postal code to its
// upper-case FSA ("m5v 3l9" -> "M5V")
func NormalizePostalCode(code string) string {
	code = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), " ", ""))
	if runes := []rune(code); len(runes) > fsaLength {
		code = string(runes[:fsaLength])
	}
	return code
}

// Get returns a postal area by code; full postal codes are accepted
func (s *PostalCodeService) Get(code string) (models.PostalCode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pc, exists := s.codes[NormalizePostalCode(code)]
	return pc, exists
}

// GetAll returns all postal areas sorted by code
func (s *PostalCodeService) GetAll() []models.PostalCode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.PostalCode, 0, len(s.codes))
	for _, pc := range s.codes {
		result = append(result, pc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result
}

// FindNearest returns the postal area whose centroid is closest to the point
func (s *PostalCodeService) FindNearest(lat, lng float64) (models.PostalCode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		best  models.PostalCode
		found bool
		min   float64
	)
	for _, pc := range s.codes {
		d := Haversine(lat, lng, pc.Lat, pc.Lng)
		if !found || d < min || (d == min && pc.Code < best.Code) {
			best, min, found = pc, d, true
		}
	}
	return best, found
}

// Count returns the number of loaded postal areas
func (s *PostalCodeService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.codes)
}

// IsLoaded returns true if data has been loaded
func (s *PostalCodeService) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}
