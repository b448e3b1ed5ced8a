package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Loicqra12/ovpr-api/config"
)

const nominatimBaseURL = "https://nominatim.openstreetmap.org"

// GeocodeClient proxies address search and reverse lookups to Nominatim.
// Lookups are best effort: the wizard can save a location without an
// address, so upstream failures surface as empty result sets.
type GeocodeClient struct {
	client *resty.Client
}

type geocodeResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// NewGeocodeClient builds a Nominatim client with a short timeout
func NewGeocodeClient() *GeocodeClient {
	return &GeocodeClient{
		client: resty.New().
			SetBaseURL(nominatimBaseURL).
			SetTimeout(5*time.Second).
			SetHeader("User-Agent", "ovpr-api"),
	}
}

// Search runs a freetext address search
func (g *GeocodeClient) Search(ctx context.Context, query string) ([]geocodeResult, error) {
	var results []geocodeResult
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":      query,
			"format": "json",
			"limit":  "5",
		}).
		SetResult(&results).
		Get("/search")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, nil
	}
	return results, nil
}

// Reverse resolves coordinates to an address
func (g *GeocodeClient) Reverse(ctx context.Context, lat, lon string) (*geocodeResult, error) {
	var result geocodeResult
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":    lat,
			"lon":    lon,
			"format": "json",
		}).
		SetResult(&result).
		Get("/reverse")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, nil
	}
	return &result, nil
}

// Geocode exposes the proxy endpoints used by the location step
type Geocode struct {
	Client *GeocodeClient
}

// SearchHandler proxies a freetext address search
func (g Geocode) SearchHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		config.ErrorStatus("missing query parameter q", http.StatusBadRequest, w, nil)
		return
	}

	results, err := g.Client.Search(r.Context(), query)
	if err != nil {
		// geocoding is an assist, not a gate
		zap.S().Warnw("geocode search failed", "query", query, "error", err)
	}
	if len(results) == 0 {
		results = []geocodeResult{}
	}

	b, err := json.Marshal(results)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ReverseHandler proxies a coordinate to address lookup
func (g Geocode) ReverseHandler(w http.ResponseWriter, r *http.Request) {
	lat := r.URL.Query().Get("lat")
	lon := r.URL.Query().Get("lon")
	if lat == "" || lon == "" {
		config.ErrorStatus("missing lat or lon parameter", http.StatusBadRequest, w, nil)
		return
	}

	result, err := g.Client.Reverse(r.Context(), lat, lon)
	if err != nil {
		zap.S().Warnw("geocode reverse failed", "lat", lat, "lon", lon, "error", err)
	}
	if result == nil {
		result = &geocodeResult{}
	}

	b, err := json.Marshal(result)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
