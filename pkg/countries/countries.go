// Package countries holds the static country bounding-box table used by
// the location attestation front-end, plus a CBOR-encoded snapshot so a
// deployment can ship or update the table without a code change.
package countries

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Bounds is one country's approximate bounding box, in degrees.
type Bounds struct {
	Code   string  `cbor:"code" json:"code"`
	Name   string  `cbor:"name" json:"name"`
	MinLat float64 `cbor:"min_lat" json:"min_lat"`
	MaxLat float64 `cbor:"max_lat" json:"max_lat"`
	MinLng float64 `cbor:"min_lng" json:"min_lng"`
	MaxLng float64 `cbor:"max_lng" json:"max_lng"`
}

// Table is the built-in set of supported countries, checked in declaration
// order by Find.
var Table = []Bounds{
	{Code: "US", Name: "United States", MinLat: 24.396308, MaxLat: 49.384358, MinLng: -125.0, MaxLng: -66.93457},
	{Code: "GB", Name: "United Kingdom", MinLat: 49.674, MaxLat: 61.061, MinLng: -14.015517, MaxLng: 2.0919117},
	{Code: "CA", Name: "Canada", MinLat: 41.6751050889, MaxLat: 83.23324, MinLng: -141.0, MaxLng: -52.6480987209},
	{Code: "AU", Name: "Australia", MinLat: -43.6345972634, MaxLat: -10.6681857235, MinLng: 113.338953078, MaxLng: 153.569469029},
	{Code: "DE", Name: "Germany", MinLat: 47.2701114, MaxLat: 55.0815, MinLng: 5.8663425, MaxLng: 15.0419319},
	{Code: "FR", Name: "France", MinLat: 41.3658, MaxLat: 51.124199, MinLng: -5.5591, MaxLng: 9.6625},
	{Code: "JP", Name: "Japan", MinLat: 24.396308, MaxLat: 45.551483, MinLng: 122.93457, MaxLng: 153.986672},
	{Code: "IN", Name: "India", MinLat: 6.5546079, MaxLat: 35.6745457, MinLng: 68.1113787, MaxLng: 97.395561},
	{Code: "BR", Name: "Brazil", MinLat: -33.7683777809, MaxLat: 5.24448639569, MinLng: -73.9872354804, MaxLng: -34.7299934555},
	{Code: "CN", Name: "China", MinLat: 18.1535, MaxLat: 53.56086, MinLng: 73.4994136, MaxLng: 134.7754563},
}

// Contains reports whether (lat, lng) falls within b's bounding box.
func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// Center returns the bounding box's midpoint, used as a placeholder
// coordinate when only a country code (no real GPS fix) is available.
func (b Bounds) Center() (lat, lng float64) {
	return (b.MinLat + b.MaxLat) / 2, (b.MinLng + b.MaxLng) / 2
}

// Find returns the first table entry whose bounding box contains
// (lat, lng), scanning in declaration order.
func Find(lat, lng float64) (Bounds, bool) {
	for _, b := range Table {
		if b.Contains(lat, lng) {
			return b, true
		}
	}
	return Bounds{}, false
}

// ByCode returns the table entry for the given (case-insensitive) code.
func ByCode(code string) (Bounds, bool) {
	for _, b := range Table {
		if equalFoldASCII(b.Code, code) {
			return b, true
		}
	}
	return Bounds{}, false
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'a' <= ca && ca <= 'z' {
			ca -= 'a' - 'A'
		}
		if 'a' <= cb && cb <= 'z' {
			cb -= 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// Marshal encodes Table (or any Bounds slice) to CBOR, for shipping an
// updated table alongside a deployment without a rebuild.
func Marshal(table []Bounds) ([]byte, error) {
	return cbor.Marshal(table)
}

// Unmarshal decodes a CBOR-encoded country table produced by Marshal.
func Unmarshal(data []byte) ([]Bounds, error) {
	var table []Bounds
	dec := cbor.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&table); err != nil {
		return nil, fmt.Errorf("countries: decode table: %w", err)
	}
	return table, nil
}
