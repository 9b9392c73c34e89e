package location

import (
	"fmt"
	"math/big"

	"github.com/Cosmos-Harry/zk-vault/pkg/countries"
)

// WitnessResult bundles the circuit assignment with the public values a
// caller typically wants for fixture export or logging.
type WitnessResult struct {
	Assignment  Assignment
	Commitment  *big.Int
	CountryCode string
}

// FromCoordinates is the precise front-end path: scan the country table for
// a bounding box containing (lat, lng) and build a witness for that match.
// Fails if no table entry contains the coordinates.
func FromCoordinates(lat, lng float64) (*WitnessResult, error) {
	b, ok := countries.Find(lat, lng)
	if !ok {
		return nil, fmt.Errorf("location: (%.6f, %.6f) is not within any known country bounding box", lat, lng)
	}
	return build(lat, lng, b.Code), nil
}

// FromCountryCode is the coarse front-end path: given only a country code
// (no real GPS fix), synthesize coordinates at the bounding box's center.
// Callers should treat proofs built this way as a weaker attestation than
// FromCoordinates, since the coordinate is a placeholder, not a measurement.
func FromCountryCode(countryCode string) (*WitnessResult, error) {
	b, ok := countries.ByCode(countryCode)
	if !ok {
		return nil, fmt.Errorf("location: unknown country code %q", countryCode)
	}
	lat, lng := b.Center()
	return build(lat, lng, b.Code), nil
}

func build(lat, lng float64, countryCode string) *WitnessResult {
	assignment := Prepare(lat, lng, countryCode)
	commitment := new(big.Int)
	if c, ok := assignment.Commitment.(*big.Int); ok {
		commitment = c
	}
	return &WitnessResult{
		Assignment:  *assignment,
		Commitment:  commitment,
		CountryCode: countryCode,
	}
}
