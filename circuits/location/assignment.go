package location

import (
	"crypto/sha256"
	"math"
	"math/big"
	"strings"

	"github.com/consensys/gnark/frontend"

	"github.com/Cosmos-Harry/zk-vault/pkg/poseidon"
)

// Assignment is the fully populated witness for one location proof.
type Assignment struct {
	Commitment frontend.Variable `gnark:"commitment,public"`

	Lat     frontend.Variable `gnark:"lat"`
	Lng     frontend.Variable `gnark:"lng"`
	Country frontend.Variable `gnark:"country"`
}

func (a *Assignment) Define(api frontend.API) error {
	s := Shape{Commitment: a.Commitment, Lat: a.Lat, Lng: a.Lng, Country: a.Country}
	return s.Define(api)
}

// EncodeLat converts a latitude in degrees to the circuit's fixed-point
// field encoding: round(lat * 1e6).
func EncodeLat(latDegrees float64) *big.Int {
	return big.NewInt(int64(math.Round(latDegrees * CoordScale)))
}

// EncodeLng converts a longitude in degrees to the circuit's fixed-point
// field encoding: round(lng * 1e6) + 180e6, keeping the value non-negative.
func EncodeLng(lngDegrees float64) *big.Int {
	return big.NewInt(int64(math.Round(lngDegrees*CoordScale)) + LngOffset)
}

// EncodeCountry reduces the uppercased country code's SHA-256 digest
// modulo the scalar field.
func EncodeCountry(countryCode string) *big.Int {
	digest := sha256.Sum256([]byte(strings.ToUpper(countryCode)))
	return poseidon.BytesToField(digest[:])
}

// Prepare builds an Assignment from human-readable inputs, deriving the
// commitment with the same Poseidon hash the circuit enforces.
func Prepare(latDegrees, lngDegrees float64, countryCode string) *Assignment {
	lat := EncodeLat(latDegrees)
	lng := EncodeLng(lngDegrees)
	country := EncodeCountry(countryCode)
	commitment := poseidon.HashMany([]*big.Int{lat, lng, country})

	return &Assignment{
		Commitment: commitment,
		Lat:        lat,
		Lng:        lng,
		Country:    country,
	}
}
