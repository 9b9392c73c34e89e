// Package location implements the location-commitment circuit: proving
// knowledge of a (latitude, longitude, country) tuple that hashes to a
// public commitment, without revealing the tuple itself. It is a
// commitment proof, not a range proof — bounds verification against a
// country's bounding box is the caller's responsibility before the
// commitment is ever constructed (see pkg/countries).
package location

import (
	"github.com/consensys/gnark/frontend"

	"github.com/Cosmos-Harry/zk-vault/pkg/poseidon"
)

// CoordScale converts a floating-point degree value into the circuit's
// fixed-point integer encoding: round(value * CoordScale).
const CoordScale = 1_000_000

// LngOffset keeps the encoded longitude non-negative in the field
// (longitude ranges over [-180, 180], so this shift covers the minimum).
const LngOffset = 180 * CoordScale

// Shape is the compile-time circuit skeleton.
type Shape struct {
	Commitment frontend.Variable `gnark:"commitment,public"`

	Lat     frontend.Variable `gnark:"lat"`
	Lng     frontend.Variable `gnark:"lng"`
	Country frontend.Variable `gnark:"country"`
}

// Define constrains hash_many([lat, lng, country]) == commitment. There is
// deliberately no range check on Lat/Lng/Country here: the circuit binds
// the prover to a specific tuple, it does not itself validate that the
// tuple falls within any country's bounding box.
func (s *Shape) Define(api frontend.API) error {
	g := poseidon.NewGadget(api)
	derived := g.HashMany([]frontend.Variable{s.Lat, s.Lng, s.Country})
	api.AssertIsEqual(derived, s.Commitment)
	return nil
}
