// Package poseidon implements a classical Poseidon sponge over the BN254
// scalar field with width 3 (rate 2, capacity 1), 8 full rounds and 57
// partial rounds, alpha = 5.
//
// This is a different permutation from the Poseidon2 construction used
// elsewhere in the gnark-crypto ecosystem: the round structure (8/57,
// width 3) is fixed by the attestation scheme this package serves, not by
// gnark-crypto's own Poseidon2 parameter sets.
package poseidon

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

const (
	Width        = 3
	Rate         = 2
	Capacity     = 1
	Alpha        = 5
	FullRounds   = 8
	PartialRounds = 57
	TotalRounds  = FullRounds + PartialRounds
	halfFull     = FullRounds / 2
)

// ark holds the round constants, ark[r][i] added to wire i before the S-box
// of round r. mds is the 3x3 MDS matrix applied after the S-box layer of
// every round. Both are fixed at package init from a nothing-up-my-sleeve
// SHA-256 expansion (round constants) and a Cauchy construction over small
// nothing-up-my-sleeve field elements (MDS), computed exactly once and
// shared by both the native hasher and the in-circuit gadget so the two
// can never drift apart.
var (
	ark    [TotalRounds][Width]fr.Element
	arkBig [TotalRounds][Width]*big.Int

	mds    [Width][Width]fr.Element
	mdsBig [Width][Width]*big.Int
)

func init() {
	// Round constants: ark[r][i] = SHA256("zk-vault/poseidon/ark/" || r || i) mod r.
	for r := 0; r < TotalRounds; r++ {
		for i := 0; i < Width; i++ {
			var buf [8]byte
			binary.BigEndian.PutUint32(buf[0:4], uint32(r))
			binary.BigEndian.PutUint32(buf[4:8], uint32(i))
			h := sha256.Sum256(append([]byte("zk-vault/poseidon/ark/"), buf[:]...))
			ark[r][i].SetBytes(h[:])
			arkBig[r][i] = new(big.Int)
			ark[r][i].BigInt(arkBig[r][i])
		}
	}

	// MDS matrix via the standard Poseidon Cauchy construction:
	// mds[i][j] = 1 / (x_i + y_j), x_i = i+1, y_j = Width+j+1, guaranteeing
	// every square submatrix is invertible (the MDS property).
	for i := 0; i < Width; i++ {
		for j := 0; j < Width; j++ {
			var xi, yj, sum fr.Element
			xi.SetUint64(uint64(i + 1))
			yj.SetUint64(uint64(Width + j + 1))
			sum.Add(&xi, &yj)
			mds[i][j].Inverse(&sum)
			mdsBig[i][j] = new(big.Int)
			mds[i][j].BigInt(mdsBig[i][j])
		}
	}
}
