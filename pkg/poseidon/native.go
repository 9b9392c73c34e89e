package poseidon

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// sbox raises x to the fifth power in place via square-and-multiply.
func sbox(x *fr.Element) {
	var x2, x4 fr.Element
	x2.Square(x)
	x4.Square(&x2)
	x.Mul(&x4, x)
}

// permute runs the full Poseidon permutation over state in place: for each
// of the TotalRounds rounds, add the round constants, apply the S-box (full
// rounds hit every wire, partial rounds hit only wire 0), then multiply by
// the MDS matrix.
func permute(state *[Width]fr.Element) {
	for r := 0; r < TotalRounds; r++ {
		for i := 0; i < Width; i++ {
			state[i].Add(&state[i], &ark[r][i])
		}

		isFull := r < halfFull || r >= TotalRounds-halfFull
		if isFull {
			for i := 0; i < Width; i++ {
				sbox(&state[i])
			}
		} else {
			sbox(&state[0])
		}

		var next [Width]fr.Element
		for i := 0; i < Width; i++ {
			var acc fr.Element
			for j := 0; j < Width; j++ {
				var term fr.Element
				term.Mul(&mds[i][j], &state[j])
				acc.Add(&acc, &term)
			}
			next[i] = acc
		}
		*state = next
	}
}

// Hasher is a Merkle-Damgard-style sponge wrapper: Write absorbs field
// elements, Sum runs any pending permutation and squeezes the output, Reset
// returns the hasher to its initial empty state. A fresh Hasher is created
// per hash invocation, mirroring the absorb/squeeze discipline of a classic
// sponge rather than a streaming byte-oriented hash.
type Hasher struct {
	state   [Width]fr.Element
	pending int // number of rate lanes filled since the last permutation
}

// NewHasher returns a Hasher with all-zero initial state.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Write absorbs one or more field elements, permuting every time a full
// rate-sized block (Rate elements) has been written.
func (h *Hasher) Write(elems ...fr.Element) {
	for _, e := range elems {
		h.state[Capacity+h.pending] = e
		h.pending++
		if h.pending == Rate {
			permute(&h.state)
			h.pending = 0
		}
	}
}

// Sum pads any pending partial block with zeros, runs one final permutation
// if needed, and returns the squeezed output (state[0]).
func (h *Hasher) Sum() fr.Element {
	if h.pending > 0 {
		for i := h.pending; i < Rate; i++ {
			h.state[Capacity+i] = fr.Element{}
		}
		permute(&h.state)
		h.pending = 0
	}
	return h.state[0]
}

// Reset returns the hasher to its zero-valued initial state.
func (h *Hasher) Reset() {
	h.state = [Width]fr.Element{}
	h.pending = 0
}

// HashTwo absorbs a then b and squeezes one field element. a and b exactly
// fill one rate block, so Write runs the single permutation and Sum only
// squeezes.
func HashTwo(a, b *big.Int) *big.Int {
	var af, bf fr.Element
	af.SetBigInt(a)
	bf.SetBigInt(b)

	h := NewHasher()
	h.Write(af, bf)
	out := h.Sum()

	result := new(big.Int)
	out.BigInt(result)
	return result
}

// HashMany absorbs every element of xs in order and squeezes one field
// element.
func HashMany(xs []*big.Int) *big.Int {
	h := NewHasher()
	for _, x := range xs {
		var xf fr.Element
		xf.SetBigInt(x)
		h.Write(xf)
	}
	out := h.Sum()

	result := new(big.Int)
	out.BigInt(result)
	return result
}

// BytesToField reduces a byte slice mod the scalar field, matching
// ark-ff's from_be_bytes_mod_order semantics: interpret as big-endian and
// reduce.
func BytesToField(b []byte) *big.Int {
	var e fr.Element
	e.SetBytes(b)
	out := new(big.Int)
	e.BigInt(out)
	return out
}
