package poseidon

import (
	"github.com/consensys/gnark/frontend"
)

// Gadget is the in-circuit counterpart of Hasher: every absorb and permute
// step materializes as constraints over frontend.Variable instead of field
// arithmetic over fr.Element. It reads the exact same ark/mds constant
// tables as the native hasher (arkBig, mdsBig), so the two are guaranteed
// to agree bit-for-bit on any input — there is no separate formula to keep
// in sync.
type Gadget struct {
	api frontend.API
}

// NewGadget wraps a frontend.API with Poseidon hashing operations.
func NewGadget(api frontend.API) *Gadget {
	return &Gadget{api: api}
}

// gsbox returns x^5 via two squarings and one multiplication, matching the
// native sbox's square-and-multiply decomposition.
func (g *Gadget) gsbox(x frontend.Variable) frontend.Variable {
	x2 := g.api.Mul(x, x)
	x4 := g.api.Mul(x2, x2)
	return g.api.Mul(x4, x)
}

// permute runs the full Poseidon permutation over state, returning the new
// state. Constraint shape mirrors permute() in native.go exactly: round
// constant addition, S-box (full rounds on every wire, partial rounds on
// wire 0 only), then an MDS matrix multiplication expressed as per-row
// linear combinations.
func (g *Gadget) permute(state [Width]frontend.Variable) [Width]frontend.Variable {
	api := g.api
	for r := 0; r < TotalRounds; r++ {
		for i := 0; i < Width; i++ {
			state[i] = api.Add(state[i], arkBig[r][i])
		}

		isFull := r < halfFull || r >= TotalRounds-halfFull
		if isFull {
			for i := 0; i < Width; i++ {
				state[i] = g.gsbox(state[i])
			}
		} else {
			state[0] = g.gsbox(state[0])
		}

		var next [Width]frontend.Variable
		for i := 0; i < Width; i++ {
			acc := api.Mul(mdsBig[i][0], state[0])
			for j := 1; j < Width; j++ {
				term := api.Mul(mdsBig[i][j], state[j])
				acc = api.Add(acc, term)
			}
			next[i] = acc
		}
		state = next
	}
	return state
}

// HashTwo constrains the Poseidon hash of exactly two elements and returns
// the output variable.
func (g *Gadget) HashTwo(a, b frontend.Variable) frontend.Variable {
	state := [Width]frontend.Variable{0, a, b}
	state = g.permute(state)
	return state[0]
}

// HashMany constrains the Poseidon hash of an arbitrary-length slice of
// elements, absorbing Rate elements per permutation and zero-padding the
// final partial block exactly as the native Hasher.Sum does.
func (g *Gadget) HashMany(xs []frontend.Variable) frontend.Variable {
	state := [Width]frontend.Variable{0, 0, 0}
	pending := 0

	for _, x := range xs {
		state[Capacity+pending] = x
		pending++
		if pending == Rate {
			state = g.permute(state)
			pending = 0
		}
	}
	if pending > 0 {
		for i := pending; i < Rate; i++ {
			state[Capacity+i] = 0
		}
		state = g.permute(state)
	}
	return state[0]
}
