package poseidon

import (
	"github.com/consensys/gnark/frontend"
)

// Hasher is the in-circuit Poseidon gadget. It materializes the round
// constants and MDS matrix as frontend.Variable constants exactly once
// (in NewHasher) and reuses them across every Hash1/Hash2/Hash3 call made
// through the same Hasher. A membership circuit with depth D performs
// 2*D+2 hashes per proof; all of them must share one Hasher, never
// construct a fresh one per call.
type Hasher struct {
	api    frontend.API
	params *Parameters
	rc     [][]frontend.Variable // cached round constants, [round][width]
	mds    [][]frontend.Variable // cached MDS matrix, [row][col]
}

// NewHasher constructs a Hasher bound to the production parameter set.
// Call it once per circuit Define() and reuse the returned value for every
// hash performed in that circuit.
func NewHasher(api frontend.API) *Hasher {
	p := Production()
	h := &Hasher{api: api, params: p}

	h.rc = make([][]frontend.Variable, len(p.RoundConstants))
	for r, row := range p.RoundConstants {
		vars := make([]frontend.Variable, len(row))
		for w, c := range row {
			vars[w] = frontend.Variable(c)
		}
		h.rc[r] = vars
	}

	h.mds = make([][]frontend.Variable, len(p.MDS))
	for i, row := range p.MDS {
		vars := make([]frontend.Variable, len(row))
		for j, c := range row {
			vars[j] = frontend.Variable(c)
		}
		h.mds[i] = vars
	}

	return h
}

// Hash1 is the in-circuit equivalent of the package-level Hash1.
func (h *Hasher) Hash1(a frontend.Variable) frontend.Variable {
	return h.sponge(domainTag1, a)
}

// Hash2 is the in-circuit equivalent of the package-level Hash2. Used for
// internal Merkle nodes (merkle.Verify) and for deriving the single-tier
// nullifier in the membership circuit.
func (h *Hasher) Hash2(a, b frontend.Variable) frontend.Variable {
	return h.sponge(domainTag2, a, b)
}

// Hash3 is the in-circuit equivalent of the package-level Hash3, used by
// the legacy two-tier nullifier.
func (h *Hasher) Hash3(a, b, c frontend.Variable) frontend.Variable {
	return h.sponge(domainTag3, a, b, c)
}

func (h *Hasher) sponge(tag uint64, inputs ...frontend.Variable) frontend.Variable {
	api := h.api
	state := make([]frontend.Variable, h.params.Width)
	state[0] = frontend.Variable(tag)
	for i := 1; i < len(state); i++ {
		state[i] = frontend.Variable(0)
	}

	i := 0
	for i < len(inputs) || i == 0 {
		n := len(inputs) - i
		if n > h.params.Rate {
			n = h.params.Rate
		}
		if n < 0 {
			n = 0
		}
		for k := 0; k < n; k++ {
			state[1+k] = api.Add(state[1+k], inputs[i+k])
		}
		h.permute(state)
		i += n
		if len(inputs) == 0 {
			break
		}
	}
	return state[0]
}

func (h *Hasher) permute(state []frontend.Variable) {
	p := h.params
	halfFull := p.FullRounds / 2

	round := 0
	for r := 0; r < halfFull; r++ {
		h.fullRound(state, round)
		round++
	}
	for r := 0; r < p.PartialRounds; r++ {
		h.partialRound(state, round)
		round++
	}
	for r := 0; r < halfFull; r++ {
		h.fullRound(state, round)
		round++
	}
}

func (h *Hasher) fullRound(state []frontend.Variable, round int) {
	api := h.api
	rc := h.rc[round]
	for i := range state {
		state[i] = api.Add(state[i], rc[i])
		state[i] = h.sbox(state[i])
	}
	h.applyMDS(state)
}

func (h *Hasher) partialRound(state []frontend.Variable, round int) {
	api := h.api
	rc := h.rc[round]
	for i := range state {
		state[i] = api.Add(state[i], rc[i])
	}
	state[0] = h.sbox(state[0])
	h.applyMDS(state)
}

// sbox computes x^5 using two squarings and one multiplication, matching
// the out-of-circuit S-box in permute.go.
func (h *Hasher) sbox(x frontend.Variable) frontend.Variable {
	api := h.api
	x2 := api.Mul(x, x)
	x4 := api.Mul(x2, x2)
	return api.Mul(x, x4)
}

func (h *Hasher) applyMDS(state []frontend.Variable) {
	api := h.api
	out := make([]frontend.Variable, len(state))
	for i := range out {
		acc := frontend.Variable(0)
		for j := range state {
			acc = api.Add(acc, api.Mul(h.mds[i][j], state[j]))
		}
		out[i] = acc
	}
	copy(state, out)
}
