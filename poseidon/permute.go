package poseidon

import (
	"github.com/shadowatlas/districtproof/field"
)

// permute runs the Poseidon permutation in place over state, using p's
// round constants and MDS matrix. Full rounds apply the S-box to every
// state element; partial rounds apply it only to state[0], per the
// standard Poseidon round structure.
func permute(p *Parameters, state []field.F) {
	halfFull := p.FullRounds / 2

	round := 0
	for r := 0; r < halfFull; r++ {
		fullRound(p, state, round)
		round++
	}
	for r := 0; r < p.PartialRounds; r++ {
		partialRound(p, state, round)
		round++
	}
	for r := 0; r < halfFull; r++ {
		fullRound(p, state, round)
		round++
	}
}

func fullRound(p *Parameters, state []field.F, round int) {
	rc := p.RoundConstants[round]
	for i := range state {
		state[i].Add(&state[i], &rc[i])
		sbox(&state[i])
	}
	applyMDS(p, state)
}

func partialRound(p *Parameters, state []field.F, round int) {
	rc := p.RoundConstants[round]
	for i := range state {
		state[i].Add(&state[i], &rc[i])
	}
	sbox(&state[0])
	applyMDS(p, state)
}

// sbox computes x^5 in place, the standard BN254 Poseidon S-box.
func sbox(x *field.F) {
	var x2, x4 field.F
	x2.Square(x)
	x4.Square(&x2)
	x.Mul(x, &x4)
}

func applyMDS(p *Parameters, state []field.F) {
	out := make([]field.F, len(state))
	for i := range out {
		var acc field.F
		for j := range state {
			var term field.F
			term.Mul(&p.MDS[i][j], &state[j])
			acc.Add(&acc, &term)
		}
		out[i] = acc
	}
	copy(state, out)
}

// sponge absorbs the given tag and inputs into a width-3 state using rate
// 2, squeezing a single output element. Inputs longer than Rate elements
// are absorbed in multiple permutation calls (see Hash3).
func sponge(p *Parameters, tag uint64, inputs ...field.F) field.F {
	state := make([]field.F, p.Width)
	state[0].SetUint64(tag)

	i := 0
	for i < len(inputs) {
		n := len(inputs) - i
		if n > p.Rate {
			n = p.Rate
		}
		for k := 0; k < n; k++ {
			state[1+k].Add(&state[1+k], &inputs[i+k])
		}
		permute(p, state)
		i += n
	}
	if len(inputs) == 0 {
		permute(p, state)
	}
	return state[0]
}

// Hash1 computes the one-argument domain-separated hash used for leaf
// hashing: a leaf is Poseidon(identity_commitment).
func Hash1(a field.F) field.F {
	return sponge(Production(), domainTag1, a)
}

// Hash2 computes the two-argument hash used for internal Merkle nodes and
// the single-tier nullifier. Non-commutative by construction: Hash2(a,b)
// and Hash2(b,a) absorb a and b into different rate slots, so an MDS
// matrix without row/column symmetry (the Cauchy construction has none)
// makes the two outputs differ whenever a != b.
func Hash2(a, b field.F) field.F {
	return sponge(Production(), domainTag2, a, b)
}

// Hash3 computes the three-argument hash used by the legacy two-tier
// nullifier: Poseidon(identity, action, atlas_version).
func Hash3(a, b, c field.F) field.F {
	return sponge(Production(), domainTag3, a, b, c)
}

// canaryHash2 mirrors Hash2 but runs over the PSE (R_P=56) parameter set.
// Only used by TestCanaryParameterDrift.
func canaryHash2(a, b field.F) field.F {
	return sponge(canary(), domainTag2, a, b)
}
