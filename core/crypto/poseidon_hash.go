package crypto

import (
	"crypto/sha256"
	"strconv"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/kkrt-labs/katana-genesis/core/felt"
)

const (
	stateWidth    = 3
	fullRounds    = 8
	partialRounds = 83
)

// Round constants per the Starkware Poseidon parameter generation: constant
// (i, j) is sha256("Hades" || 3*i+j) reduced into the field.
//
// https://github.com/starkware-industries/poseidon
var roundKeys [fullRounds + partialRounds][stateWidth]fp.Element

func init() {
	for i := range roundKeys {
		for j := range roundKeys[i] {
			digest := sha256.Sum256([]byte("Hades" + strconv.Itoa(stateWidth*i+j)))
			roundKeys[i][j].SetBytes(digest[:])
		}
	}
}

// Poseidon implements the two-element [Poseidon hash].
//
// [Poseidon hash]: https://docs.starknet.io/architecture-and-concepts/cryptography/#poseidon_hash
func Poseidon(x, y *felt.Felt) *felt.Felt {
	state := []felt.Felt{*x, *y, *two}
	hadesPermutation(state)
	return &state[0]
}

// PoseidonArray implements [Poseidon array hashing].
//
// [Poseidon array hashing]: https://docs.starknet.io/architecture-and-concepts/cryptography/#poseidon_array_hash
func PoseidonArray(elems ...*felt.Felt) *felt.Felt {
	var digest PoseidonDigest
	return digest.Update(elems...).Finish()
}

var (
	one = new(felt.Felt).SetUint64(1)
	two = new(felt.Felt).SetUint64(2)
)

var _ Digest = (*PoseidonDigest)(nil)

// PoseidonDigest is a sponge with rate 2: element pairs are absorbed into the
// first two state words, each absorption followed by a Hades permutation.
type PoseidonDigest struct {
	state       [stateWidth]felt.Felt
	pendingElem *felt.Felt
}

func (d *PoseidonDigest) Update(elems ...*felt.Felt) Digest {
	for idx := range elems {
		if d.pendingElem == nil {
			d.pendingElem = elems[idx].Clone()
		} else {
			d.state[0].Add(&d.state[0], d.pendingElem)
			d.state[1].Add(&d.state[1], elems[idx])
			hadesPermutation(d.state[:])
			d.pendingElem = nil
		}
	}
	return d
}

func (d *PoseidonDigest) Finish() *felt.Felt {
	// Padding appends 1 to the absorbed elements, then zeros up to a
	// multiple of the rate.
	if d.pendingElem == nil {
		d.state[0].Add(&d.state[0], one)
	} else {
		d.state[0].Add(&d.state[0], d.pendingElem)
		d.state[1].Add(&d.state[1], one)
		d.pendingElem = nil
	}
	hadesPermutation(d.state[:])
	return &d.state[0]
}

func hadesPermutation(state []felt.Felt) {
	round := 0
	for range fullRounds / 2 {
		fullRound(state, round)
		round++
	}
	for range partialRounds {
		partialRound(state, round)
		round++
	}
	for range fullRounds / 2 {
		fullRound(state, round)
		round++
	}
}

func fullRound(state []felt.Felt, round int) {
	for idx := range state {
		elem := state[idx].Impl()
		elem.Add(elem, &roundKeys[round][idx])
		cube(elem)
	}
	mixLayer(state)
}

func partialRound(state []felt.Felt, round int) {
	for idx := range state {
		elem := state[idx].Impl()
		elem.Add(elem, &roundKeys[round][idx])
	}
	cube(state[2].Impl())
	mixLayer(state)
}

func cube(elem *fp.Element) {
	var square fp.Element
	square.Square(elem)
	elem.Mul(elem, &square)
}

// mixLayer multiplies the state by the MDS matrix
//
//	[3  1  1]
//	[1 -1  1]
//	[1  1 -2]
func mixLayer(state []felt.Felt) {
	var total fp.Element
	total.Add(state[0].Impl(), state[1].Impl())
	total.Add(&total, state[2].Impl())

	var tmp fp.Element
	tmp.Double(state[0].Impl())
	state[0].Impl().Add(&total, &tmp) // total + 2*s0

	tmp.Double(state[1].Impl())
	state[1].Impl().Sub(&total, &tmp) // total - 2*s1

	tmp.Double(state[2].Impl())
	tmp.Add(&tmp, state[2].Impl())
	state[2].Impl().Sub(&total, &tmp) // total - 3*s2
}
