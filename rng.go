package dice

import (
	crypto "crypto/rand"
	"encoding/binary"
	"math/big"
	"math/rand"
)

// RNG draws a single die's value for the given face. Implementations
// must be safe for concurrent use only if the same RNG is shared
// across concurrent Evaluate calls; a single evaluation is always
// single-threaded (spec.md §5).
type RNG interface {
	Draw(face DieFace) (int32, error)
}

func faceSides(face DieFace) int32 {
	switch {
	case face.Fate:
		return 3
	case face.Coin:
		return 2
	case face.Size <= 0:
		return 1
	default:
		return face.Size
	}
}

// faceValue maps a 0-based draw in [0, sides) to the face's value
// domain: 1..size for a polyhedron, -1/0/1 for Fate, 0/1 for Coin.
func faceValue(face DieFace, draw int32) int32 {
	switch {
	case face.Fate:
		return draw - 1 // 0,1,2 -> -1,0,1
	case face.Coin:
		return draw // 0,1
	default:
		return draw + 1 // 0..size-1 -> 1..size
	}
}

// cryptoRNG draws from the system CSPRNG, grounded on the teacher's
// csprngSource wrapper around crypto/rand. It is not seedable; the CLI
// and server do not use it, drawing from NewDefaultRNG instead.
type cryptoRNG struct{}

// NewCryptoRNG returns the default, non-seedable CSPRNG-backed RNG.
func NewCryptoRNG() RNG { return cryptoRNG{} }

func (cryptoRNG) Draw(face DieFace) (int32, error) {
	sides := faceSides(face)
	n, err := crypto.Int(crypto.Reader, big.NewInt(int64(sides)))
	if err != nil {
		return 0, err
	}
	return faceValue(face, int32(n.Int64())), nil
}

// mathRandRNG is a seedable RNG over math/rand, used wherever
// Evaluate's draws must be reproducible: tests, and any caller that
// passes a fixed seed to replay a prior roll (spec.md §8's
// determinism property — the CSPRNG above cannot be seeded, so it
// cannot satisfy that property).
type mathRandRNG struct {
	r *rand.Rand
}

// NewMathRand returns a deterministic RNG seeded with seed.
func NewMathRand(seed int64) RNG {
	return &mathRandRNG{r: rand.New(rand.NewSource(seed))}
}

func (m *mathRandRNG) Draw(face DieFace) (int32, error) {
	sides := faceSides(face)
	return faceValue(face, m.r.Int31n(sides)), nil
}

// seedFromCrypto mints a random int64 seed from the system CSPRNG, for
// callers that want a fresh but still-seedable RNG (e.g. to log the
// seed alongside a result for later replay).
func seedFromCrypto() (int64, error) {
	var u uint64
	if err := binary.Read(crypto.Reader, binary.BigEndian, &u); err != nil {
		return 0, err
	}
	return int64(u & ^uint64(1 << 63)), nil
}

// NewDefaultRNG returns a math/rand RNG seeded from the system CSPRNG:
// not reproducible across process runs unless the caller records the
// seed, but far cheaper to draw from than cryptoRNG under load.
func NewDefaultRNG() (RNG, int64, error) {
	seed, err := seedFromCrypto()
	if err != nil {
		return nil, 0, err
	}
	return NewMathRand(seed), seed, nil
}
