// Package fairness derives game outcomes from a committed server seed, a
// player-chosen client seed and a per-outcome nonce.
//
// The digest for an outcome is the hex SHA-256 of "server:client:nonce". Any
// third party holding the revealed seeds can recompute it and the values
// derived from it, so the house cannot pick a result after the player has
// committed to a bet.
package fairness

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
)

// chunkWidth is the number of hex characters consumed per derived value.
const chunkWidth = 4

const chunkSpace = 1 << (4 * chunkWidth)

var (
	ErrInvalidDraw     = errors.New("draw count must be non-negative and range positive")
	ErrDigestExhausted = errors.New("digest too short for requested outcome count")
	ErrMalformedDigest = errors.New("digest is not valid hex")
)

type Seeds struct {
	Server string `json:"server_seed"`
	Client string `json:"client_seed"`
}

// Draw describes what a game consumes from one digest: Count values in
// [0, Range). Unbiased selects rejection sampling instead of the plain modulo
// reduction.
type Draw struct {
	Count    int  `json:"count"`
	Range    int  `json:"range"`
	Unbiased bool `json:"unbiased"`
}

func (d Draw) valid() bool {
	return d.Count >= 0 && d.Range > 0 && d.Range <= chunkSpace
}

type Outcome struct {
	Seeds
	ServerSeedHash string `json:"server_seed_hash"`
	Nonce          uint64 `json:"nonce"`
	Digest         string `json:"digest"`
	Values         []int  `json:"values"`
}

func CommitHash(seeds Seeds, nonce uint64) string {
	msg := seeds.Server + ":" + seeds.Client + ":" + strconv.FormatUint(nonce, 10)
	sum := sha256.Sum256([]byte(msg))
	return hex.EncodeToString(sum[:])
}

// ServerSeedHash is the commitment published before the server seed is used.
func ServerSeedHash(serverSeed string) string {
	sum := sha256.Sum256([]byte(serverSeed))
	return hex.EncodeToString(sum[:])
}

// DeriveOutcomeVector splits digest into 4-hex-character chunks and reduces
// each modulo rng. The modulo bias is at most rng/65536 per value; callers that
// care use DeriveUnbiased. Asking for more values than the digest holds is an
// error rather than a silent default.
func DeriveOutcomeVector(digest string, count, rng int) ([]int, error) {
	d := Draw{Count: count, Range: rng}
	if !d.valid() {
		return nil, ErrInvalidDraw
	}
	if count > len(digest)/chunkWidth {
		return nil, ErrDigestExhausted
	}

	values := make([]int, count)
	for i := range values {
		chunk, err := parseChunk(digest[i*chunkWidth : (i+1)*chunkWidth])
		if err != nil {
			return nil, err
		}
		values[i] = chunk % rng
	}
	return values, nil
}

// DeriveUnbiased draws count values in [0, rng) by rejection sampling: chunks
// at or above the largest multiple of rng are skipped. When the digest runs
// out it is extended with SHA-256(digest + ":" + round), so it never fails
// for a well-formed digest.
func DeriveUnbiased(digest string, count, rng int) ([]int, error) {
	d := Draw{Count: count, Range: rng, Unbiased: true}
	if !d.valid() {
		return nil, ErrInvalidDraw
	}

	limit := chunkSpace - chunkSpace%rng
	values := make([]int, 0, count)
	material := digest

	for round := 1; len(values) < count; round++ {
		for i := 0; i+chunkWidth <= len(material) && len(values) < count; i += chunkWidth {
			chunk, err := parseChunk(material[i : i+chunkWidth])
			if err != nil {
				return nil, err
			}
			if chunk >= limit {
				continue
			}
			values = append(values, chunk%rng)
		}
		sum := sha256.Sum256([]byte(digest + ":" + strconv.Itoa(round)))
		material = hex.EncodeToString(sum[:])
	}
	return values, nil
}

func derive(digest string, d Draw) ([]int, error) {
	if d.Unbiased {
		return DeriveUnbiased(digest, d.Count, d.Range)
	}
	return DeriveOutcomeVector(digest, d.Count, d.Range)
}

func Generate(seeds Seeds, nonce uint64, d Draw) (Outcome, error) {
	digest := CommitHash(seeds, nonce)
	values, err := derive(digest, d)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{
		Seeds:          seeds,
		ServerSeedHash: ServerSeedHash(seeds.Server),
		Nonce:          nonce,
		Digest:         digest,
		Values:         values,
	}, nil
}

// Verify recomputes the outcome for the given inputs and reports whether it
// matches claimed element for element.
func Verify(seeds Seeds, nonce uint64, d Draw, claimed []int) bool {
	if len(claimed) != d.Count {
		return false
	}
	out, err := Generate(seeds, nonce, d)
	if err != nil {
		return false
	}
	for i, v := range out.Values {
		if claimed[i] != v {
			return false
		}
	}
	return true
}

func parseChunk(s string) (int, error) {
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, ErrMalformedDigest
	}
	return int(v), nil
}
