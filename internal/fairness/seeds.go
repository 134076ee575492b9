package fairness

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

var ErrEmptyClientSeed = errors.New("client seed cannot be empty")

const (
	serverSeedBytes = 32
	clientSeedBytes = 16
)

func NewServerSeed() (string, error) {
	return randomHex(serverSeedBytes)
}

func NewClientSeed() (string, error) {
	return randomHex(clientSeedBytes)
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random seed: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Session is the seed state of one player for one game. The server seed is
// replaced after every outcome; the client seed stays until the player
// changes it.
type Session struct {
	ClientSeed string `json:"client_seed"`
	ServerSeed string `json:"server_seed"`
	Nonce      uint64 `json:"nonce"`
}

func NewSession() (Session, error) {
	client, err := NewClientSeed()
	if err != nil {
		return Session{}, err
	}
	server, err := NewServerSeed()
	if err != nil {
		return Session{}, err
	}
	return Session{ClientSeed: client, ServerSeed: server}, nil
}

// Commitment is the hash of the server seed that the next outcome will use.
func (s Session) Commitment() string {
	return ServerSeedHash(s.ServerSeed)
}

// WithClientSeed starts a new seed pair with the player's seed. The nonce
// restarts at zero since the pair has never been used.
func (s Session) WithClientSeed(seed string) (Session, error) {
	if seed == "" {
		return s, ErrEmptyClientSeed
	}
	server, err := NewServerSeed()
	if err != nil {
		return s, err
	}
	return Session{ClientSeed: seed, ServerSeed: server}, nil
}

// Next resolves the outcome for the current seeds and nonce, then returns the
// session advanced to a fresh server seed and the following nonce.
func (s Session) Next(d Draw) (Outcome, Session, error) {
	out, err := Generate(Seeds{Server: s.ServerSeed, Client: s.ClientSeed}, s.Nonce, d)
	if err != nil {
		return Outcome{}, s, err
	}

	server, err := NewServerSeed()
	if err != nil {
		return Outcome{}, s, err
	}

	return out, Session{
		ClientSeed: s.ClientSeed,
		ServerSeed: server,
		Nonce:      s.Nonce + 1,
	}, nil
}
