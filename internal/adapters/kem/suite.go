package kem

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	circlkem "github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/schemes"

	"github.com/kyberfog/kyberfog/internal/domain"
)

// Security levels, matching Kyber parameter sets. Larger levels mean
// larger keys and ciphertexts and more compute.
const (
	Level512  = 512
	Level768  = 768
	Level1024 = 1024
)

const nonceSize = 12

// ErrAuthentication is returned when an AEAD tag fails to verify. It is
// indistinguishable from a tampered KEM ciphertext, since Kyber's
// implicit rejection yields a wrong shared secret rather than an error.
var ErrAuthentication = errors.New("kyberfog: aead authentication failed")

// Suite binds a Kyber KEM at a chosen security level to AES-256-GCM.
// The 32-byte Kyber shared secret is used directly as the AES key.
type Suite struct {
	scheme circlkem.Scheme
}

func NewSuite(level int) (Suite, error) {
	var name string
	switch level {
	case Level512:
		name = "Kyber512"
	case Level768:
		name = "Kyber768"
	case Level1024:
		name = "Kyber1024"
	default:
		return Suite{}, fmt.Errorf("unsupported security level %d (want 512, 768, or 1024)", level)
	}
	sch := schemes.ByName(name)
	if sch == nil {
		return Suite{}, fmt.Errorf("kem scheme %q unavailable", name)
	}
	return Suite{scheme: sch}, nil
}

func (s Suite) Scheme() circlkem.Scheme { return s.scheme }

// KeyPair holds one party's encapsulation keys.
type KeyPair struct {
	Public  circlkem.PublicKey
	Private circlkem.PrivateKey
}

func (s Suite) GenerateKeyPair() (KeyPair, error) {
	pk, sk, err := s.scheme.GenerateKeyPair()
	if err != nil {
		return KeyPair{}, fmt.Errorf("kem keygen: %w", err)
	}
	return KeyPair{Public: pk, Private: sk}, nil
}

// Seal encapsulates a fresh shared secret to pk and seals plaintext
// under the derived key with a fresh nonce.
func (s Suite) Seal(pk circlkem.PublicKey, recipient string, plaintext []byte) (*domain.Envelope, error) {
	ct, ss, err := s.scheme.Encapsulate(pk)
	if err != nil {
		return nil, fmt.Errorf("encapsulate: %w", err)
	}

	aead, err := newAEAD(ss)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	return &domain.Envelope{
		KEMCiphertext: ct,
		Nonce:         nonce,
		Ciphertext:    aead.Seal(nil, nonce, plaintext, nil),
		Recipient:     recipient,
	}, nil
}

// Open decapsulates the envelope's shared secret with sk and opens the
// AEAD ciphertext. Any tampering surfaces as ErrAuthentication.
func (s Suite) Open(sk circlkem.PrivateKey, env *domain.Envelope) ([]byte, error) {
	if len(env.KEMCiphertext) != s.scheme.CiphertextSize() {
		return nil, fmt.Errorf("%w: kem ciphertext size %d", ErrAuthentication, len(env.KEMCiphertext))
	}
	ss, err := s.scheme.Decapsulate(sk, env.KEMCiphertext)
	if err != nil {
		return nil, fmt.Errorf("decapsulate: %w", err)
	}

	aead, err := newAEAD(ss)
	if err != nil {
		return nil, err
	}
	if len(env.Nonce) != nonceSize {
		return nil, fmt.Errorf("%w: nonce size %d", ErrAuthentication, len(env.Nonce))
	}
	plain, err := aead.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plain, nil
}

func newAEAD(sharedSecret []byte) (cipher.AEAD, error) {
	key := sharedSecret
	if len(key) != 32 {
		sum := sha256.Sum256(sharedSecret)
		key = sum[:]
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}
	return aead, nil
}
