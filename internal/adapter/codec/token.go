// Package codec turns ticket identities into opaque, authenticated tokens
// that can be printed into a QR code or a Code 128 barcode.
//
// A token is
//
//	"t1." base64url( nonce[24] || XChaCha20-Poly1305(cbor(identity)) )
//
// The nonce is a BLAKE3 keyed hash of the plaintext, so the same identity
// under the same key always yields the same token.
package codec

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/srgjo27/campus_ticket/internal/core/domain"
)

const (
	KeySize = 32

	tokenPrefix  = "t1."
	tokenVersion = byte(1)

	encryptionInfo = "campus-ticket token encryption v1"
	nonceInfo      = "campus-ticket token nonce v1"
)

var (
	ErrMalformedToken      = fmt.Errorf("%w: malformed token", domain.ErrDecode)
	ErrTokenAuthentication = fmt.Errorf("%w: token authentication failed", domain.ErrDecode)
	ErrIncompleteToken     = fmt.Errorf("%w: token is missing identity fields", domain.ErrDecode)
)

var encoding = base64.RawURLEncoding.Strict()

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		MaxMapPairs: 16,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// payload uses integer keys to keep the symbol small.
type payload struct {
	TicketID       []byte `cbor:"1,keyasint,omitempty"`
	EventID        []byte `cbor:"2,keyasint,omitempty"`
	HolderID       []byte `cbor:"3,keyasint,omitempty"`
	TicketNumber   string `cbor:"4,keyasint,omitempty"`
	IssuedAtMillis int64  `cbor:"5,keyasint,omitempty"`
}

type TokenCodec struct {
	encryptionKey []byte
	nonceKey      []byte
}

// New derives the encryption and nonce keys from a 32-byte master key.
func New(masterKey []byte) (*TokenCodec, error) {
	if len(masterKey) != KeySize {
		return nil, fmt.Errorf("token key must be %d bytes, got %d", KeySize, len(masterKey))
	}

	encryptionKey, err := deriveKey(masterKey, encryptionInfo)
	if err != nil {
		return nil, err
	}

	nonceKey, err := deriveKey(masterKey, nonceInfo)
	if err != nil {
		return nil, err
	}

	return &TokenCodec{encryptionKey: encryptionKey, nonceKey: nonceKey}, nil
}

func deriveKey(masterKey []byte, info string) ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("deriving %q key: %w", info, err)
	}
	return key, nil
}

func (c *TokenCodec) Encode(identity domain.Identity) (string, error) {
	if !complete(identity) {
		return "", ErrIncompleteToken
	}

	plaintext, err := encMode.Marshal(payload{
		TicketID:       identity.TicketID[:],
		EventID:        identity.EventID[:],
		HolderID:       identity.HolderID[:],
		TicketNumber:   identity.TicketNumber,
		IssuedAtMillis: identity.IssuedAtMillis,
	})
	if err != nil {
		return "", fmt.Errorf("encoding token payload: %w", err)
	}

	aead, err := chacha20poly1305.NewX(c.encryptionKey)
	if err != nil {
		return "", fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}

	nonce := c.syntheticNonce(plaintext)

	sealed := make([]byte, chacha20poly1305.NonceSizeX, chacha20poly1305.NonceSizeX+len(plaintext)+aead.Overhead())
	copy(sealed, nonce)
	sealed = aead.Seal(sealed, nonce, plaintext, []byte{tokenVersion})

	return tokenPrefix + encoding.EncodeToString(sealed), nil
}

func (c *TokenCodec) Decode(token string) (domain.Identity, error) {
	body, ok := strings.CutPrefix(token, tokenPrefix)
	if !ok {
		return domain.Identity{}, ErrMalformedToken
	}

	sealed, err := encoding.DecodeString(body)
	if err != nil {
		return domain.Identity{}, ErrMalformedToken
	}

	if len(sealed) < chacha20poly1305.NonceSizeX+chacha20poly1305.Overhead {
		return domain.Identity{}, ErrMalformedToken
	}

	aead, err := chacha20poly1305.NewX(c.encryptionKey)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}

	nonce := sealed[:chacha20poly1305.NonceSizeX]
	plaintext, err := aead.Open(nil, nonce, sealed[chacha20poly1305.NonceSizeX:], []byte{tokenVersion})
	if err != nil {
		return domain.Identity{}, ErrTokenAuthentication
	}

	var p payload
	if err := decMode.Unmarshal(plaintext, &p); err != nil {
		return domain.Identity{}, ErrMalformedToken
	}

	identity, err := p.identity()
	if err != nil {
		return domain.Identity{}, err
	}

	return identity, nil
}

func (c *TokenCodec) syntheticNonce(plaintext []byte) []byte {
	hasher, err := blake3.NewKeyed(c.nonceKey)
	if err != nil {
		panic("codec: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write([]byte{tokenVersion})
	hasher.Write(plaintext)
	return hasher.Sum(nil)[:chacha20poly1305.NonceSizeX]
}

func (p payload) identity() (domain.Identity, error) {
	ticketID, err1 := uuid.FromBytes(p.TicketID)
	eventID, err2 := uuid.FromBytes(p.EventID)
	holderID, err3 := uuid.FromBytes(p.HolderID)
	if err := errors.Join(err1, err2, err3); err != nil {
		return domain.Identity{}, ErrIncompleteToken
	}

	identity := domain.Identity{
		TicketID:       ticketID,
		EventID:        eventID,
		HolderID:       holderID,
		TicketNumber:   p.TicketNumber,
		IssuedAtMillis: p.IssuedAtMillis,
	}
	if !complete(identity) {
		return domain.Identity{}, ErrIncompleteToken
	}

	return identity, nil
}

func complete(i domain.Identity) bool {
	return i.TicketID != uuid.Nil &&
		i.EventID != uuid.Nil &&
		i.HolderID != uuid.Nil &&
		strings.TrimSpace(i.TicketNumber) != "" &&
		i.IssuedAtMillis > 0
}
