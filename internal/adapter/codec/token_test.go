package codec

import (
	"bytes"
	"crypto/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/srgjo27/campus_ticket/internal/core/domain"
)

func newTestCodec(t *testing.T) *TokenCodec {
	t.Helper()

	key := make([]byte, KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	c, err := New(key)
	require.NoError(t, err)
	return c
}

func sampleIdentity() domain.Identity {
	return domain.Identity{
		TicketID:       uuid.New(),
		EventID:        uuid.New(),
		HolderID:       uuid.New(),
		TicketNumber:   "TKT-1001",
		IssuedAtMillis: time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC).UnixMilli(),
	}
}

func TestNew_RejectsWrongKeySize(t *testing.T) {
	_, err := New([]byte("short"))
	assert.Error(t, err)

	_, err = New(bytes.Repeat([]byte{1}, KeySize+1))
	assert.Error(t, err)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	c := newTestCodec(t)

	for i := 0; i < 50; i++ {
		identity := sampleIdentity()
		identity.TicketNumber = "TKT-" + uuid.NewString()[:8]
		identity.IssuedAtMillis += int64(i)

		token, err := c.Encode(identity)
		require.NoError(t, err)

		decoded, err := c.Decode(token)
		require.NoError(t, err)
		assert.Equal(t, identity, decoded)
	}
}

func TestEncode_IsDeterministic(t *testing.T) {
	c := newTestCodec(t)
	identity := sampleIdentity()

	first, err := c.Encode(identity)
	require.NoError(t, err)
	second, err := c.Encode(identity)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, len(first) > len(tokenPrefix))
	assert.NotContains(t, first, identity.TicketNumber)
}

func TestEncode_RejectsIncompleteIdentity(t *testing.T) {
	c := newTestCodec(t)

	identity := sampleIdentity()
	identity.TicketNumber = "  "

	_, err := c.Encode(identity)
	assert.ErrorIs(t, err, ErrIncompleteToken)
	assert.ErrorIs(t, err, domain.ErrDecode)
}

func TestDecode_DetectsAnyFlippedByte(t *testing.T) {
	c := newTestCodec(t)
	identity := sampleIdentity()

	token, err := c.Encode(identity)
	require.NoError(t, err)

	for i := 0; i < len(token); i++ {
		tampered := []byte(token)
		tampered[i] ^= 0x01

		_, err := c.Decode(string(tampered))
		assert.ErrorIsf(t, err, domain.ErrDecode, "flipped byte %d was accepted", i)
	}
}

func TestDecode_FailsUnderDifferentKey(t *testing.T) {
	issuer := newTestCodec(t)
	other := newTestCodec(t)

	token, err := issuer.Encode(sampleIdentity())
	require.NoError(t, err)

	_, err = other.Decode(token)
	assert.ErrorIs(t, err, ErrTokenAuthentication)
}

func TestDecode_Malformed(t *testing.T) {
	c := newTestCodec(t)

	cases := map[string]string{
		"empty":          "",
		"ticket number":  "TKT-1001",
		"prefix only":    tokenPrefix,
		"bad base64":     tokenPrefix + "!!!not-base64!!!",
		"too short":      tokenPrefix + encoding.EncodeToString([]byte("abc")),
		"legacy aes":     "U2FsdGVkX1+q0Xq7r4P6wq7w==",
		"whitespace pad": " " + tokenPrefix + "AAAA",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c.Decode(input)
			assert.ErrorIs(t, err, domain.ErrDecode)
		})
	}
}

func TestDecode_IncompletePayload(t *testing.T) {
	c := newTestCodec(t)

	plaintext, err := encMode.Marshal(payload{
		TicketID:     []byte{1, 2, 3},
		EventID:      nil,
		TicketNumber: "TKT-1001",
	})
	require.NoError(t, err)

	aead, err := chacha20poly1305.NewX(c.encryptionKey)
	require.NoError(t, err)

	nonce := c.syntheticNonce(plaintext)
	sealed := aead.Seal(append([]byte{}, nonce...), nonce, plaintext, []byte{tokenVersion})

	_, err = c.Decode(tokenPrefix + encoding.EncodeToString(sealed))
	assert.ErrorIs(t, err, ErrIncompleteToken)
}
