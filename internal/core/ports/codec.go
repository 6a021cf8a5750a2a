package ports

import "github.com/srgjo27/campus_ticket/internal/core/domain"

type TokenCodec interface {
	Encode(identity domain.Identity) (string, error)
	// Decode returns an error wrapping domain.ErrDecode for anything that is
	// not a complete, authentic token.
	Decode(token string) (domain.Identity, error)
}
