package serialization

import "errors"

var (
	ErrUnknownCompression = errors.New("unknown compression scheme")
	ErrShortCiphertext    = errors.New("sealed payload shorter than nonce")
)
