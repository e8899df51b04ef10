// Package soladdr validates Solana addresses appearing in wallet and token
// fields of indexer rows.
package soladdr

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// WSOLMint is the wrapped SOL mint address.
const WSOLMint = "So11111111111111111111111111111111111111112"

// Decode decodes a base58 address and verifies it is 32 bytes.
func Decode(addr string) ([]byte, error) {
	raw, err := base58.Decode(addr)
	if err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("address is %d bytes, want 32", len(raw))
	}
	return raw, nil
}

// IsValid reports whether addr is a well-formed 32-byte base58 address.
// Token mints may be program-derived (off-curve), so no curve check here.
func IsValid(addr string) bool {
	_, err := Decode(addr)
	return err == nil
}

// IsWalletAddress reports whether addr is a plausible wallet address: a
// well-formed 32-byte value that lies on the ed25519 curve. Program derived
// addresses are off-curve and cannot sign, so they are not wallets.
func IsWalletAddress(addr string) bool {
	raw, err := Decode(addr)
	if err != nil {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}
