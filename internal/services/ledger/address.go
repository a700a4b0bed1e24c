package ledger

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// DeriveAddress generates a deposit address for a freshly created
// crypto balance entry. Derivation is deterministic per
// (user, symbol, network) so the same entry always resolves to the
// same address. Addresses are derived, not imported; real chain
// custody lives behind the gateway integrations.
func DeriveAddress(userID uint, symbol, network string) string {
	h := sha3.NewLegacyKeccak256()
	fmt.Fprintf(h, "%d:%s:%s", userID, symbol, network)
	sum := h.Sum(nil)

	if IsBitcoinFamily(network) {
		return "bc1q" + hex.EncodeToString(sum[:20])
	}
	// Ethereum-style: last 20 bytes of the keccak digest.
	return "0x" + hex.EncodeToString(sum[12:])
}
