package neo

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// ScriptHashFromAddress returns the 0x-prefixed script hash of a base58
// N3 address.
func ScriptHashFromAddress(addr string) (string, error) {
	u, err := address.StringToUint160(addr)
	if err != nil {
		return "", fmt.Errorf("invalid address %q: %w", addr, err)
	}
	return "0x" + u.StringLE(), nil
}

// AddressFromScriptHash is the inverse of ScriptHashFromAddress.
func AddressFromScriptHash(hash string) (string, error) {
	u, err := util.Uint160DecodeStringLE(strings.TrimPrefix(hash, "0x"))
	if err != nil {
		return "", fmt.Errorf("invalid script hash %q: %w", hash, err)
	}
	return address.Uint160ToString(u), nil
}

// AddressFromPublicKey derives the standard account address of a
// compressed hex public key.
func AddressFromPublicKey(pub string) (string, error) {
	pk, err := keys.NewPublicKeyFromString(pub)
	if err != nil {
		return "", fmt.Errorf("invalid public key: %w", err)
	}
	return pk.Address(), nil
}

// ScriptHashFromStackBytes decodes a base64 ByteString stack item holding a
// serialized script hash into its 0x-prefixed display form.
func ScriptHashFromStackBytes(b64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", err
	}
	u, err := util.Uint160DecodeBytesBE(raw)
	if err != nil {
		return "", err
	}
	return "0x" + u.StringLE(), nil
}

// HexFromStackBytes decodes a base64 ByteString stack item into hex.
func HexFromStackBytes(b64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
