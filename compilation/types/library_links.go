package types

import (
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/crytic/medusa-geth/crypto"
)

// libraryPlaceholderExp matches both the hashed (`__$<hash>$__`) and the legacy (`__<name>__`) placeholder forms
// that the compiler leaves in bytecode which references a library that has not been linked yet.
var libraryPlaceholderExp = regexp.MustCompile(`__(\$[0-9a-zA-Z]*\$|\w*)__`)

// hashedPlaceholderExp matches a single hashed placeholder, which always spans the 40 characters of an address
var hashedPlaceholderExp = regexp.MustCompile(`__\$[0-9a-fA-F]{34}\$__`)

// zeroAddressHex is the 40 character hex representation of the zero address
var zeroAddressHex = strings.Repeat("0", 40)

// LibraryPlaceholder returns the placeholder identifier the compiler uses for the library with the given fully
// qualified name (`path/to/File.sol:Library`).
func LibraryPlaceholder(fullyQualifiedName string) string {
	hash := crypto.Keccak256Hash([]byte(fullyQualifiedName))
	return hex.EncodeToString(hash.Bytes())[:34]
}

// LibraryPlaceholders returns the unique placeholder identifiers found in the bytecode in order of first appearance.
func LibraryPlaceholders(bytecode string) []string {
	placeholders := make([]string, 0)
	seen := make(map[string]struct{})
	for _, match := range libraryPlaceholderExp.FindAllString(bytecode, -1) {
		placeholder := strings.ReplaceAll(strings.ReplaceAll(match, "_", ""), "$", "")
		if _, exists := seen[placeholder]; exists {
			continue
		}
		seen[placeholder] = struct{}{}
		placeholders = append(placeholders, placeholder)
	}
	return placeholders
}

// LinkWithZeroAddresses replaces every hashed library placeholder in the bytecode with the zero address so that the
// bytecode can be decoded.
func LinkWithZeroAddresses(bytecode string) string {
	return hashedPlaceholderExp.ReplaceAllString(bytecode, zeroAddressHex)
}
