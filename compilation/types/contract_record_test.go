package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClassifyBytecode ensures that every empty bytecode sentinel is classified as an interface and anything else as a
// contract.
func TestClassifyBytecode(t *testing.T) {
	for _, empty := range []string{"", "0x", "0X", "  0x  ", "\n"} {
		assert.Equal(t, ContractKindInterface, ClassifyBytecode(empty), "bytecode %q", empty)
	}
	for _, code := range []string{"0x60006000", "6080", "0x__$1234$__"} {
		assert.Equal(t, ContractKindContract, ClassifyBytecode(code), "bytecode %q", code)
	}
}

// TestNewContractRecordNormalizesBytecode ensures that records always carry a lowercase 0x prefix.
func TestNewContractRecordNormalizesBytecode(t *testing.T) {
	record := NewContractRecord("Token", "6080")
	assert.Equal(t, "0x6080", record.Bytecode)
	assert.Equal(t, ContractKindContract, record.Kind)
	assert.Equal(t, 2, record.CodeSize())
	assert.Nil(t, record.Imports)

	empty := NewContractRecord("IToken", "")
	assert.Equal(t, "0x", empty.Bytecode)
	assert.True(t, empty.IsInterface())
	assert.Equal(t, 0, empty.CodeSize())

	upper := NewContractRecord("Upper", "0XABCD")
	assert.Equal(t, "0xABCD", upper.Bytecode)
}

// TestCloneIsDeep ensures that mutating a clone never affects the original record.
func TestCloneIsDeep(t *testing.T) {
	id := 3
	original := NewContractRecord("A", "0x6000")
	original.SourceId = &id
	original.Imports = []ContractRecord{*NewContractRecord("B", "0x")}

	clone := original.Clone()
	*clone.SourceId = 7
	clone.Imports[0].Name = "C"
	clone.Imports = append(clone.Imports, *NewContractRecord("D", "0x"))

	assert.Equal(t, 3, *original.SourceId)
	assert.Equal(t, []string{"B"}, original.ImportNames())
	assert.Equal(t, []string{"C", "D"}, clone.ImportNames())
}

// TestBytecodeHash ensures that hashing is deterministic, tolerates unlinked libraries, and fails soft on bad hex.
func TestBytecodeHash(t *testing.T) {
	// keccak256 of the empty input
	empty := NewContractRecord("I", "0x")
	assert.Equal(t, "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", empty.BytecodeHash())

	a := NewContractRecord("A", "0x6000")
	b := NewContractRecord("B", "0x6000")
	assert.Equal(t, a.BytecodeHash(), b.BytecodeHash())
	assert.NotEqual(t, empty.BytecodeHash(), a.BytecodeHash())

	// An unlinked placeholder hashes the same as its zero-linked form
	placeholder := "__$" + LibraryPlaceholder("contracts/Math.sol:Math") + "$__"
	unlinked := NewContractRecord("U", "0x73"+placeholder)
	linked := NewContractRecord("L", "0x73"+zeroAddressHex)
	require.NotEmpty(t, unlinked.BytecodeHash())
	assert.Equal(t, linked.BytecodeHash(), unlinked.BytecodeHash())

	invalid := NewContractRecord("X", "0xzz")
	assert.Empty(t, invalid.BytecodeHash())
}

// TestLibraryPlaceholders ensures that placeholders are discovered once each, in order of appearance.
func TestLibraryPlaceholders(t *testing.T) {
	first := LibraryPlaceholder("contracts/A.sol:A")
	second := LibraryPlaceholder("contracts/B.sol:B")
	assert.Len(t, first, 34)

	bytecode := "0x60__$" + first + "$__60__$" + second + "$__60__$" + first + "$__"
	assert.Equal(t, []string{first, second}, LibraryPlaceholders(bytecode))
	assert.Empty(t, LibraryPlaceholders("0x6000"))
}

// TestNormalizeCompilerVersion ensures that the various compiler version formats reduce to major.minor.patch.
func TestNormalizeCompilerVersion(t *testing.T) {
	assert.Equal(t, "0.8.19", NormalizeCompilerVersion("0.8.19+commit.7dd6d404"))
	assert.Equal(t, "0.8.19", NormalizeCompilerVersion("v0.8.19"))
	assert.Equal(t, "0.5.16", NormalizeCompilerVersion("0.5.16+commit.9c3226ce.Emscripten.clang"))
	assert.Equal(t, "", NormalizeCompilerVersion("  "))
	assert.Equal(t, "nightly", NormalizeCompilerVersion("nightly"))
}

// TestContractMetadataCompilerVersion ensures that the compiler version is recovered from the metadata "solc" key.
func TestContractMetadataCompilerVersion(t *testing.T) {
	metadata := ContractMetadata{"solc": []byte{0, 8, 19}}
	assert.Equal(t, "0.8.19", metadata.CompilerVersion())
	assert.Equal(t, "", ContractMetadata{}.CompilerVersion())
	assert.Nil(t, ContractMetadata{}.ExtractBytecodeHash())

	record := NewContractRecord("A", "0x6000")
	assert.Nil(t, record.EmbeddedMetadata())
}
