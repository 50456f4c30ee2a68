package types

import (
	"strings"

	"github.com/crytic/harvester/utils"
	"github.com/crytic/medusa-geth/common/hexutil"
	"golang.org/x/crypto/sha3"
)

// ContractKind describes whether a contract record carries deployable code or only declares an interface.
type ContractKind string

const (
	// ContractKindInterface represents a record with empty creation bytecode
	ContractKindInterface ContractKind = "interface"
	// ContractKindContract represents a record with non-empty creation bytecode
	ContractKindContract ContractKind = "contract"
)

// ContractRecord is the normalized representation of a single compiled contract, independent of the toolchain that
// produced it.
type ContractRecord struct {
	// Name is the contract name, unique within a registry
	Name string `json:"contractName"`

	// Kind is derived from Bytecode once, when the record is created
	Kind ContractKind `json:"kind"`

	// Bytecode is the creation bytecode as a 0x-prefixed hex string. Empty bytecode is represented as "0x".
	Bytecode string `json:"bytecode"`

	// DeployedBytecode is the runtime bytecode, if the toolchain emitted it
	DeployedBytecode string `json:"deployedBytecode,omitempty"`

	// SourceMap is the creation bytecode source map, passed through as emitted
	SourceMap string `json:"sourceMap,omitempty"`

	// DeployedSourceMap is the runtime bytecode source map, passed through as emitted
	DeployedSourceMap string `json:"deployedSourceMap,omitempty"`

	// AbsolutePath is the source file path as recorded by the compiler
	AbsolutePath string `json:"absolutePath,omitempty"`

	// SourceId is the compiler-assigned source unit id, if known
	SourceId *int `json:"sourceId,omitempty"`

	// FileContents is the Solidity source of the file that declared this contract, if available
	FileContents string `json:"fileContents,omitempty"`

	// CompilerVersion is the normalized compiler version that produced the artifact, if known
	CompilerVersion string `json:"compilerVersion,omitempty"`

	// Imports holds owned copies of the records this contract directly imports. It is nil until import resolution
	// completes, after which it is non-nil (possibly empty).
	Imports []ContractRecord `json:"imports"`
}

// NewContractRecord creates a ContractRecord with normalized bytecode and the kind derived from it.
func NewContractRecord(name string, bytecode string) *ContractRecord {
	normalized := NormalizeBytecode(bytecode)
	return &ContractRecord{
		Name:     name,
		Kind:     ClassifyBytecode(normalized),
		Bytecode: normalized,
	}
}

// IsEmptyBytecode returns true if the provided bytecode string contains no code. Both "0x" and "" are empty.
func IsEmptyBytecode(bytecode string) bool {
	return stripHexPrefix(strings.TrimSpace(bytecode)) == ""
}

// ClassifyBytecode returns ContractKindInterface iff the bytecode is empty.
func ClassifyBytecode(bytecode string) ContractKind {
	if IsEmptyBytecode(bytecode) {
		return ContractKindInterface
	}
	return ContractKindContract
}

// NormalizeBytecode returns the bytecode with surrounding whitespace removed and a lowercase "0x" prefix.
func NormalizeBytecode(bytecode string) string {
	return "0x" + stripHexPrefix(strings.TrimSpace(bytecode))
}

// stripHexPrefix removes a leading "0x" or "0X" if present.
func stripHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// IsInterface returns true if the record was classified as an interface.
func (r ContractRecord) IsInterface() bool {
	return r.Kind == ContractKindInterface
}

// CodeSize returns the size in bytes of the creation bytecode.
func (r ContractRecord) CodeSize() int {
	return len(stripHexPrefix(r.Bytecode)) / 2
}

// BytecodeHash returns the keccak256 hash of the creation bytecode as a hex string. Unlinked library placeholders are
// replaced with the zero address before hashing. An empty string is returned if the bytecode cannot be decoded.
func (r ContractRecord) BytecodeHash() string {
	b, err := hexutil.Decode(LinkWithZeroAddresses(r.Bytecode))
	if err != nil {
		return ""
	}
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(b)
	return hexutil.Encode(hasher.Sum(nil))
}

// EmbeddedMetadata returns the CBOR metadata the compiler appended to the runtime bytecode, falling back to the
// creation bytecode. Nil is returned if none could be found.
func (r ContractRecord) EmbeddedMetadata() *ContractMetadata {
	for _, code := range []string{r.DeployedBytecode, r.Bytecode} {
		if IsEmptyBytecode(code) {
			continue
		}
		b, err := hexutil.Decode(LinkWithZeroAddresses(NormalizeBytecode(code)))
		if err != nil {
			continue
		}
		if metadata := ExtractContractMetadata(b); metadata != nil {
			return metadata
		}
	}
	return nil
}

// ImportNames returns the names of the imported records in order.
func (r ContractRecord) ImportNames() []string {
	return utils.SliceSelect(r.Imports, func(imported ContractRecord) string { return imported.Name })
}

// Clone returns a deep copy of the record, including its nested imports.
func (r ContractRecord) Clone() ContractRecord {
	clone := r
	if r.SourceId != nil {
		id := *r.SourceId
		clone.SourceId = &id
	}
	if r.Imports != nil {
		clone.Imports = make([]ContractRecord, len(r.Imports))
		for i := range r.Imports {
			clone.Imports[i] = r.Imports[i].Clone()
		}
	}
	return clone
}
