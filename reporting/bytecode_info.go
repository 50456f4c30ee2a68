package reporting

import (
	"github.com/crytic/harvester/compilation/types"
	"github.com/crytic/medusa-geth/common/hexutil"
)

// BytecodeInfo describes the creation bytecode of a contract record in a results snapshot.
type BytecodeInfo struct {
	// CodeSize is the size of the creation bytecode in bytes
	CodeSize int `json:"codeSize"`
	// BytecodeHash is the keccak256 hash of the creation bytecode, with unlinked libraries linked to the zero address
	BytecodeHash string `json:"bytecodeHash,omitempty"`
	// MetadataHash is the source metadata hash the compiler embedded in the bytecode, if any
	MetadataHash string `json:"metadataHash,omitempty"`
	// UnlinkedLibraries lists the libraries the bytecode still needs to be linked against. Libraries which are not
	// among the records of the repository are listed by their placeholder.
	UnlinkedLibraries []string `json:"unlinkedLibraries,omitempty"`
}

// DescribeBytecode returns the BytecodeInfo of every non-interface record, keyed by record name.
func DescribeBytecode(records []types.ContractRecord) map[string]BytecodeInfo {
	libraries := libraryPlaceholderNames(records)

	infos := make(map[string]BytecodeInfo)
	for _, record := range records {
		if record.IsInterface() {
			continue
		}
		info := BytecodeInfo{
			CodeSize:     record.CodeSize(),
			BytecodeHash: record.BytecodeHash(),
		}
		if metadata := record.EmbeddedMetadata(); metadata != nil {
			if hash := metadata.ExtractBytecodeHash(); hash != nil {
				info.MetadataHash = hexutil.Encode(hash)
			}
		}
		for _, placeholder := range types.LibraryPlaceholders(record.Bytecode) {
			if name, ok := libraries[placeholder]; ok {
				placeholder = name
			}
			info.UnlinkedLibraries = append(info.UnlinkedLibraries, placeholder)
		}
		infos[record.Name] = info
	}
	return infos
}

// libraryPlaceholderNames maps the library placeholder of every record with a known source path to its name.
func libraryPlaceholderNames(records []types.ContractRecord) map[string]string {
	names := make(map[string]string)
	for _, record := range records {
		if record.AbsolutePath == "" {
			continue
		}
		names[types.LibraryPlaceholder(record.AbsolutePath+":"+record.Name)] = record.Name
	}
	return names
}
