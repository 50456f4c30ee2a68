package platforms

import (
	"testing"

	"github.com/crytic/harvester/utils/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hardhatContract returns the compiler output of a single contract for the test fixtures.
func hardhatContract(bytecode string) map[string]any {
	return map[string]any{
		"evm": map[string]any{
			"bytecode":         map[string]any{"object": bytecode, "sourceMap": "1:1:0"},
			"deployedBytecode": map[string]any{"object": bytecode, "sourceMap": "2:2:0"},
		},
	}
}

// hardhatFixture returns a hardhat artifacts tree in which Vault links the Math library and implements IVault.
func hardhatFixture(t *testing.T) map[string]string {
	buildInfo := map[string]any{
		"solcVersion": "0.8.17",
		"input": map[string]any{
			"sources": map[string]any{
				"contracts/Vault.sol":  map[string]any{"content": "contract Vault {}"},
				"contracts/Math.sol":   map[string]any{"content": "library Math {}"},
				"contracts/IVault.sol": map[string]any{"content": "interface IVault {}"},
			},
		},
		"output": map[string]any{
			"sources": map[string]any{
				"contracts/Vault.sol":  map[string]any{"id": 0, "ast": map[string]any{"absolutePath": "contracts/Vault.sol", "id": 100}},
				"contracts/Math.sol":   map[string]any{"id": 1, "ast": map[string]any{"absolutePath": "contracts/Math.sol", "id": 101}},
				"contracts/IVault.sol": map[string]any{"id": 2, "ast": map[string]any{"absolutePath": "contracts/IVault.sol", "id": 102}},
			},
			"contracts": map[string]any{
				"contracts/Vault.sol":  map[string]any{"Vault": hardhatContract("60806040")},
				"contracts/Math.sol":   map[string]any{"Math": hardhatContract("60aa")},
				"contracts/IVault.sol": map[string]any{"IVault": hardhatContract("")},
				"contracts/Orphan.sol": map[string]any{"Orphan": hardhatContract("60bb")},
			},
		},
	}
	reference := []any{map[string]any{"start": 10, "length": 20}}

	return map[string]string{
		"hardhat.config.js":                            "module.exports = {};",
		"artifacts/build-info/0a1b.json":               mustJSON(t, buildInfo),
		"artifacts/build-info/0a1b.dbg.json":           `{"_format":"hh-sol-dbg-1"}`,
		"artifacts/contracts/Vault.sol/Vault.dbg.json": `{"_format":"hh-sol-dbg-1","buildInfo":"../../build-info/0a1b.json"}`,
		"artifacts/contracts/Vault.sol/Vault.json": mustJSON(t, map[string]any{
			"contractName":           "Vault",
			"linkReferences":         map[string]any{"contracts/Math.sol": map[string]any{"Math": reference}},
			"deployedLinkReferences": map[string]any{"contracts/Math.sol": map[string]any{"Math": reference}, "contracts/Missing.sol": map[string]any{"Missing": reference}},
		}),
		"artifacts/contracts/Math.sol/Math.json":     mustJSON(t, map[string]any{"contractName": "Math", "linkReferences": map[string]any{}}),
		"artifacts/contracts/IVault.sol/IVault.json": mustJSON(t, map[string]any{"linkReferences": map[string]any{}}),
	}
}

// TestHardhatExtraction ensures that records are created from build-info files and imports are resolved from link
// references.
func TestHardhatExtraction(t *testing.T) {
	repository := testutils.WriteTestFiles(t, t.TempDir(), hardhatFixture(t))

	result := ExtractContracts(NewHardhatCompilationConfig(), repository)
	assert.Equal(t, "hardhat", result.Platform)
	require.Len(t, result.Contracts, 3)
	assert.Equal(t, "IVault", result.Contracts[0].Name)

	records := recordsByName(result)
	_, exists := records["Orphan"]
	assert.False(t, exists)

	iVault := records["IVault"]
	assert.True(t, iVault.IsInterface())
	assert.Equal(t, "0x", iVault.Bytecode)
	assert.Empty(t, iVault.Imports)

	vault := records["Vault"]
	assert.False(t, vault.IsInterface())
	assert.Equal(t, "0x60806040", vault.Bytecode)
	assert.Equal(t, "0x60806040", vault.DeployedBytecode)
	assert.Equal(t, "1:1:0", vault.SourceMap)
	assert.Equal(t, "2:2:0", vault.DeployedSourceMap)
	assert.Equal(t, "contracts/Vault.sol", vault.AbsolutePath)
	assert.Equal(t, "contract Vault {}", vault.FileContents)
	assert.Equal(t, "0.8.17", vault.CompilerVersion)
	require.NotNil(t, vault.SourceId)
	assert.Equal(t, 0, *vault.SourceId)
	assert.Equal(t, []string{"Math"}, vault.ImportNames())

	assert.Empty(t, records["Math"].Imports)
}

// TestHardhatWithoutBuildInfo ensures that an artifacts directory without build-info yields no records.
func TestHardhatWithoutBuildInfo(t *testing.T) {
	repository := testutils.WriteTestFiles(t, t.TempDir(), map[string]string{
		"artifacts/contracts/Vault.sol/Vault.json": `{"contractName":"Vault"}`,
	})

	result := ExtractContracts(NewHardhatCompilationConfig(), repository)
	assert.True(t, result.IsEmpty())
}

// TestHardhatMissingEvm ensures that contracts without evm output are excluded.
func TestHardhatMissingEvm(t *testing.T) {
	buildInfo := map[string]any{
		"output": map[string]any{
			"sources": map[string]any{"contracts/A.sol": map[string]any{"id": 0}},
			"contracts": map[string]any{
				"contracts/A.sol": map[string]any{
					"A":       map[string]any{"abi": []any{}},
					"B":       map[string]any{"evm": map[string]any{}},
					"Present": hardhatContract("6000"),
				},
			},
		},
	}
	repository := testutils.WriteTestFiles(t, t.TempDir(), map[string]string{
		"artifacts/build-info/1.json": mustJSON(t, buildInfo),
	})

	result := ExtractContracts(NewHardhatCompilationConfig(), repository)
	assert.Equal(t, []string{"Present"}, result.ContractNames())
	assert.Equal(t, "contracts/A.sol", result.Contracts[0].AbsolutePath)
}
