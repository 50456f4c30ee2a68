package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRegistryInsertLastWriteWins ensures that inserting a duplicate name overwrites the record but keeps the
// position of the first insertion.
func TestRegistryInsertLastWriteWins(t *testing.T) {
	registry := NewContractRegistry()
	registry.Insert(*NewContractRecord("A", "0x01"))
	registry.Insert(*NewContractRecord("B", "0x"))
	registry.Insert(*NewContractRecord("A", "0x02"))

	assert.Equal(t, 2, registry.Len())
	record, ok := registry.Get("A")
	require.True(t, ok)
	assert.Equal(t, "0x02", record.Bytecode)

	records := registry.Finalize()
	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].Name)
	assert.Equal(t, "B", records[1].Name)
	assert.Equal(t, 0, registry.Len())
}

// TestRegistryGetReturnsCopy ensures that Get never hands out the live entry while GetMut does.
func TestRegistryGetReturnsCopy(t *testing.T) {
	registry := NewContractRegistry()
	registry.Insert(*NewContractRecord("A", "0x01"))

	copied, _ := registry.Get("A")
	copied.Bytecode = "0xff"
	record, _ := registry.Get("A")
	assert.Equal(t, "0x01", record.Bytecode)

	live, ok := registry.GetMut("A")
	require.True(t, ok)
	live.FileContents = "contract A {}"
	record, _ = registry.Get("A")
	assert.Equal(t, "contract A {}", record.FileContents)

	_, ok = registry.GetMut("missing")
	assert.False(t, ok)
}

// TestSnapshotIsIndependent ensures that changes to the registry after a snapshot are not observed through it.
func TestSnapshotIsIndependent(t *testing.T) {
	registry := NewContractRegistry()
	registry.Insert(*NewContractRecord("A", "0x01"))
	snapshot := registry.Snapshot()

	live, _ := registry.GetMut("A")
	live.Bytecode = "0x02"
	registry.Insert(*NewContractRecord("B", "0x"))

	assert.Equal(t, 1, snapshot.Len())
	assert.Equal(t, []string{"A"}, snapshot.Names())
	frozen, ok := snapshot.Lookup("A")
	require.True(t, ok)
	assert.Equal(t, "0x01", frozen.Bytecode)
	_, ok = snapshot.Lookup("B")
	assert.False(t, ok)
}

// TestImportResolution ensures that self-imports, unknown names, and duplicate edges are dropped, and that imports are
// attached to every record at once.
func TestImportResolution(t *testing.T) {
	registry := NewContractRegistry()
	registry.Insert(*NewContractRecord("A", "0x6000"))
	registry.Insert(*NewContractRecord("B", "0x"))
	registry.Insert(*NewContractRecord("C", "0x6001"))

	resolution := registry.BeginImportResolution()
	assert.True(t, resolution.AddImport("A", "B"))
	assert.False(t, resolution.AddImport("A", "B"))
	assert.False(t, resolution.AddImport("A", "A"))
	assert.False(t, resolution.AddImport("A", "SafeMath"))
	assert.False(t, resolution.AddImport("Missing", "B"))
	assert.True(t, resolution.AddImport("A", "C"))

	// Nothing is attached before completion
	a, _ := registry.Get("A")
	assert.Nil(t, a.Imports)

	registry.CompleteImportResolution(resolution)
	a, _ = registry.Get("A")
	b, _ := registry.Get("B")
	c, _ := registry.Get("C")
	assert.Equal(t, []string{"B", "C"}, a.ImportNames())
	require.NotNil(t, b.Imports)
	assert.Empty(t, b.Imports)
	require.NotNil(t, c.Imports)
	assert.Empty(t, c.Imports)
}

// TestImportResolutionCopiesAreIndependent ensures that the imported copies do not alias the registry entries.
func TestImportResolutionCopiesAreIndependent(t *testing.T) {
	registry := NewContractRegistry()
	registry.Insert(*NewContractRecord("A", "0x6000"))
	registry.Insert(*NewContractRecord("B", "0x"))

	resolution := registry.BeginImportResolution()
	resolution.AddImport("A", "B")
	resolution.AddImport("B", "A")
	registry.CompleteImportResolution(resolution)

	a, _ := registry.GetMut("A")
	a.Imports[0].Bytecode = "0xdead"

	b, _ := registry.Get("B")
	assert.Equal(t, "0x", b.Bytecode)
	// The copy of A held by B reflects the pre-resolution state
	require.Len(t, b.Imports, 1)
	assert.Nil(t, b.Imports[0].Imports)
}

// TestSortContractRecords ensures that interfaces come first and that the order within each kind is stable.
func TestSortContractRecords(t *testing.T) {
	records := []ContractRecord{
		*NewContractRecord("A", "0x01"),
		*NewContractRecord("IA", "0x"),
		*NewContractRecord("B", "0x02"),
		*NewContractRecord("IB", ""),
	}
	SortContractRecords(records)

	names := make([]string, len(records))
	for i, record := range records {
		names[i] = record.Name
	}
	assert.Equal(t, []string{"IA", "IB", "A", "B"}, names)

	interfaces, contracts := CountByKind(records)
	assert.Equal(t, 2, interfaces)
	assert.Equal(t, 2, contracts)
}

// TestSortUsesStoredKind ensures that ordering relies on the stored kind rather than re-deriving it from bytecode.
func TestSortUsesStoredKind(t *testing.T) {
	records := []ContractRecord{
		{Name: "A", Kind: ContractKindContract, Bytecode: "0x"},
		{Name: "B", Kind: ContractKindInterface, Bytecode: "0x01"},
	}
	SortContractRecords(records)
	assert.Equal(t, "B", records[0].Name)
}

// TestNewRepositoryBuildResult ensures that finalizing a registry produces ordered records tagged with the platform.
func TestNewRepositoryBuildResult(t *testing.T) {
	registry := NewContractRegistry()
	registry.Insert(*NewContractRecord("A", "0x60006000"))
	registry.Insert(*NewContractRecord("B", "0x"))

	result := NewRepositoryBuildResult("repos/demo", "foundry", registry)
	assert.Equal(t, "repos/demo", result.Repository)
	assert.Equal(t, "foundry", result.Platform)
	assert.Equal(t, []string{"B", "A"}, result.ContractNames())
	assert.False(t, result.IsEmpty())
}
