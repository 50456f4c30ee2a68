package types

import (
	"golang.org/x/exp/slices"
)

// ContractRegistry is the keyed working set of contract records for a single extraction. It is populated in a first
// pass and amended once, in a second pass, with resolved imports. A ContractRegistry is not safe for concurrent use.
type ContractRegistry struct {
	// records maps a contract name to its live record
	records map[string]*ContractRecord

	// order lists contract names in the order they were first inserted
	order []string
}

// NewContractRegistry returns an empty ContractRegistry.
func NewContractRegistry() *ContractRegistry {
	return &ContractRegistry{
		records: make(map[string]*ContractRecord),
		order:   make([]string, 0),
	}
}

// Insert adds the record to the registry under its name. A record with the same name is overwritten, though the name
// keeps the position of its first insertion.
func (r *ContractRegistry) Insert(record ContractRecord) {
	clone := record.Clone()
	if existing, exists := r.records[record.Name]; exists {
		*existing = clone
		return
	}
	r.records[record.Name] = &clone
	r.order = append(r.order, record.Name)
}

// Len returns the number of records in the registry.
func (r *ContractRegistry) Len() int {
	return len(r.records)
}

// Get returns a copy of the record with the given name.
func (r *ContractRegistry) Get(name string) (ContractRecord, bool) {
	record, exists := r.records[name]
	if !exists {
		return ContractRecord{}, false
	}
	return record.Clone(), true
}

// GetMut returns the live record with the given name. Changes made through the returned pointer are visible in the
// registry.
func (r *ContractRegistry) GetMut(name string) (*ContractRecord, bool) {
	record, exists := r.records[name]
	return record, exists
}

// Snapshot returns a deep copy of the registry which is unaffected by later changes to it.
func (r *ContractRegistry) Snapshot() *RegistrySnapshot {
	snapshot := &RegistrySnapshot{
		records: make(map[string]ContractRecord, len(r.records)),
		order:   slices.Clone(r.order),
	}
	for name, record := range r.records {
		snapshot.records[name] = record.Clone()
	}
	return snapshot
}

// Finalize drains the registry into a slice of records in insertion order. The registry is empty afterwards.
func (r *ContractRegistry) Finalize() []ContractRecord {
	records := make([]ContractRecord, 0, len(r.order))
	for _, name := range r.order {
		records = append(records, *r.records[name])
	}
	r.records = make(map[string]*ContractRecord)
	r.order = make([]string, 0)
	return records
}

// BeginImportResolution freezes a snapshot of the registry and opens a pending set of import edges against it. The
// registry itself is left untouched until CompleteImportResolution is called.
func (r *ContractRegistry) BeginImportResolution() *ImportResolution {
	return &ImportResolution{
		snapshot: r.Snapshot(),
		pending:  make(map[string][]ContractRecord),
		seen:     make(map[string]map[string]struct{}),
	}
}

// CompleteImportResolution attaches the pending import lists to every record in the registry at once. Records for
// which no import was recorded receive an empty list.
func (r *ContractRegistry) CompleteImportResolution(resolution *ImportResolution) {
	for _, name := range r.order {
		record, _ := r.GetMut(name)
		imports, exists := resolution.pending[name]
		if !exists {
			imports = make([]ContractRecord, 0)
		}
		record.Imports = imports
	}
	resolution.pending = make(map[string][]ContractRecord)
	resolution.seen = make(map[string]map[string]struct{})
}

// RegistrySnapshot is a read-only deep copy of a ContractRegistry.
type RegistrySnapshot struct {
	// records maps a contract name to its frozen record
	records map[string]ContractRecord

	// order lists contract names in insertion order
	order []string
}

// Lookup returns a copy of the frozen record with the given name.
func (s *RegistrySnapshot) Lookup(name string) (ContractRecord, bool) {
	record, exists := s.records[name]
	if !exists {
		return ContractRecord{}, false
	}
	return record.Clone(), true
}

// Len returns the number of records in the snapshot.
func (s *RegistrySnapshot) Len() int {
	return len(s.records)
}

// Names returns the names of the records in the snapshot in insertion order.
func (s *RegistrySnapshot) Names() []string {
	return slices.Clone(s.order)
}

// ImportResolution collects import edges resolved against a frozen RegistrySnapshot. It never reads from or writes to
// the live registry.
type ImportResolution struct {
	// snapshot is the frozen registry state all lookups are made against
	snapshot *RegistrySnapshot

	// pending maps an importer name to the copies of records it imports
	pending map[string][]ContractRecord

	// seen tracks the imported names already recorded per importer
	seen map[string]map[string]struct{}
}

// Snapshot returns the frozen snapshot that imports are resolved against.
func (i *ImportResolution) Snapshot() *RegistrySnapshot {
	return i.snapshot
}

// AddImport records that importer imports the contract named imported. A copy of the imported record is taken from
// the snapshot. False is returned, and nothing is recorded, if either name is absent from the snapshot, if the names
// are equal, or if the edge was already recorded.
func (i *ImportResolution) AddImport(importer string, imported string) bool {
	if importer == imported {
		return false
	}
	if _, exists := i.snapshot.records[importer]; !exists {
		return false
	}
	record, exists := i.snapshot.Lookup(imported)
	if !exists {
		return false
	}

	seen, exists := i.seen[importer]
	if !exists {
		seen = make(map[string]struct{})
		i.seen[importer] = seen
	}
	if _, duplicate := seen[imported]; duplicate {
		return false
	}
	seen[imported] = struct{}{}
	i.pending[importer] = append(i.pending[importer], record)
	return true
}
