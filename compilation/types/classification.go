package types

import (
	"golang.org/x/exp/slices"
)

// kindRank orders contract kinds for presentation. Lower ranks sort first.
func kindRank(kind ContractKind) int {
	if kind == ContractKindInterface {
		return 0
	}
	return 1
}

// SortContractRecords sorts the records in place so that every interface precedes every contract. The relative order
// of records of the same kind is preserved. The kind stored on each record is used as-is.
func SortContractRecords(records []ContractRecord) {
	slices.SortStableFunc(records, func(a, b ContractRecord) int {
		return kindRank(a.Kind) - kindRank(b.Kind)
	})
}

// CountByKind returns the number of interfaces and contracts in the records.
func CountByKind(records []ContractRecord) (interfaces int, contracts int) {
	for _, record := range records {
		if record.IsInterface() {
			interfaces++
		} else {
			contracts++
		}
	}
	return interfaces, contracts
}
