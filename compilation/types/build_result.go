package types

import "github.com/crytic/harvester/utils"

// RepositoryBuildResult is the ordered set of contract records extracted from a single repository.
type RepositoryBuildResult struct {
	// Repository is the path of the repository the records were extracted from
	Repository string `json:"repository"`

	// Platform is the identifier of the toolchain that produced the records
	Platform string `json:"platform,omitempty"`

	// Contracts holds the records, interfaces first
	Contracts []ContractRecord `json:"contracts"`
}

// NewRepositoryBuildResult finalizes the registry into a RepositoryBuildResult with its records ordered.
func NewRepositoryBuildResult(repository string, platform string, registry *ContractRegistry) RepositoryBuildResult {
	contracts := registry.Finalize()
	SortContractRecords(contracts)
	return RepositoryBuildResult{
		Repository: repository,
		Platform:   platform,
		Contracts:  contracts,
	}
}

// IsEmpty returns true if no contract records were extracted.
func (r RepositoryBuildResult) IsEmpty() bool {
	return len(r.Contracts) == 0
}

// ContractNames returns the names of the extracted records in order.
func (r RepositoryBuildResult) ContractNames() []string {
	return utils.SliceSelect(r.Contracts, func(record ContractRecord) string { return record.Name })
}
