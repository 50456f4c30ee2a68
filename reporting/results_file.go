package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/crytic/harvester/compilation"
	"github.com/crytic/harvester/compilation/types"
	"github.com/crytic/harvester/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ResultsDocument is the serialized snapshot of the records extracted from one repository.
type ResultsDocument struct {
	// RunID identifies the run which produced the snapshot
	RunID uuid.UUID `json:"runId"`
	// GeneratedAt is the time the snapshot was written
	GeneratedAt time.Time `json:"generatedAt"`
	// Repository is the repository path the records were extracted from
	Repository string `json:"repository"`
	// Platform is the identifier of the platform which produced the records
	Platform string `json:"platform,omitempty"`
	// ContractsHash is a deterministic hash of the records, used to detect unchanged snapshots
	ContractsHash string `json:"contractsHash"`
	// Contracts are the ordered records
	Contracts []types.ContractRecord `json:"contracts"`
	// Bytecode describes the creation bytecode of every non-interface record, keyed by record name
	Bytecode map[string]BytecodeInfo `json:"bytecode"`
}

// ResultsFileName returns the results file name for a repository: the parser name, the repository path with its
// separators replaced by underscores, and a `_contracts.json` suffix.
func ResultsFileName(parser string, repositoryPath string) string {
	cleaned := filepath.ToSlash(filepath.Clean(repositoryPath))
	cleaned = strings.TrimPrefix(cleaned, "./")
	cleaned = strings.Trim(cleaned, "/")
	cleaned = strings.NewReplacer("/", "_", ":", "_").Replace(cleaned)
	return parser + "_" + cleaned + "_contracts.json"
}

// ReadResultsFile reads a results snapshot previously written by WriteResultsFile.
func ReadResultsFile(path string) (*ResultsDocument, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var document ResultsDocument
	if err = json.Unmarshal(b, &document); err != nil {
		return nil, errors.Wrapf(err, "could not parse results file %s", path)
	}
	return &document, nil
}

// WriteResultsFile writes the snapshot of the result into the directory, named by ResultsFileName. It returns the
// path written and whether the records differ from the snapshot previously stored at that path.
func WriteResultsFile(directory string, parser string, result types.RepositoryBuildResult, runID uuid.UUID) (string, bool, error) {
	// Ensure the results directory exists.
	if err := utils.MakeDirectory(directory); err != nil {
		return "", false, err
	}
	path := filepath.Join(directory, ResultsFileName(parser, result.Repository))

	contracts := result.Contracts
	if contracts == nil {
		contracts = make([]types.ContractRecord, 0)
	}
	document := ResultsDocument{
		RunID:         runID,
		GeneratedAt:   time.Now().UTC(),
		Repository:    result.Repository,
		Platform:      result.Platform,
		ContractsHash: compilation.ComputeArtifactHash(contracts),
		Contracts:     contracts,
		Bytecode:      DescribeBytecode(contracts),
	}

	// Compare against the previous snapshot, an unreadable one counts as changed
	changed := true
	if previous, err := ReadResultsFile(path); err == nil {
		changed = previous.ContractsHash != document.ContractsHash
	}

	jsonEncodedData, err := json.MarshalIndent(document, "", " ")
	if err != nil {
		return "", false, errors.WithStack(err)
	}
	if err = os.WriteFile(path, jsonEncodedData, 0644); err != nil {
		return "", false, errors.Wrapf(err, "could not write results file %s", path)
	}
	return path, changed, nil
}
