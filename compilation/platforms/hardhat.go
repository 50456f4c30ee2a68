package platforms

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/crytic/harvester/compilation/types"
	"github.com/crytic/harvester/logging/colors"
	"github.com/crytic/harvester/utils"
	"github.com/pkg/errors"
)

// hardhatBuildInfoDirectory is the artifacts subdirectory holding combined compiler input and output
const hardhatBuildInfoDirectory = "build-info"

// HardhatCompilationConfig describes the configuration for extracting hardhat build output.
type HardhatCompilationConfig struct {
	// ArtifactsDirectory is the build output directory, relative to the repository
	ArtifactsDirectory string `json:"artifactsDirectory"`
	// PackageManagers lists the package managers to build with, most preferred first. Supported values are "yarn"
	// and "npm".
	PackageManagers []string `json:"packageManagers"`
}

// NewHardhatCompilationConfig returns the default HardhatCompilationConfig.
func NewHardhatCompilationConfig() *HardhatCompilationConfig {
	return &HardhatCompilationConfig{
		ArtifactsDirectory: "artifacts",
		PackageManagers:    []string{"yarn", "npm"},
	}
}

// Platform returns the platform identifier
func (s *HardhatCompilationConfig) Platform() string {
	return "hardhat"
}

// MarkerFiles returns the files which declare a hardhat project
func (s *HardhatCompilationConfig) MarkerFiles() []string {
	return []string{"hardhat.config.js", "hardhat.config.ts"}
}

// Validate ensures at least one package manager is configured and each is supported.
func (s *HardhatCompilationConfig) Validate() error {
	if len(s.PackageManagers) == 0 {
		return errors.New("hardhat requires at least one package manager")
	}
	for _, packageManager := range s.PackageManagers {
		if packageManager != "yarn" && packageManager != "npm" {
			return errors.Errorf("unsupported hardhat package manager '%s' (options: yarn, npm)", packageManager)
		}
	}
	return nil
}

// BuildModes returns one build mode per configured package manager, in the order configured.
func (s *HardhatCompilationConfig) BuildModes() []BuildMode {
	modes := make([]BuildMode, 0, len(s.PackageManagers))
	for _, packageManager := range s.PackageManagers {
		switch packageManager {
		case "yarn":
			modes = append(modes, BuildMode{
				Name: "yarn",
				Commands: []Command{
					{Name: "yarn", Args: []string{"install"}},
					{Name: "yarn", Args: []string{"compile"}},
				},
			})
		case "npm":
			modes = append(modes, BuildMode{
				Name: "npm",
				Commands: []Command{
					{Name: "npm", Args: []string{"install"}},
					{Name: "npx", Args: []string{"hardhat", "compile"}},
				},
			})
		}
	}
	return modes
}

// OutputDirectory returns the hardhat artifacts directory of the repository
func (s *HardhatCompilationConfig) OutputDirectory(repositoryPath string) string {
	return filepath.Join(repositoryPath, filepath.FromSlash(s.ArtifactsDirectory))
}

// hardhatBytecode is a bytecode object of the compiler output
type hardhatBytecode struct {
	Object    *string `json:"object"`
	SourceMap string  `json:"sourceMap"`
}

// hardhatBuildInfo is the subset of a hardhat build-info file that is extracted
type hardhatBuildInfo struct {
	SolcVersion string `json:"solcVersion"`
	Input       struct {
		Sources map[string]struct {
			Content string `json:"content"`
		} `json:"sources"`
	} `json:"input"`
	Output struct {
		Sources map[string]struct {
			Id  *int `json:"id"`
			Ast *struct {
				AbsolutePath string `json:"absolutePath"`
				Id           *int   `json:"id"`
			} `json:"ast"`
		} `json:"sources"`
		Contracts map[string]map[string]struct {
			Evm *struct {
				Bytecode         *hardhatBytecode `json:"bytecode"`
				DeployedBytecode *hardhatBytecode `json:"deployedBytecode"`
			} `json:"evm"`
		} `json:"contracts"`
	} `json:"output"`
}

// hardhatArtifact is the subset of a per-contract hardhat artifact that is used to resolve imports
type hardhatArtifact struct {
	ContractName           string                                `json:"contractName"`
	LinkReferences         map[string]map[string]json.RawMessage `json:"linkReferences"`
	DeployedLinkReferences map[string]map[string]json.RawMessage `json:"deployedLinkReferences"`
}

// linkedLibraries returns the names of the libraries referenced by the artifact, ordered by source path and then by
// library name.
func (a *hardhatArtifact) linkedLibraries() []string {
	libraries := make([]string, 0)
	for _, references := range []map[string]map[string]json.RawMessage{a.LinkReferences, a.DeployedLinkReferences} {
		for _, sourcePath := range utils.SortedKeys(references) {
			libraries = append(libraries, utils.SortedKeys(references[sourcePath])...)
		}
	}
	return libraries
}

// isDebugArtifact returns true for the `.dbg.json` files hardhat writes next to each artifact
func isDebugArtifact(name string) bool {
	return strings.HasSuffix(name, ".dbg.json")
}

// Populate walks the build-info files in the artifacts directory and creates one record per compiled contract
func (s *HardhatCompilationConfig) Populate(reader *ArtifactReader, outputRoot string) *types.ContractRegistry {
	registry := types.NewContractRegistry()

	buildInfoRoot := filepath.Join(outputRoot, hardhatBuildInfoDirectory)
	if !utils.DirectoryExists(buildInfoRoot) {
		reader.Logger().Info("No build-info found at ", colors.Bold, buildInfoRoot, colors.Reset)
		return registry
	}
	walkArtifacts(buildInfoRoot, nil, isDebugArtifact, reader.Logger(), func(path string) {
		var buildInfo hardhatBuildInfo
		if !reader.ReadJSON(path, &buildInfo) {
			return
		}
		compilerVersion := types.NormalizeCompilerVersion(buildInfo.SolcVersion)

		// Map iteration order is random, so sources and contracts are visited sorted to keep overwrites stable
		for _, sourcePath := range utils.SortedKeys(buildInfo.Output.Contracts) {
			source, exists := buildInfo.Output.Sources[sourcePath]
			if !exists {
				reader.Logger().Warn("Skipping contracts of ", colors.Bold, sourcePath, colors.Reset, " without compiler output sources in ", path)
				continue
			}

			contracts := buildInfo.Output.Contracts[sourcePath]
			for _, contractName := range utils.SortedKeys(contracts) {
				evm := contracts[contractName].Evm
				if evm == nil || evm.Bytecode == nil || evm.Bytecode.Object == nil {
					reader.Logger().Warn("Skipping contract without bytecode ", colors.Bold, contractName, colors.Reset, " in ", path)
					continue
				}

				record := types.NewContractRecord(contractName, *evm.Bytecode.Object)
				record.SourceMap = evm.Bytecode.SourceMap
				if evm.DeployedBytecode != nil && evm.DeployedBytecode.Object != nil {
					record.DeployedBytecode = types.NormalizeBytecode(*evm.DeployedBytecode.Object)
					record.DeployedSourceMap = evm.DeployedBytecode.SourceMap
				}
				record.AbsolutePath = sourcePath
				record.SourceId = source.Id
				if source.Ast != nil {
					if source.Ast.AbsolutePath != "" {
						record.AbsolutePath = source.Ast.AbsolutePath
					}
					if record.SourceId == nil {
						record.SourceId = source.Ast.Id
					}
				}
				if input, exists := buildInfo.Input.Sources[sourcePath]; exists {
					record.FileContents = input.Content
				}
				record.CompilerVersion = compilerVersion

				registry.Insert(*record)
			}
		}
	})
	return registry
}

// ResolveImports walks the per-contract artifacts and resolves every linked library as an import of the contract
func (s *HardhatCompilationConfig) ResolveImports(reader *ArtifactReader, outputRoot string, registry *types.ContractRegistry) {
	resolution := registry.BeginImportResolution()

	walkArtifacts(outputRoot, []string{hardhatBuildInfoDirectory}, isDebugArtifact, reader.Logger(), func(path string) {
		var artifact hardhatArtifact
		if !reader.ReadJSON(path, &artifact) {
			return
		}
		name := artifact.ContractName
		if name == "" {
			name = artifactStem(path)
		}
		for _, library := range artifact.linkedLibraries() {
			resolution.AddImport(name, library)
		}
	})

	registry.CompleteImportResolution(resolution)
}
