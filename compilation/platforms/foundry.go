package platforms

import (
	"encoding/json"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/crytic/harvester/compilation/types"
	"github.com/crytic/harvester/logging/colors"
	"github.com/crytic/harvester/utils"
)

// versionSuffixExp matches the compiler version forge appends to artifact names when a contract is compiled with more
// than one compiler version, e.g. `Token.0.8.19`
var versionSuffixExp = regexp.MustCompile(`\.[0-9]+\.[0-9]+\.[0-9]+$`)

// FoundryCompilationConfig describes the configuration for extracting forge build output.
type FoundryCompilationConfig struct {
	// Command is the forge executable
	Command string `json:"command"`
	// OutputDir is the build output directory, relative to the repository
	OutputDir string `json:"outputDirectory"`
	// Args are additional arguments passed to the build command
	Args []string `json:"args,omitempty"`
}

// NewFoundryCompilationConfig returns the default FoundryCompilationConfig.
func NewFoundryCompilationConfig() *FoundryCompilationConfig {
	return &FoundryCompilationConfig{
		Command:   "forge",
		OutputDir: "out",
		Args:      []string{},
	}
}

// Platform returns the platform identifier
func (s *FoundryCompilationConfig) Platform() string {
	return "foundry"
}

// MarkerFiles returns the files which declare a foundry project
func (s *FoundryCompilationConfig) MarkerFiles() []string {
	return []string{"foundry.toml"}
}

// BuildModes returns the single way of invoking forge
func (s *FoundryCompilationConfig) BuildModes() []BuildMode {
	return []BuildMode{
		{
			Name: "forge",
			Commands: []Command{
				{Name: s.Command, Args: []string{"install"}},
				{Name: s.Command, Args: append([]string{"build"}, s.Args...)},
			},
		},
	}
}

// OutputDirectory returns the forge output directory of the repository
func (s *FoundryCompilationConfig) OutputDirectory(repositoryPath string) string {
	return filepath.Join(repositoryPath, filepath.FromSlash(s.OutputDir))
}

// foundryBytecode is the bytecode object of a forge artifact
type foundryBytecode struct {
	Object    *string `json:"object"`
	SourceMap string  `json:"sourceMap"`
}

// foundryArtifact is the subset of a forge artifact that is extracted
type foundryArtifact struct {
	Bytecode         *foundryBytecode `json:"bytecode"`
	DeployedBytecode *foundryBytecode `json:"deployedBytecode"`
	Ast              json.RawMessage  `json:"ast"`
	Id               *int             `json:"id"`
	Metadata         json.RawMessage  `json:"metadata"`
}

// compilerVersion returns the compiler version recorded in the artifact metadata, which forge emits either as an
// object or as a JSON encoded string.
func (a *foundryArtifact) compilerVersion() string {
	var metadata struct {
		Compiler struct {
			Version string `json:"version"`
		} `json:"compiler"`
	}
	if err := json.Unmarshal(a.Metadata, &metadata); err != nil {
		var encoded string
		if json.Unmarshal(a.Metadata, &encoded) != nil || json.Unmarshal([]byte(encoded), &metadata) != nil {
			return ""
		}
	}
	return types.NormalizeCompilerVersion(metadata.Compiler.Version)
}

// foundryContractName returns the contract name of an artifact path, without any compiler version suffix.
func foundryContractName(path string) string {
	return versionSuffixExp.ReplaceAllString(artifactStem(path), "")
}

// Populate walks the forge output directory and creates one record per artifact with a bytecode object
func (s *FoundryCompilationConfig) Populate(reader *ArtifactReader, outputRoot string) *types.ContractRegistry {
	registry := types.NewContractRegistry()
	repositoryPath := s.repositoryRoot(outputRoot)

	walkArtifacts(outputRoot, []string{"build-info"}, nil, reader.Logger(), func(path string) {
		var artifact foundryArtifact
		if !reader.ReadJSON(path, &artifact) {
			return
		}
		if artifact.Bytecode == nil || artifact.Bytecode.Object == nil {
			reader.Logger().Warn("Skipping artifact without bytecode ", colors.Bold, path, colors.Reset)
			return
		}

		record := types.NewContractRecord(foundryContractName(path), *artifact.Bytecode.Object)
		record.SourceMap = artifact.Bytecode.SourceMap
		if artifact.DeployedBytecode != nil && artifact.DeployedBytecode.Object != nil {
			record.DeployedBytecode = types.NormalizeBytecode(*artifact.DeployedBytecode.Object)
			record.DeployedSourceMap = artifact.DeployedBytecode.SourceMap
		}
		record.CompilerVersion = artifact.compilerVersion()
		record.SourceId = artifact.Id

		if ast := decodeAST(artifact.Ast); ast != nil {
			record.AbsolutePath = ast.AbsolutePath
			if record.SourceId == nil {
				if id := ast.GetSourceUnitID(); id >= 0 {
					record.SourceId = &id
				}
			}
		}
		record.FileContents = readSourceFile(reader, repositoryPath, record.AbsolutePath)
		if record.CompilerVersion == "" {
			if metadata := record.EmbeddedMetadata(); metadata != nil {
				record.CompilerVersion = metadata.CompilerVersion()
			}
		}

		registry.Insert(*record)
	})
	return registry
}

// ResolveImports walks the forge output directory again and resolves the import directives of every artifact.
// Symbols imported by name resolve to the named contract. Imports without symbol aliases resolve to the contract
// named after the imported file.
func (s *FoundryCompilationConfig) ResolveImports(reader *ArtifactReader, outputRoot string, registry *types.ContractRegistry) {
	resolution := registry.BeginImportResolution()

	walkArtifacts(outputRoot, []string{"build-info"}, nil, reader.Logger(), func(path string) {
		name := foundryContractName(path)
		var artifact foundryArtifact
		if !reader.ReadJSON(path, &artifact) {
			return
		}
		ast := decodeAST(artifact.Ast)
		if ast == nil {
			reader.Logger().Warn("Skipping import resolution for artifact without an AST ", colors.Bold, path, colors.Reset)
			return
		}

		for _, directive := range ast.ImportDirectives() {
			foreignNames := directive.ForeignNames()
			if len(foreignNames) == 0 {
				foreignNames = []string{types.SourceFileStem(directive.AbsolutePath)}
			}
			for _, foreignName := range foreignNames {
				resolution.AddImport(name, foreignName)
			}
		}
	})

	registry.CompleteImportResolution(resolution)
}

// repositoryRoot returns the repository directory the output directory belongs to.
func (s *FoundryCompilationConfig) repositoryRoot(outputRoot string) string {
	suffix := string(filepath.Separator) + filepath.Clean(filepath.FromSlash(s.OutputDir))
	if strings.HasSuffix(outputRoot, suffix) {
		return strings.TrimSuffix(outputRoot, suffix)
	}
	return filepath.Dir(outputRoot)
}

// readSourceFile returns the contents of the source file at the relative path within the repository, or an empty
// string if it does not exist or resolves outside of the repository.
func readSourceFile(reader *ArtifactReader, repositoryPath string, relativePath string) string {
	if relativePath == "" || filepath.IsAbs(relativePath) {
		return ""
	}
	sourcePath, ok := utils.ResolvePathWithin(repositoryPath, filepath.FromSlash(relativePath))
	if !ok {
		reader.Logger().Warn("Ignoring source path outside of the repository ", colors.Bold, relativePath, colors.Reset)
		return ""
	}
	if !utils.FileExists(sourcePath) {
		return ""
	}
	b, err := reader.ReadFile(sourcePath)
	if err != nil {
		return ""
	}
	return string(b)
}
