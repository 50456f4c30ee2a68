package platforms

import (
	"encoding/json"
	"path/filepath"

	"github.com/crytic/harvester/compilation/types"
	"github.com/crytic/harvester/logging/colors"
	"github.com/crytic/harvester/utils"
)

// TruffleCompilationConfig describes the configuration for extracting truffle build output.
type TruffleCompilationConfig struct {
	// Command is the truffle executable
	Command string `json:"command"`
	// BuildDirectory is the build output directory, relative to the repository
	BuildDirectory string `json:"buildDirectory"`
	// FallbackDirectory is searched for artifacts when BuildDirectory does not exist
	FallbackDirectory string `json:"fallbackDirectory"`
}

// NewTruffleCompilationConfig returns the default TruffleCompilationConfig.
func NewTruffleCompilationConfig() *TruffleCompilationConfig {
	return &TruffleCompilationConfig{
		Command:           "truffle",
		BuildDirectory:    "build",
		FallbackDirectory: "src",
	}
}

// Platform returns the platform identifier
func (s *TruffleCompilationConfig) Platform() string {
	return "truffle"
}

// MarkerFiles returns the files which declare a truffle project
func (s *TruffleCompilationConfig) MarkerFiles() []string {
	return []string{"truffle-config.js", "truffle.js"}
}

// BuildModes returns the globally installed invocation first and the npx invocation second
func (s *TruffleCompilationConfig) BuildModes() []BuildMode {
	return []BuildMode{
		{
			Name: "npm",
			Commands: []Command{
				{Name: "npm", Args: []string{"install"}},
				{Name: s.Command, Args: []string{"compile"}},
			},
		},
		{
			Name: "npx",
			Commands: []Command{
				{Name: "npm", Args: []string{"install"}},
				{Name: "npx", Args: []string{s.Command, "compile"}},
			},
		},
	}
}

// OutputDirectory returns the build directory of the repository if it exists, and the fallback directory otherwise
func (s *TruffleCompilationConfig) OutputDirectory(repositoryPath string) string {
	buildDirectory := filepath.Join(repositoryPath, filepath.FromSlash(s.BuildDirectory))
	if utils.DirectoryExists(buildDirectory) || s.FallbackDirectory == "" {
		return buildDirectory
	}
	return filepath.Join(repositoryPath, filepath.FromSlash(s.FallbackDirectory))
}

// truffleArtifact is the subset of a truffle artifact that is extracted
type truffleArtifact struct {
	Bytecode          *string         `json:"bytecode"`
	DeployedBytecode  string          `json:"deployedBytecode"`
	SourceMap         string          `json:"sourceMap"`
	DeployedSourceMap string          `json:"deployedSourceMap"`
	Source            string          `json:"source"`
	SourcePath        string          `json:"sourcePath"`
	Ast               json.RawMessage `json:"ast"`
	Compiler          struct {
		Version string `json:"version"`
	} `json:"compiler"`
}

// Populate walks the truffle output directory and creates one record per artifact with bytecode
func (s *TruffleCompilationConfig) Populate(reader *ArtifactReader, outputRoot string) *types.ContractRegistry {
	registry := types.NewContractRegistry()

	walkArtifacts(outputRoot, nil, nil, reader.Logger(), func(path string) {
		var artifact truffleArtifact
		if !reader.ReadJSON(path, &artifact) {
			return
		}
		if artifact.Bytecode == nil {
			reader.Logger().Warn("Skipping artifact without bytecode ", colors.Bold, path, colors.Reset)
			return
		}

		record := types.NewContractRecord(artifactStem(path), *artifact.Bytecode)
		if artifact.DeployedBytecode != "" {
			record.DeployedBytecode = types.NormalizeBytecode(artifact.DeployedBytecode)
		}
		record.SourceMap = artifact.SourceMap
		record.DeployedSourceMap = artifact.DeployedSourceMap
		record.AbsolutePath = artifact.SourcePath
		if ast := decodeAST(artifact.Ast); ast != nil {
			if ast.AbsolutePath != "" {
				record.AbsolutePath = ast.AbsolutePath
			}
			if id := ast.GetSourceUnitID(); id >= 0 {
				record.SourceId = &id
			}
		}
		record.FileContents = artifact.Source
		record.CompilerVersion = types.NormalizeCompilerVersion(artifact.Compiler.Version)

		registry.Insert(*record)
	})
	return registry
}

// ResolveImports walks the truffle output directory again and resolves every imported file to the contract named
// after it
func (s *TruffleCompilationConfig) ResolveImports(reader *ArtifactReader, outputRoot string, registry *types.ContractRegistry) {
	resolution := registry.BeginImportResolution()

	walkArtifacts(outputRoot, nil, nil, reader.Logger(), func(path string) {
		var artifact truffleArtifact
		if !reader.ReadJSON(path, &artifact) {
			return
		}
		ast := decodeAST(artifact.Ast)
		if ast == nil {
			reader.Logger().Warn("Skipping import resolution for artifact without an AST ", colors.Bold, path, colors.Reset)
			return
		}

		name := artifactStem(path)
		for _, directive := range ast.ImportDirectives() {
			resolution.AddImport(name, directive.ImportedFileStem())
		}
	})

	registry.CompleteImportResolution(resolution)
}
