package types

import (
	"encoding/json"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// sourceUnitIDExp captures the source unit id from an AST `src` attribute of the form `start:length:id`
var sourceUnitIDExp = regexp.MustCompile(`^[0-9]*:[0-9]*:([0-9]+)$`)

// Node interface represents a generic AST node
type Node interface {
	GetNodeType() string
}

// SymbolAlias is a single `{Symbol as Alias}` entry of an import directive.
type SymbolAlias struct {
	// Foreign is the identifier node of the imported symbol. Older compilers emitted a bare node id here instead.
	Foreign json.RawMessage `json:"foreign"`
	// Local is the alias the symbol is imported under, if any
	Local string `json:"local,omitempty"`
}

// ForeignName returns the name of the imported symbol, or false if the alias does not carry one.
func (s SymbolAlias) ForeignName() (string, bool) {
	var identifier struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(s.Foreign, &identifier); err != nil || identifier.Name == "" {
		return "", false
	}
	return identifier.Name, true
}

// ImportDirective is the import directive node
type ImportDirective struct {
	// NodeType represents the node type
	NodeType string `json:"nodeType"`
	// Src is the source range of this node
	Src string `json:"src"`
	// File is the import path as written in the source
	File string `json:"file"`
	// AbsolutePath is the import path as resolved by the compiler
	AbsolutePath string `json:"absolutePath"`
	// SymbolAliases lists the symbols imported by name, if any
	SymbolAliases []SymbolAlias `json:"symbolAliases"`
}

// GetNodeType implements the Node interface and returns the node type for the import directive
func (d ImportDirective) GetNodeType() string {
	return d.NodeType
}

// ForeignNames returns the names of the symbols this directive imports by name.
func (d ImportDirective) ForeignNames() []string {
	names := make([]string, 0, len(d.SymbolAliases))
	for _, alias := range d.SymbolAliases {
		if name, ok := alias.ForeignName(); ok {
			names = append(names, name)
		}
	}
	return names
}

// ImportedFileStem returns the imported file name without directories or a `.sol` extension. The written path is
// preferred over the resolved one.
func (d ImportDirective) ImportedFileStem() string {
	importPath := d.File
	if importPath == "" {
		importPath = d.AbsolutePath
	}
	return SourceFileStem(importPath)
}

// SourceFileStem strips the directories and the `.sol` extension from a source path.
func SourceFileStem(sourcePath string) string {
	return strings.TrimSuffix(path.Base(strings.ReplaceAll(sourcePath, "\\", "/")), ".sol")
}

// AST is the abstract syntax tree of a single source unit
type AST struct {
	// NodeType represents the node type (currently we only evaluate source unit node types)
	NodeType string `json:"nodeType"`
	// AbsolutePath is the path of the source unit as resolved by the compiler
	AbsolutePath string `json:"absolutePath"`
	// Nodes is a list of Nodes within the AST
	Nodes []Node `json:"nodes"`
	// Src is the source range of this AST
	Src string `json:"src"`
}

// UnmarshalJSON unmarshals from JSON
func (a *AST) UnmarshalJSON(data []byte) error {
	// Unmarshal the top-level AST into our own representation. Defer the unmarshaling of all the individual nodes until later
	type Alias AST
	aux := &struct {
		Nodes []json.RawMessage `json:"nodes"`
		*Alias
	}{
		Alias: (*Alias)(a),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	// Iterate through all the nodes of the source unit
	a.Nodes = make([]Node, 0, len(aux.Nodes))
	for _, nodeData := range aux.Nodes {
		// Unmarshal the node data to retrieve the node type
		var nodeType struct {
			NodeType string `json:"nodeType"`
		}
		if err := json.Unmarshal(nodeData, &nodeType); err != nil {
			return err
		}

		// Unmarshal the contents of the node based on the node type
		switch nodeType.NodeType {
		case "ImportDirective":
			var importDirective ImportDirective
			if err := json.Unmarshal(nodeData, &importDirective); err != nil {
				return err
			}
			a.Nodes = append(a.Nodes, importDirective)
		default:
			continue
		}
	}

	return nil
}

// ImportDirectives returns the import directive nodes of the source unit in source order.
func (a *AST) ImportDirectives() []ImportDirective {
	directives := make([]ImportDirective, 0)
	for _, node := range a.Nodes {
		if directive, ok := node.(ImportDirective); ok {
			directives = append(directives, directive)
		}
	}
	return directives
}

// GetSourceUnitID returns the source unit ID based on the source of the AST, or -1 if it cannot be determined.
func (a *AST) GetSourceUnitID() int {
	sourceUnitCandidates := sourceUnitIDExp.FindStringSubmatch(a.Src)
	if len(sourceUnitCandidates) == 2 { // FindStringSubmatch includes the whole match as the first element
		sourceUnit, err := strconv.Atoi(sourceUnitCandidates[1])
		if err == nil {
			return sourceUnit
		}
	}
	return -1
}
