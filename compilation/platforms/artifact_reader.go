package platforms

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/crytic/harvester/compilation/types"
	"github.com/crytic/harvester/logging"
	"github.com/crytic/harvester/logging/colors"
	"github.com/crytic/harvester/utils"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// DefaultArtifactCacheSize is the number of files an ArtifactReader keeps in memory between the two passes
const DefaultArtifactCacheSize = 256

// ArtifactReader reads build output files on behalf of a platform for the duration of a single extraction. Files read
// during the populate pass are cached so that the import resolution pass does not read them from disk again. An
// ArtifactReader must not be shared between extractions.
type ArtifactReader struct {
	// cache maps a file path to its contents
	cache *lru.Cache[string, []byte]

	// logger receives per-file diagnostics
	logger *logging.Logger
}

// NewArtifactReader returns an ArtifactReader which caches up to cacheSize files and reports to the provided logger.
func NewArtifactReader(cacheSize int, logger *logging.Logger) *ArtifactReader {
	if cacheSize <= 0 {
		cacheSize = DefaultArtifactCacheSize
	}
	// lru.New only fails for a non-positive size
	cache, _ := lru.New[string, []byte](cacheSize)
	return &ArtifactReader{
		cache:  cache,
		logger: logger,
	}
}

// Logger returns the logger per-file diagnostics should be reported to.
func (r *ArtifactReader) Logger() *logging.Logger {
	return r.logger
}

// ReadFile returns the contents of the file at the provided path, from cache if possible.
func (r *ArtifactReader) ReadFile(path string) ([]byte, error) {
	if b, ok := r.cache.Get(path); ok {
		return b, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	r.cache.Add(path, b)
	return b, nil
}

// ReadJSON reads the file at the provided path and decodes it into v. Unreadable or malformed files are reported as a
// warning, and false is returned.
func (r *ArtifactReader) ReadJSON(path string, v any) bool {
	b, err := r.ReadFile(path)
	if err != nil {
		r.logger.Warn("Skipping unreadable artifact ", colors.Bold, path, colors.Reset, err)
		return false
	}
	if err = json.Unmarshal(b, v); err != nil {
		r.logger.Warn("Skipping malformed artifact ", colors.Bold, path, colors.Reset, errors.WithStack(err))
		return false
	}
	return true
}

// CachedFiles returns the number of files currently held in the cache.
func (r *ArtifactReader) CachedFiles() int {
	return r.cache.Len()
}

// walkArtifacts visits every regular JSON file under root in lexical order. Directories whose name is in skipDirs are
// not descended into. Files for which skipFile returns true are not visited. Entries that cannot be read are skipped.
func walkArtifacts(root string, skipDirs []string, skipFile func(name string) bool, logger *logging.Logger, visit func(path string)) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// The root itself being unreadable ends the walk, anything else is skipped
			logger.Warn("Skipping unreadable path ", colors.Bold, path, colors.Reset, errors.WithStack(err))
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && slices.Contains(skipDirs, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		if skipFile != nil && skipFile(d.Name()) {
			return nil
		}
		visit(path)
		return nil
	})
}

// decodeAST decodes an embedded AST, returning nil if it is absent or malformed.
func decodeAST(raw json.RawMessage) *types.AST {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var ast types.AST
	if err := json.Unmarshal(raw, &ast); err != nil {
		return nil
	}
	return &ast
}

// artifactStem returns the file name of the artifact without its directory and `.json` extension.
func artifactStem(path string) string {
	return utils.GetFileNameWithoutExtension(path)
}
