package listings

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DefaultSource is the source name used for listings which do not name one.
const DefaultSource = "manual"

// Listing is a single bounty repository discovered by a listing source and cloned ahead of extraction.
type Listing struct {
	// Source names the bounty platform the listing was discovered on. It prefixes results files.
	Source string `yaml:"source"`
	// URL is the repository link as published by the source
	URL string `yaml:"url"`
	// Name is the local path the repository was cloned to. If empty, it is derived from URL.
	Name string `yaml:"name,omitempty"`
	// Commit pins the revision under audit, if the source published one
	Commit string `yaml:"commit,omitempty"`
	// PrizePool is the advertised reward of the bounty, in the currency of the source
	PrizePool decimal.Decimal `yaml:"prizePool,omitempty"`
}

// manifest is the document layout of a listings file.
type manifest struct {
	Listings []Listing `yaml:"listings"`
}

// LoadListings reads a YAML listings manifest. Every listing must carry a URL or a name. Listings without a source
// are attributed to DefaultSource, and a commit embedded in a GitHub URL fills a missing Commit.
func LoadListings(path string) ([]Listing, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var m manifest
	if err = yaml.Unmarshal(b, &m); err != nil {
		return nil, errors.Wrapf(err, "could not parse listings file %s", path)
	}

	for i := range m.Listings {
		listing := &m.Listings[i]
		if listing.URL == "" && listing.Name == "" {
			return nil, errors.Errorf("listing %d in %s has neither a url nor a name", i, path)
		}
		if listing.Name == "" && !isValidRepositoryName(RepositoryName(listing.URL)) {
			return nil, errors.Errorf("listing %d in %s has no usable repository name in url %s", i, path, listing.URL)
		}
		if listing.Source == "" {
			listing.Source = DefaultSource
		}
		if listing.PrizePool.IsNegative() {
			return nil, errors.Errorf("listing %d in %s has a negative prize pool", i, path)
		}
		if listing.Commit == "" && listing.URL != "" {
			if _, _, commit, ok := ParseGitHubURL(listing.URL); ok {
				listing.Commit = commit
			}
		}
	}
	return m.Listings, nil
}

// WriteListings writes the listings as a YAML manifest.
func WriteListings(path string, listings []Listing) error {
	b, err := yaml.Marshal(manifest{Listings: listings})
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(path, b, 0644))
}

// LocalPath returns the directory the listing is cloned to: Name when set, otherwise the repository name of URL
// under reposDir.
func (l Listing) LocalPath(reposDir string) string {
	if l.Name != "" {
		return l.Name
	}
	return filepath.Join(reposDir, RepositoryName(l.URL))
}

// RepositoryName returns the name of the repository a link points into. GitHub links name the repository in their
// second path segment, even when they pin a commit or a file. Other links use their last path segment. A `.git`
// suffix is removed.
func RepositoryName(link string) string {
	if _, name, _, ok := ParseGitHubURL(link); ok {
		return name
	}
	trimmed := strings.TrimRight(link, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	return strings.TrimSuffix(trimmed, ".git")
}

// isValidRepositoryName returns false for names which would not create a directory of their own under the
// repositories directory.
func isValidRepositoryName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// ParseGitHubURL splits a GitHub link into the repository URL, the repository name, and the commit it pins. Links of
// the form `/tree/<sha>`, `/commit/<sha>` and `/blob/<sha>/...` pin a commit, bare repository links do not. False is
// returned if the link does not point into a GitHub repository.
func ParseGitHubURL(link string) (string, string, string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", "", "", false
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
	if host != "github.com" {
		return "", "", "", false
	}

	segments := strings.FieldsFunc(parsed.Path, func(r rune) bool { return r == '/' })
	if len(segments) < 2 {
		return "", "", "", false
	}
	owner, name := segments[0], strings.TrimSuffix(segments[1], ".git")
	if name == "" {
		return "", "", "", false
	}
	repoURL := "https://github.com/" + owner + "/" + name

	var commit string
	if len(segments) >= 4 {
		switch segments[2] {
		case "tree", "commit", "blob":
			commit = segments[3]
		}
	}
	return repoURL, name, commit, true
}
