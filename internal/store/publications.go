// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/dem-catalog/pkg/types"
)

// publicationManifest is the on-disk shape of a release manifest.
type publicationManifest struct {
	Publications []types.ReleasePublication `yaml:"publications"`
}

// LoadPublicationManifest reads release publications from a YAML manifest.
// Every entry must carry a strip identity, domain, kind, and release
// version; a bad entry fails the whole load so a partial manifest never
// reaches the store.
func LoadPublicationManifest(path string) ([]types.ReleasePublication, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var manifest publicationManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	for i, pub := range manifest.Publications {
		switch {
		case pub.StripDEMID == "":
			return nil, fmt.Errorf("manifest %s: entry %d has no strip id", path, i)
		case pub.Domain == "":
			return nil, fmt.Errorf("manifest %s: entry %d (%s) has no domain", path, i, pub.StripDEMID)
		case pub.Kind == "":
			return nil, fmt.Errorf("manifest %s: entry %d (%s) has no kind", path, i, pub.StripDEMID)
		case pub.ReleaseVersion == "":
			return nil, fmt.Errorf("manifest %s: entry %d (%s) has no release version", path, i, pub.StripDEMID)
		}
	}
	return manifest.Publications, nil
}
