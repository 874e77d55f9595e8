package dataset

import (
	"path"
	"path/filepath"
	"strings"
)

// ArtifactPath derives the output image path for a dataset: the identifier
// without extension plus suffix and format. Remote identifiers, and any
// identifier when dir is set, use the base name inside dir.
func ArtifactPath(id, suffix, format, dir string) string {
	var name string
	if Scheme(id) != "file" {
		name = path.Base(id[strings.Index(id, "://")+3:])
	} else {
		name = strings.TrimPrefix(id, "file://")
	}

	name = strings.TrimSuffix(name, filepath.Ext(name)) + suffix + "." + strings.ToLower(format)

	if dir != "" {
		return filepath.Join(dir, filepath.Base(name))
	}
	return name
}
