package source

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hstay/docextract/internal/common"
)

// resolveLocal validates a bare filename against the configured image
// directory. The resolved path must stay within that directory.
func (r *Resolver) resolveLocal(filename string) (*ResolvedDocument, error) {
	if filename == "" || filename != filepath.Base(filename) ||
		strings.ContainsAny(filename, `/\`) || strings.Contains(filename, "..") {
		return nil, common.InvalidInputError(common.CodePathTraversal,
			"filename must be a basename without directory or parent references")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !r.cfg.ExtensionAllowed(ext) {
		return nil, common.InvalidInputErrorf(common.CodeInvalidExtension,
			"unsupported extension %q; allowed extensions: %s",
			ext, strings.Join(r.cfg.Source.AllowedExtensions, ", "))
	}

	root, err := filepath.Abs(r.cfg.Source.ImageDirectory)
	if err != nil {
		return nil, common.InvalidInputError(common.CodePathTraversal,
			"image directory could not be resolved")
	}
	candidate, err := filepath.Abs(filepath.Join(root, filename))
	if err != nil || (candidate != root && !strings.HasPrefix(candidate, root+string(filepath.Separator))) {
		return nil, common.InvalidInputError(common.CodePathTraversal,
			"resolved file path escapes configured image directory")
	}

	info, err := os.Stat(candidate)
	if err != nil || info.IsDir() {
		return nil, common.NotFoundError(common.CodeSourceNotFound,
			"source file not found: "+filename)
	}

	return &ResolvedDocument{Path: candidate, Ext: ext}, nil
}

func extOf(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
