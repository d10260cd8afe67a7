package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/EurasianLatinArchive/ELA/pkg/ela/internalerr"
)

// Walker enumerates a source corpus: a root directory whose immediate
// subdirectories each hold XML-TEI files. Destination trees mirror this
// structure exactly, one file in, one file out, same relative path.
type Walker struct {
	Root string
}

// Subdirs returns the sorted names of the immediate subdirectories of the
// corpus root. The listing is non-recursive: each subdirectory is an
// independent unit of work for the consuming stage. A missing or unreadable
// root is a configuration error, not an empty corpus.
func (w Walker) Subdirs() ([]string, error) {
	entries, err := os.ReadDir(w.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrBadCorpusRoot, w.Root, err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Documents returns the sorted names of the XML files directly inside one
// subdirectory of the root.
func (w Walker) Documents(subdir string) ([]string, error) {
	dir := filepath.Join(w.Root, subdir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrBadCorpusRoot, dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".xml") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// SourcePath returns the absolute path of one document under the root.
func (w Walker) SourcePath(subdir, name string) string {
	return filepath.Join(w.Root, subdir, name)
}

// Mirror creates the destination subdirectory matching subdir under
// dstRoot. Re-running against an already populated destination succeeds;
// consumers overwrite per their own semantics.
func Mirror(dstRoot, subdir string) (string, error) {
	dir := filepath.Join(dstRoot, subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("mirror %s: %w", dir, err)
	}
	return dir, nil
}
