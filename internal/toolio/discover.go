// Package toolio implements the file/directory discovery shared by the
// three command-line drivers, per spec.md section 6: a single positional
// path that names either one file of the expected extension, or a
// directory whose matching-extension files are processed in
// directory-iteration order.
package toolio

import (
	"fmt"
	"os"
	"path/filepath"
)

// Discover resolves path into an ordered list of files to process. If path
// itself has the given extension, it names a single file. Otherwise path
// must be a directory, and every entry inside it with that extension is
// returned, in the order the directory listing yields them -- no sorting.
func Discover(path, ext string) ([]string, error) {
	if filepath.Ext(path) == ext {
		return []string{path}, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot stat %q: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%q is neither a %s file nor a directory", path, ext)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %q: %w", path, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) == ext {
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}
	return files, nil
}

// StemOutputPath returns path with its extension replaced by newExt, e.g.
// for a single-file Jack compile: Foo.jack -> Foo.vm.
func StemOutputPath(path, newExt string) string {
	return path[:len(path)-len(filepath.Ext(path))] + newExt
}

// DirOutputPath returns the single output file a directory-mode run
// produces inside dir, named after dir itself, e.g. VM translation of
// directory "Foo" writes "Foo/Foo.asm".
func DirOutputPath(dir, newExt string) string {
	return filepath.Join(dir, filepath.Base(filepath.Clean(dir))+newExt)
}

// IsDir reports whether path names a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
