package fs

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"

	"sdkgen/internal/domain"
	"sdkgen/internal/port"
)

// Walker finds exporter output files below a database directory.
type Walker struct {
	includes []string
	excludes []string
}

func NewWalker(includes, excludes []string) *Walker {
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	return &Walker{
		includes: includes,
		excludes: excludes,
	}
}

// Walk returns the files below root matching the include patterns and none of
// the exclude patterns, sorted by path.
func (w *Walker) Walk(root string) ([]port.FileInfo, error) {
	var files []port.FileInfo

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if relPath != "." && w.shouldExclude(relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !w.shouldInclude(relPath) || w.shouldExclude(relPath) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, port.FileInfo{
			Path:    path,
			ModTime: info.ModTime().Unix(),
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// FindTable returns the first file below root that w reports. pattern is the
// include pattern w was built with and only appears in errors.
func FindTable(w port.FileWalker, root, pattern string) (port.FileInfo, error) {
	files, err := w.Walk(root)
	if errors.Is(err, fs.ErrNotExist) {
		return port.FileInfo{}, errors.Errorf("%w: database directory %s does not exist", domain.ErrTableNotFound, root)
	}
	if err != nil {
		return port.FileInfo{}, errors.Errorf("scanning %s: %w", root, err)
	}
	if len(files) == 0 {
		return port.FileInfo{}, errors.Errorf("%w: no file matching %q in %s. Try re-running IDA plugin-sdk exporter",
			domain.ErrTableNotFound, pattern, root)
	}
	return files[0], nil
}

func (w *Walker) shouldInclude(path string) bool {
	for _, pattern := range w.includes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (w *Walker) shouldExclude(path string) bool {
	for _, pattern := range w.excludes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}
