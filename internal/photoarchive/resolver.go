package photoarchive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cccbbbaaaa/culture-china/pkg/errors"
)

// MaxArchiveBytes is the largest photo archive accepted for one import.
const MaxArchiveBytes int64 = 1 << 30

// Resolver maps lower-cased base file names to the entries of a photo archive.
// The zero value resolves nothing.
type Resolver struct {
	files map[string]*zip.File
}

// Open indexes a zip archive held in memory. A nil or empty archive yields an
// empty resolver, since the photo upload is optional.
func Open(data []byte, limit int64) (*Resolver, error) {
	if len(data) == 0 {
		return &Resolver{}, nil
	}
	if limit <= 0 {
		limit = MaxArchiveBytes
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: photo archive is %d bytes, limit %d", errors.ErrFileTooLarge, len(data), limit)
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open photo archive: %v", errors.ErrInvalidFileFormat, err)
	}

	files := make(map[string]*zip.File, len(reader.File))
	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		key := Key(f.Name)
		if key == "" {
			continue
		}
		if _, seen := files[key]; seen {
			continue
		}
		files[key] = f
	}

	return &Resolver{files: files}, nil
}

// Key normalizes an entry or declared file name to its lookup form.
func Key(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	if name == "" {
		return ""
	}
	base := path.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return strings.ToLower(base)
}

// Len returns the number of distinct photos in the archive.
func (r *Resolver) Len() int {
	if r == nil {
		return 0
	}
	return len(r.files)
}

// Resolve returns the bytes of the photo named raw. ok is false when the
// archive has no such entry.
func (r *Resolver) Resolve(raw string) (data []byte, ok bool, err error) {
	if r == nil || len(r.files) == 0 {
		return nil, false, nil
	}
	f, found := r.files[Key(raw)]
	if !found {
		return nil, false, nil
	}

	rc, err := f.Open()
	if err != nil {
		return nil, false, fmt.Errorf("failed to open archive entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err = io.ReadAll(rc)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read archive entry %s: %w", f.Name, err)
	}
	return data, true, nil
}
