package xlstream

import (
	"archive/zip"
	"io"
)

// Archive provides access to the named parts of a document container.
// Open and OpenReader back it with a zip file; tests may substitute a
// double to observe resource handling.
type Archive interface {
	// PartExists reports whether the container holds a part with the
	// given name.
	PartExists(name string) bool

	// OpenPart opens the named part for reading. The caller owns the
	// returned handle and must close it.
	OpenPart(name string) (io.ReadCloser, error)
}

type zipArchive struct {
	files  map[string]*zip.File
	closer io.Closer // underlying file handle, when opened from a path
}

func newZipArchive(r *zip.Reader, closer io.Closer) *zipArchive {
	files := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		files[f.Name] = f
	}
	return &zipArchive{files: files, closer: closer}
}

func (a *zipArchive) PartExists(name string) bool {
	_, ok := a.files[name]
	return ok
}

func (a *zipArchive) OpenPart(name string) (io.ReadCloser, error) {
	f, ok := a.files[name]
	if !ok {
		return nil, NewXLSXError("no part named %q in container", name)
	}
	return f.Open()
}

func (a *zipArchive) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}
