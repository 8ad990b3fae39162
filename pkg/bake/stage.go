package bake

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
)

// stagedFile is a temp file waiting to be renamed to its final name.
type stagedFile struct {
	tmp   string
	final string
	last  bool // Published after all other files
}

// stage collects every file a bake produces as hidden temp files in the
// output directory. Nothing becomes visible under its final name until
// commit; rollback removes whatever was staged.
type stage struct {
	dir   string
	files []stagedFile
	names map[string]string // Final name -> origin of its content
}

func newStage(dir string) *stage {
	return &stage{dir: dir, names: make(map[string]string)}
}

// create opens a new temp file that will be published as name.
func (s *stage) create(name, origin string) (*os.File, error) {
	return s.createFile(name, origin, false)
}

// createLast is create for the blob and manifest, which are published
// only after every texture they reference.
func (s *stage) createLast(name string) (*os.File, error) {
	return s.createFile(name, name, true)
}

func (s *stage) createFile(name, origin string, last bool) (*os.File, error) {
	f, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return nil, ioError("create staged file", filepath.Join(s.dir, name), err)
	}
	s.files = append(s.files, stagedFile{tmp: f.Name(), final: filepath.Join(s.dir, name), last: last})
	s.names[name] = origin
	return f, nil
}

// writeFile stages data from origin under name.
func (s *stage) writeFile(name, origin string, write func(f *os.File) error) error {
	f, err := s.create(name, origin)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return ioError("write", filepath.Join(s.dir, name), err)
	}
	if err := f.Close(); err != nil {
		return ioError("close", filepath.Join(s.dir, name), err)
	}
	return nil
}

// reserve records name as taken by origin without staging a file, for
// outputs kept from an earlier run.
func (s *stage) reserve(name, origin string) {
	s.names[name] = origin
}

// claim returns the name under which content from origin is published.
// It is name itself unless a different origin already took it; then a
// numeric suffix is added. done reports that origin is already staged
// under the returned name.
func (s *stage) claim(name, origin string) (claimed string, done bool) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	claimed = name
	for i := 1; ; i++ {
		o, taken := s.names[claimed]
		if !taken {
			return claimed, false
		}
		if o == origin {
			return claimed, true
		}
		claimed = fmt.Sprintf("%s_%d%s", base, i, ext)
	}
}

// commit renames every staged file into place: textures first, then the
// files created with createLast, each group in staging order.
func (s *stage) commit() error {
	ordered := make([]stagedFile, 0, len(s.files))
	for _, f := range s.files {
		if !f.last {
			ordered = append(ordered, f)
		}
	}
	for _, f := range s.files {
		if f.last {
			ordered = append(ordered, f)
		}
	}

	for i, f := range ordered {
		if err := os.Rename(f.tmp, f.final); err != nil {
			s.files = ordered[i:]
			return ioError("publish", f.final, err)
		}
	}
	s.files = nil
	return nil
}

// rollback removes all staged files that were not published.
func (s *stage) rollback() error {
	var err error
	for _, f := range s.files {
		if rmErr := os.Remove(f.tmp); rmErr != nil && !os.IsNotExist(rmErr) {
			err = multierr.Append(err, rmErr)
		}
	}
	s.files = nil
	return err
}
