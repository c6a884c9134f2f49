package bundle

import (
	"os"
	"path/filepath"

	"github.com/nest-os/nest/resolver"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Mode is the file mode bundles are written with.
const Mode os.FileMode = 0755

// Writer writes bundles to a directory.
type Writer struct {
	Fs  afero.Fs // Filesystem to write to. Defaults to the OS filesystem.
	Dir string   // Directory to write bundles to. Created if missing.
}

// Write renders the bundle for res and writes it to the file for role. The
// path of the written file is returned.
func (w *Writer) Write(role Role, res *resolver.Result) (string, error) {
	fs := w.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if err := fs.MkdirAll(w.Dir, 0750); err != nil {
		return "", errors.Wrap(err, "create output directory")
	}
	filename := filepath.Join(w.Dir, role.Filename())
	if err := afero.WriteFile(fs, filename, Render(res), Mode); err != nil {
		return "", errors.Wrapf(err, "write %s", role.Filename())
	}
	// WriteFile does not change the mode of an existing file.
	if err := fs.Chmod(filename, Mode); err != nil {
		return "", errors.Wrapf(err, "chmod %s", role.Filename())
	}
	return filename, nil
}
