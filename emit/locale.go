package emit

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/nest-os/nest/config"
	"github.com/pkg/errors"
)

// Artifact file names.
const (
	LocaleFile    = "locale.conf"
	LocaleGenFile = "locale.gen"
	UsersFile     = "users.conf"
	SystemFile    = "system.conf"
)

// Locale writes the locale environment file.
func Locale(w io.Writer, l config.Locale) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "LANG=%s\n", l.Lang)
	for _, c := range l.Categories() {
		fmt.Fprintf(&buf, "%s=%s\n", c[0], c[1])
	}
	_, err := w.Write(buf.Bytes())
	return errors.Wrap(err, "write locale")
}

// ReadCatalog reads the entries of a locale catalog such as /etc/locale.gen.
// Leading comment markers and surrounding whitespace are removed. Blank lines
// and lines that do not look like a locale are skipped.
func ReadCatalog(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(sc.Text()), "#"))
		if !isCatalogEntry(line) {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read locale catalog")
	}
	return out, nil
}

// isCatalogEntry reports whether line has the shape "name charset", such as
// "en_US.UTF-8 UTF-8". Prose comments in the catalog header have more
// fields.
func isCatalogEntry(line string) bool {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return false
	}
	return strings.Contains(fields[0], "_") || fields[0] == "C.UTF-8"
}

// MatchCatalog returns the catalog entries that contain any of the locale's
// values, in catalog order.
func MatchCatalog(l config.Locale, catalog []string) []string {
	values := l.Values()
	seen := make(map[string]bool)
	var out []string // nolint: prealloc
	for _, entry := range catalog {
		if seen[entry] {
			continue
		}
		for _, v := range values {
			if strings.Contains(entry, v) {
				seen[entry] = true
				out = append(out, entry)
				break
			}
		}
	}
	return out
}

// LocaleGen writes the catalog entries that match the locale, one per line.
func LocaleGen(w io.Writer, l config.Locale, catalog []string) error {
	var buf bytes.Buffer
	for _, entry := range MatchCatalog(l, catalog) {
		buf.WriteString(entry)
		buf.WriteByte('\n')
	}
	_, err := w.Write(buf.Bytes())
	return errors.Wrap(err, "write locale.gen")
}
