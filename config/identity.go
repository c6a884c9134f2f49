package config

import (
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// DefaultIdentityFile is the os-release file describing the running system.
const DefaultIdentityFile = "/etc/os-release"

// Identity holds the KEY=VALUE pairs of an os-release file. Keys are lower
// case, values have their quotes stripped.
type Identity map[string]string

// ReadIdentity reads an os-release file from disk.
//
// A missing file is not an error; an empty identity is returned, which makes
// NewFromIdentity fall back to the default hostname.
func ReadIdentity(filename string) (Identity, error) {
	f, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return Identity{}, nil
		}
		return nil, errors.Wrap(err, "open identity file")
	}
	defer func() {
		_ = f.Close()
	}()
	return ParseIdentity(f)
}

// ParseIdentity parses os-release formatted data.
func ParseIdentity(r io.Reader) (Identity, error) {
	env, err := godotenv.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "parse identity")
	}
	id := make(Identity, len(env))
	for k, v := range env {
		id[strings.ToLower(k)] = v
	}
	return id, nil
}
