package updater

import (
	"bytes"
	"crypto"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/async-button/internal/config"
	"github.com/oshokin/async-button/internal/version"

	// Register SHA-512 for checksum calculation.
	_ "crypto/sha512"
)

const (
	// ManifestFilename is the release manifest inside the update folder.
	ManifestFilename = "async-button-version.yaml"

	// DefaultFileMode is applied to updated files.
	DefaultFileMode os.FileMode = 0o755

	// ChecksumFunction hashes release files.
	ChecksumFunction crypto.Hash = crypto.SHA512
)

var (
	errHashUnavailable = errors.New("hash function unavailable")
	errNoChecksum      = errors.New("checksum missing for file")
	errUnsafeFileName  = errors.New("file name is not a plain file name")
)

// Manifest describes a published release.
type Manifest struct {
	// Version is the release version.
	Version string `yaml:"version"`
	// Files maps file names to their base64-encoded checksums.
	Files map[string]string `yaml:"files"`
}

// Executables returns the binary names of this platform.
func Executables() []string {
	names := []string{"async-button-server", "async-button", "async-button-updater"}

	if runtime.GOOS == "windows" {
		for i := range names {
			names[i] += ".exe"
		}
	}

	return names
}

// ReleaseFiles returns every file a release carries.
func ReleaseFiles() []string {
	return append(Executables(), config.DefaultConfigFilename)
}

// Checksum hashes the file at path with ChecksumFunction.
func Checksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	if !ChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := ChecksumFunction.New()
	if _, err = hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}

// BuildManifest hashes the files found in dir. Missing files are skipped.
func BuildManifest(dir string, files []string) (*Manifest, error) {
	manifest := &Manifest{
		Version: version.Short(),
		Files:   make(map[string]string, len(files)),
	}

	for _, name := range files {
		sum, err := Checksum(filepath.Join(dir, name))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("checksum of %s: %w", name, err)
		}

		manifest.Files[name] = base64.StdEncoding.EncodeToString(sum)
	}

	return manifest, nil
}

// ParseManifest decodes a manifest document.
func ParseManifest(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	return &manifest, nil
}

// Marshal encodes the manifest as YAML.
func (m *Manifest) Marshal() ([]byte, error) {
	return yaml.Marshal(m)
}

// ChecksumOf returns the decoded checksum of name.
func (m *Manifest) ChecksumOf(name string) ([]byte, error) {
	encoded, ok := m.Files[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, errNoChecksum)
	}

	sum, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode checksum of %s: %w", name, err)
	}

	return sum, nil
}

// Validate rejects entries that name anything but a file directly inside
// the installation folder.
func (m *Manifest) Validate() error {
	for name := range m.Files {
		if name == "" || name == "." || name == ".." ||
			strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
			return fmt.Errorf("%q: %w", name, errUnsafeFileName)
		}
	}

	return nil
}

// Outdated lists, in sorted order, the manifest files among known whose copy
// in dir is missing or differs. Entries outside known are ignored.
func (m *Manifest) Outdated(dir string, known []string) ([]string, error) {
	var outdated []string

	for name := range m.Files {
		if !slices.Contains(known, name) {
			continue
		}

		want, err := m.ChecksumOf(name)
		if err != nil {
			return nil, err
		}

		have, err := Checksum(filepath.Join(dir, name))

		switch {
		case errors.Is(err, os.ErrNotExist):
			outdated = append(outdated, name)
		case err != nil:
			return nil, fmt.Errorf("checksum of %s: %w", name, err)
		case !bytes.Equal(want, have):
			outdated = append(outdated, name)
		}
	}

	slices.Sort(outdated)

	return outdated, nil
}
