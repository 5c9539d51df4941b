package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adfharrison1/hippodb/pkg/domain"
)

const (
	tempPrefix = "."
	tempSuffix = ".tmp"

	maxCollectionNameLen = 128
)

var collectionNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidateCollectionName reports whether name can be used as a collection
// name. Names map directly to artifact file names.
func ValidateCollectionName(name string) error {
	if len(name) == 0 || len(name) > maxCollectionNameLen || !collectionNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidName, name)
	}
	return nil
}

// Persistence reads and writes one artifact per collection inside a data
// directory. Writes are atomic: a collection file always holds either its
// previous contents or its new contents in full.
type Persistence struct {
	dir   string
	codec Codec

	// rename publishes a finished temporary file.
	rename func(oldpath, newpath string) error
	// remove deletes artifacts and write-check files.
	remove func(name string) error
}

// NewPersistence creates a persistence layer rooted at dir.
func NewPersistence(dir string, codec Codec) *Persistence {
	return &Persistence{
		dir:    dir,
		codec:  codec,
		rename: os.Rename,
		remove: os.Remove,
	}
}

// Dir returns the data directory.
func (p *Persistence) Dir() string {
	return p.dir
}

func (p *Persistence) path(name string) string {
	return filepath.Join(p.dir, name+p.codec.Extension())
}

// CheckWritable verifies that the data directory exists and accepts new files.
func (p *Persistence) CheckWritable() error {
	info, err := os.Stat(p.dir)
	if err != nil {
		return classify("stat data directory", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrIO, p.dir)
	}
	check, err := os.CreateTemp(p.dir, tempPrefix+"writecheck-*"+tempSuffix)
	if err != nil {
		return classify("write to data directory", err)
	}
	if err := check.Close(); err != nil {
		os.Remove(check.Name())
		return classify("close file in data directory", err)
	}
	if err := p.remove(check.Name()); err != nil {
		return classify("remove file from data directory", err)
	}
	return nil
}

// Flush atomically replaces the artifact of a collection and returns the
// number of bytes written. On error the previous artifact is untouched.
func (p *Persistence) Flush(name string, art *Artifact) (int64, error) {
	tmp, err := os.CreateTemp(p.dir, tempPrefix+name+p.codec.Extension()+".*"+tempSuffix)
	if err != nil {
		return 0, classify("create temporary file", err)
	}
	tmpName := tmp.Name()
	published := false
	defer func() {
		if !published {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriter(tmp)
	cw := &countingWriter{w: bw}
	if err := p.codec.Encode(cw, art); err != nil {
		return 0, classify("encode collection "+name, err)
	}
	if err := bw.Flush(); err != nil {
		return 0, classify("write collection "+name, err)
	}
	if err := tmp.Sync(); err != nil {
		return 0, classify("sync collection "+name, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, classify("close collection "+name, err)
	}
	if err := p.rename(tmpName, p.path(name)); err != nil {
		return 0, classify("publish collection "+name, err)
	}
	published = true

	if err := syncDir(p.dir); err != nil {
		log.Printf("WARN: failed to sync data directory after writing %s: %v", name, err)
	}
	return cw.n, nil
}

// Load reads the artifact of a collection. A missing artifact yields
// ErrNotFound; one that cannot be decoded, or that describes a different
// collection, yields ErrCorrupt.
func (p *Persistence) Load(name string) (*Artifact, error) {
	file, err := os.Open(p.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: collection %s", domain.ErrNotFound, name)
		}
		return nil, classify("open collection "+name, err)
	}
	defer file.Close()

	art, err := p.codec.Decode(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorrupt, name, err)
	}
	if art.Format != ArtifactFormat {
		return nil, fmt.Errorf("%w: %s: unexpected format %q", domain.ErrCorrupt, name, art.Format)
	}
	if art.Name != name {
		return nil, fmt.Errorf("%w: %s: artifact describes collection %q", domain.ErrCorrupt, name, art.Name)
	}
	return art, nil
}

// Remove deletes the artifact of a collection. Removing a missing artifact
// is not an error.
func (p *Persistence) Remove(name string) error {
	if err := p.remove(p.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return classify("remove collection "+name, err)
	}
	if err := syncDir(p.dir); err != nil {
		log.Printf("WARN: failed to sync data directory after removing %s: %v", name, err)
	}
	return nil
}

// ListCollections returns the names of the collections with an artifact in
// the data directory. Temporary files and files of other formats are ignored.
func (p *Persistence) ListCollections() ([]string, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, classify("read data directory", err)
	}

	ext := p.codec.Extension()
	var names []string
	for _, e := range entries {
		fileName := e.Name()
		if e.IsDir() || strings.HasPrefix(fileName, tempPrefix) || !strings.HasSuffix(fileName, ext) {
			continue
		}
		name := strings.TrimSuffix(fileName, ext)
		if ValidateCollectionName(name) != nil {
			log.Printf("WARN: ignoring %s: not a valid collection name", fileName)
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// CleanupTempFiles removes temporary files left behind by interrupted
// flushes and returns their names.
func (p *Persistence) CleanupTempFiles() ([]string, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, classify("read data directory", err)
	}

	var removed []string
	for _, e := range entries {
		fileName := e.Name()
		if e.IsDir() || !strings.HasPrefix(fileName, tempPrefix) || !strings.HasSuffix(fileName, tempSuffix) {
			continue
		}
		if err := os.Remove(filepath.Join(p.dir, fileName)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, classify("remove temporary file "+fileName, err)
		}
		removed = append(removed, fileName)
	}
	return removed, nil
}

// classify wraps err with the persistence error kind it belongs to while
// keeping the OS error reachable through errors.Is.
func classify(op string, err error) error {
	switch {
	case isNoSpace(err):
		return fmt.Errorf("%w: %s: %w", domain.ErrDiskFull, op, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s: %w", domain.ErrPermissionDenied, op, err)
	default:
		return fmt.Errorf("%w: %s: %w", domain.ErrIO, op, err)
	}
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}
