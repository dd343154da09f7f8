package output

import (
	"bytes"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode uses canonical encoding so identical caches are
// byte-identical across runs.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("output: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// RecordMeta describes one emitted record frame.
type RecordMeta struct {
	Index int    `cbor:"index"`
	Size  int    `cbor:"size"`
	Hash  []byte `cbor:"hash"`
}

// Cache is the sidecar document written next to the output file. A
// later run compares record hashes against it to find unchanged records.
type Cache struct {
	RunID   string       `cbor:"run_id"`
	Records []RecordMeta `cbor:"records"`
}

// MarshalCache serializes a Cache to canonical CBOR bytes.
func MarshalCache(c *Cache) ([]byte, error) {
	return cborEncMode.Marshal(c)
}

// UnmarshalCache deserializes a Cache from CBOR bytes.
func UnmarshalCache(data []byte) (*Cache, error) {
	var c Cache
	if err := cbor.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("output: unmarshal cache: %w", err)
	}
	return &c, nil
}

// CachePath returns the sidecar path for an output path.
func CachePath(outputPath string) string {
	return outputPath + ".cache"
}

// LoadCache reads a cache sidecar. A missing file is not an error; it
// returns nil.
func LoadCache(path string) (*Cache, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("output: read cache %s: %w", path, err)
	}
	return UnmarshalCache(data)
}

// SaveCache writes a cache sidecar.
func SaveCache(path string, c *Cache) error {
	data, err := MarshalCache(c)
	if err != nil {
		return fmt.Errorf("output: marshal cache: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("output: write cache %s: %w", path, err)
	}
	return nil
}

// ChangedSince returns the indices of records that are new or whose
// content differs from prev. A nil prev marks every record changed.
func (c *Cache) ChangedSince(prev *Cache) []int {
	known := make(map[int][]byte)
	if prev != nil {
		for _, r := range prev.Records {
			known[r.Index] = r.Hash
		}
	}
	var changed []int
	for _, r := range c.Records {
		if hash, ok := known[r.Index]; !ok || !bytes.Equal(hash, r.Hash) {
			changed = append(changed, r.Index)
		}
	}
	return changed
}
