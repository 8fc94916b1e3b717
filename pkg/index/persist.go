package index

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/openregulatory/regkb/pkg/types"
)

// Persisted artifact filenames. Both must be present for the index to be
// considered ready; absence of either triggers full reprocessing.
const (
	VectorsFile = "vectors.bin"
	RulesFile   = "rules.json"
)

// vectorsMagic identifies the binary vector artifact.
var vectorsMagic = [4]byte{'R', 'K', 'V', 'X'}

const vectorsVersion uint32 = 1

// rulesArtifact is the serialized form of the rule/text sequences.
type rulesArtifact struct {
	Rules []types.Rule `json:"rules"`
	Texts []string     `json:"texts"`
}

// ArtifactsExist reports whether both persisted artifacts are present in
// dir.
func ArtifactsExist(dir string) bool {
	for _, name := range []string{VectorsFile, RulesFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}

// Save persists the index as two co-located artifacts: a binary vector
// file and a JSON file holding the parallel rule/text sequences. Each
// file is written to a temporary path and renamed so a crash never leaves
// a half-written artifact behind.
func (idx *Index) Save(dir string) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	if err := writeAtomic(filepath.Join(dir, VectorsFile), idx.encodeVectors()); err != nil {
		return fmt.Errorf("failed to write vector artifact: %w", err)
	}

	data, err := json.Marshal(rulesArtifact{Rules: idx.rules, Texts: idx.texts})
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, RulesFile), data); err != nil {
		return fmt.Errorf("failed to write rules artifact: %w", err)
	}

	idx.logger.Info("saved index", "dir", dir, "rules", len(idx.rules), "dimensions", idx.dim)
	return nil
}

// Load restores the index from dir. Both artifacts must be present,
// readable and mutually consistent; anything less fails with
// ErrCorruptIndex rather than returning a partially-initialized index.
// The in-memory state is replaced atomically: a failed load leaves the
// previous state untouched.
func (idx *Index) Load(dir string) error {
	vecData, err := os.ReadFile(filepath.Join(dir, VectorsFile))
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrCorruptIndex, VectorsFile, err)
	}
	dim, vectors, err := decodeVectors(vecData)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}

	ruleData, err := os.ReadFile(filepath.Join(dir, RulesFile))
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrCorruptIndex, RulesFile, err)
	}
	var artifact rulesArtifact
	if err := json.Unmarshal(ruleData, &artifact); err != nil {
		return fmt.Errorf("%w: unmarshaling %s: %v", ErrCorruptIndex, RulesFile, err)
	}

	if len(artifact.Rules) != len(vectors) || len(artifact.Texts) != len(vectors) {
		return fmt.Errorf("%w: %d vectors, %d rules, %d texts", ErrCorruptIndex,
			len(vectors), len(artifact.Rules), len(artifact.Texts))
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.dim = dim
	idx.vectors = vectors
	idx.rules = artifact.Rules
	idx.texts = artifact.Texts

	idx.logger.Info("loaded index", "dir", dir, "rules", len(idx.rules), "dimensions", idx.dim)
	return nil
}

// encodeVectors serializes the vector rows as a fixed header followed by
// little-endian float32 values. Caller holds at least a read lock.
func (idx *Index) encodeVectors() []byte {
	var buf bytes.Buffer
	buf.Write(vectorsMagic[:])
	binary.Write(&buf, binary.LittleEndian, vectorsVersion)
	binary.Write(&buf, binary.LittleEndian, uint32(idx.dim))
	binary.Write(&buf, binary.LittleEndian, uint32(len(idx.vectors)))
	for _, vec := range idx.vectors {
		binary.Write(&buf, binary.LittleEndian, vec)
	}
	return buf.Bytes()
}

// decodeVectors parses the binary vector artifact.
func decodeVectors(data []byte) (int, [][]float32, error) {
	r := bytes.NewReader(data)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil || magic != vectorsMagic {
		return 0, nil, fmt.Errorf("bad magic in vector artifact")
	}

	var version, dim, count uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return 0, nil, fmt.Errorf("reading version: %v", err)
	}
	if version != vectorsVersion {
		return 0, nil, fmt.Errorf("unsupported vector artifact version %d", version)
	}
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return 0, nil, fmt.Errorf("reading dimension: %v", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return 0, nil, fmt.Errorf("reading count: %v", err)
	}

	expected := int(count) * int(dim) * 4
	if r.Len() != expected {
		return 0, nil, fmt.Errorf("vector payload is %d bytes, want %d", r.Len(), expected)
	}

	vectors := make([][]float32, count)
	for i := range vectors {
		vec := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, vec); err != nil {
			return 0, nil, fmt.Errorf("reading row %d: %v", i, err)
		}
		vectors[i] = vec
	}
	return int(dim), vectors, nil
}

// writeAtomic writes data to a temporary file and renames it into place.
func writeAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if _, err := w.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
