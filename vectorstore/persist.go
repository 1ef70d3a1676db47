// Copyright 2026 Lectern AI
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package vectorstore

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
)

// Index file layout, little-endian:
//
//	magic   [4]byte "LVIX"
//	version uint32
//	dim     uint32
//	count   uint32
//	vectors count*dim float32
var indexMagic = [4]byte{'L', 'V', 'I', 'X'}

const indexVersion uint32 = 1

// Save writes the index and metadata to disk. Both files are written to
// temp siblings and renamed into place so a crash mid-write leaves the
// previous snapshot intact. No-op when persistence is not configured.
func (s *Store) Save() error {
	if s.indexPath == "" || s.metaPath == "" {
		return nil
	}

	s.mu.RLock()
	vecs := make([][]float32, len(s.vectors))
	copy(vecs, s.vectors)
	metaJSON, err := json.Marshal(s.metadata)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	if err := writeFileAtomic(s.indexPath, encodeIndex(s.dim, vecs)); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	if err := writeFileAtomic(s.metaPath, metaJSON); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}

// load restores a persisted snapshot. Missing files mean a fresh store.
// A dimension mismatch between the persisted index and the configured
// embedder discards both files; re-embedding is the only way to migrate
// across models.
func (s *Store) load() error {
	data, err := os.ReadFile(s.indexPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading index: %w", err)
	}

	dim, vecs, err := decodeIndex(data)
	if err != nil {
		return err
	}
	if dim != s.dim {
		s.logger.Warn("discarding persisted index, dimension changed",
			"persisted", dim, "configured", s.dim)
		s.discardFiles()
		return nil
	}

	metaData, err := os.ReadFile(s.metaPath)
	if errors.Is(err, fs.ErrNotExist) {
		// Vectors without metadata are unusable.
		s.logger.Warn("discarding persisted index, metadata file missing")
		s.discardFiles()
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading metadata: %w", err)
	}
	var metadata []*Metadata
	if err := json.Unmarshal(metaData, &metadata); err != nil {
		return fmt.Errorf("decoding metadata: %w", err)
	}
	if len(metadata) != len(vecs) {
		s.logger.Warn("discarding persisted index, metadata misaligned",
			"vectors", len(vecs), "metadata", len(metadata))
		s.discardFiles()
		return nil
	}

	s.mu.Lock()
	s.vectors = vecs
	s.metadata = metadata
	s.mu.Unlock()

	s.logger.Info("loaded persisted index", "vectors", len(vecs), "dimension", dim)
	return nil
}

func (s *Store) discardFiles() {
	os.Remove(s.indexPath)
	os.Remove(s.metaPath)
}

func encodeIndex(dim int, vecs [][]float32) []byte {
	var buf bytes.Buffer
	buf.Write(indexMagic[:])
	binary.Write(&buf, binary.LittleEndian, indexVersion)
	binary.Write(&buf, binary.LittleEndian, uint32(dim))
	binary.Write(&buf, binary.LittleEndian, uint32(len(vecs)))
	for _, v := range vecs {
		for _, x := range v {
			binary.Write(&buf, binary.LittleEndian, math.Float32bits(x))
		}
	}
	return buf.Bytes()
}

func decodeIndex(data []byte) (int, [][]float32, error) {
	const headerSize = 16
	if len(data) < headerSize || !bytes.Equal(data[:4], indexMagic[:]) {
		return 0, nil, fmt.Errorf("%w: bad header", ErrCorruptIndex)
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != indexVersion {
		return 0, nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptIndex, version)
	}
	dim := int(binary.LittleEndian.Uint32(data[8:12]))
	count := int(binary.LittleEndian.Uint32(data[12:16]))

	want := headerSize + count*dim*4
	if len(data) != want {
		return 0, nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrCorruptIndex, want, len(data))
	}

	vecs := make([][]float32, count)
	off := headerSize
	for i := range vecs {
		v := make([]float32, dim)
		for j := range v {
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
			off += 4
		}
		vecs[i] = v
	}
	return dim, vecs, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if _, err := w.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
