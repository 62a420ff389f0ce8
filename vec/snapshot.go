// Copyright 2024 The Densevec Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package vec

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/densevec/selfcheck/errors"
)

// Snapshot format: a fixed header followed by count records of
// (key uint64, dims float32), all little-endian.
const (
	snapshotMagic   = uint32(0x44564543) // "DVEC"
	snapshotVersion = uint16(1)

	// maxSnapshotDimensions bounds the dimensionality accepted from a
	// snapshot header.
	maxSnapshotDimensions = 1 << 16
	// loadBatchScalars bounds how many scalars Load reads per allocation.
	loadBatchScalars = 1 << 18
)

type snapshotHeader struct {
	Magic      uint32
	Version    uint16
	Metric     uint16
	Dimensions uint32
	Count      uint64
}

// Save writes a snapshot of the index to w.
func (ix *Index) Save(w io.Writer) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	hdr := snapshotHeader{
		Magic:      snapshotMagic,
		Version:    snapshotVersion,
		Metric:     uint16(ix.cfg.Metric),
		Dimensions: uint32(ix.cfg.Dimensions),
		Count:      uint64(len(ix.keys)),
	}
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return errors.Wrap(err, "failed to write snapshot header")
	}
	if err := binary.Write(w, binary.LittleEndian, ix.keys); err != nil {
		return errors.Wrap(err, "failed to write snapshot keys")
	}
	if err := binary.Write(w, binary.LittleEndian, ix.vecs); err != nil {
		return errors.Wrap(err, "failed to write snapshot vectors")
	}
	return nil
}

// Load reads a snapshot written by Save and returns the restored index.
// The header comes from untrusted input: its sizes are validated and the
// payload is read in bounded batches, so a corrupt or truncated snapshot
// yields an error rather than an oversized allocation.
func Load(r io.Reader) (*Index, error) {
	var hdr snapshotHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, errors.Wrap(err, "failed to read snapshot header")
	}
	if hdr.Magic != snapshotMagic {
		return nil, errors.Errorf("bad snapshot magic %#x", hdr.Magic)
	}
	if hdr.Version != snapshotVersion {
		return nil, errors.Errorf("unsupported snapshot version %d", hdr.Version)
	}
	if hdr.Dimensions == 0 || hdr.Dimensions > maxSnapshotDimensions {
		return nil, errors.Errorf("bad snapshot dimensions %d", hdr.Dimensions)
	}

	ix, err := New(Config{Dimensions: int(hdr.Dimensions), Metric: Metric(hdr.Metric)})
	if err != nil {
		return nil, errors.Wrap(err, "snapshot header is inconsistent")
	}

	// A lying Count fails on the first short read instead of sizing a
	// giant slice up front.
	for remaining := hdr.Count; remaining > 0; {
		n := remaining
		if n > loadBatchScalars {
			n = loadBatchScalars
		}
		keys := make([]Key, n)
		if err := binary.Read(r, binary.LittleEndian, keys); err != nil {
			return nil, errors.Wrap(err, "failed to read snapshot keys")
		}
		ix.keys = append(ix.keys, keys...)
		remaining -= n
	}

	dims := uint64(hdr.Dimensions)
	batch := loadBatchScalars / dims
	if batch == 0 {
		batch = 1
	}
	for remaining := hdr.Count; remaining > 0; {
		n := remaining
		if n > batch {
			n = batch
		}
		vecs := make([]float32, n*dims)
		if err := binary.Read(r, binary.LittleEndian, vecs); err != nil {
			return nil, errors.Wrap(err, "failed to read snapshot vectors")
		}
		ix.vecs = append(ix.vecs, vecs...)
		remaining -= n
	}

	for i, key := range ix.keys {
		if _, ok := ix.byKey[key]; ok {
			return nil, errors.Errorf("snapshot contains duplicate key %d", key)
		}
		ix.byKey[key] = i
	}
	return ix, nil
}

// SaveFile writes a snapshot of the index to the file at path.
func (ix *Index) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer f.Close()
	if err := ix.Save(f); err != nil {
		return err
	}
	return f.Close()
}

// LoadFile reads a snapshot from the file at path.
func LoadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	return Load(f)
}

// Bytes returns a snapshot of the index as a byte slice.
func (ix *Index) Bytes() ([]byte, error) {
	var b bytes.Buffer
	if err := ix.Save(&b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// FromBytes restores an index from a snapshot produced by Bytes.
func FromBytes(b []byte) (*Index, error) {
	return Load(bytes.NewReader(b))
}
