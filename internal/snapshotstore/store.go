// Package snapshotstore persists corpus snapshots to a single file so a
// restarted service can serve recommendations before its first rebuild.
//
// File layout: a fixed header (magic, format version, creation time), a JSON
// payload, and a footer carrying the payload's CRC32 and length. Files are
// written to a temporary path and renamed into place.
package snapshotstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/textnorm"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/vectormodel"
)

const (
	MagicBytes    uint32 = 0x4A4D534E
	FormatVersion uint32 = 1
	HeaderSize    int    = 16
	FooterSize    int    = 12
	FileName             = "snapshot.jmsn"
)

// ErrNoSnapshot is returned by Load when nothing has been persisted yet.
var ErrNoSnapshot = errors.New("no persisted snapshot")

type payload struct {
	Version         string               `json:"version"`
	BuiltAt         time.Time            `json:"built_at"`
	Jobs            []corpus.Job         `json:"jobs"`
	RequirementSets [][]string           `json:"requirement_sets"`
	Terms           []string             `json:"terms"`
	IDF             []float64            `json:"idf"`
	Matrix          []vectormodel.Vector `json:"matrix"`
}

// Store reads and writes the snapshot file inside one directory.
type Store struct {
	dataDir string
	logger  *slog.Logger
}

func New(dataDir string) *Store {
	return &Store{
		dataDir: dataDir,
		logger:  slog.Default().With("component", "snapshot-store"),
	}
}

// Path is the location of the snapshot file.
func (s *Store) Path() string {
	return filepath.Join(s.dataDir, FileName)
}

// Save atomically replaces the persisted snapshot with snap.
func (s *Store) Save(snap *corpus.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("cannot persist nil snapshot")
	}
	p := payload{
		Version:         snap.Version,
		BuiltAt:         snap.BuiltAt,
		Jobs:            snap.Jobs,
		RequirementSets: make([][]string, len(snap.RequirementSets)),
		Terms:           snap.Model.Terms(),
		IDF:             snap.Model.IDF(),
		Matrix:          snap.Matrix,
	}
	for i, set := range snap.RequirementSets {
		p.RequirementSets[i] = set.Sorted()
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling snapshot %s: %w", snap.Version, err)
	}

	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	finalPath := s.Path()
	tmpPath := finalPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp snapshot file: %w", err)
	}
	defer f.Close()

	header := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(header[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(header[4:8], FormatVersion)
	binary.LittleEndian.PutUint64(header[8:16], uint64(time.Now().Unix()))
	if _, err := f.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing payload: %w", err)
	}
	footer := make([]byte, FooterSize)
	binary.LittleEndian.PutUint32(footer[0:4], crc32.ChecksumIEEE(data))
	binary.LittleEndian.PutUint64(footer[4:12], uint64(len(data)))
	if _, err := f.Write(footer); err != nil {
		return fmt.Errorf("writing footer: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing snapshot file: %w", err)
	}
	f.Close()
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("renaming snapshot file: %w", err)
	}
	s.logger.Info("snapshot persisted",
		"version", snap.Version,
		"jobs", snap.CorpusSize,
		"bytes", len(data),
	)
	return nil
}

// Load reads and verifies the persisted snapshot. It returns ErrNoSnapshot
// when the file does not exist.
func (s *Store) Load() (*corpus.Snapshot, error) {
	raw, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot file: %w", err)
	}
	if len(raw) < HeaderSize+FooterSize {
		return nil, fmt.Errorf("invalid snapshot file: %d bytes is too short", len(raw))
	}
	if magic := binary.LittleEndian.Uint32(raw[0:4]); magic != MagicBytes {
		return nil, fmt.Errorf("invalid snapshot file: bad magic bytes %x", magic)
	}
	if v := binary.LittleEndian.Uint32(raw[4:8]); v != FormatVersion {
		return nil, fmt.Errorf("unsupported snapshot format version %d", v)
	}

	footer := raw[len(raw)-FooterSize:]
	data := raw[HeaderSize : len(raw)-FooterSize]
	if n := binary.LittleEndian.Uint64(footer[4:12]); n != uint64(len(data)) {
		return nil, fmt.Errorf("invalid snapshot file: payload length %d, footer says %d", len(data), n)
	}
	if sum := crc32.ChecksumIEEE(data); sum != binary.LittleEndian.Uint32(footer[0:4]) {
		return nil, fmt.Errorf("invalid snapshot file: checksum mismatch")
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing snapshot payload: %w", err)
	}
	model, err := vectormodel.Restore(p.Terms, p.IDF)
	if err != nil {
		return nil, err
	}
	snap := &corpus.Snapshot{
		Version:         p.Version,
		Jobs:            p.Jobs,
		RequirementSets: make([]textnorm.Set, len(p.RequirementSets)),
		Model:           model,
		Matrix:          p.Matrix,
		CorpusSize:      len(p.Jobs),
		BuiltAt:         p.BuiltAt,
	}
	for i, items := range p.RequirementSets {
		snap.RequirementSets[i] = textnorm.NewSet(items)
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("persisted snapshot rejected: %w", err)
	}
	return snap, nil
}
