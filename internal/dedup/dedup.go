// Package dedup detects re-imported statement rows via SHA-256 fingerprints
// and persists the fingerprints seen by offline runs.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// State is the offline fingerprint history used by the CLI
type State struct {
	Version      int                           `json:"version"`
	Fingerprints map[string]*FingerprintRecord `json:"fingerprints"`
	Metadata     StateMetadata                 `json:"metadata"`
}

// FingerprintRecord tracks one fingerprint across imports
type FingerprintRecord struct {
	FirstSeen time.Time `json:"firstSeen"`
	LastSeen  time.Time `json:"lastSeen"`
	Count     int       `json:"count"`
	EntryID   string    `json:"entryId"`
	Source    string    `json:"source,omitempty"`
}

// StateMetadata contains aggregate statistics about the state
type StateMetadata struct {
	LastUpdated       time.Time `json:"lastUpdated"`
	TotalFingerprints int       `json:"totalFingerprints"`
}

// CurrentVersion is the current state file format version
const CurrentVersion = 1

// NewState creates an empty state
func NewState() *State {
	return &State{
		Version:      CurrentVersion,
		Fingerprints: make(map[string]*FingerprintRecord),
		Metadata: StateMetadata{
			LastUpdated: time.Now(),
		},
	}
}

// Fingerprint hashes the fields that identify a statement row:
// SHA256("{date}|{amount}|{type}|{normalizedDescription}").
// The description is NFKC-folded, lower-cased and has its whitespace collapsed,
// so the half-width and full-width spellings banks mix between exports collide.
func Fingerprint(date string, amount int64, txnType, description string) string {
	input := fmt.Sprintf("%s|%d|%s|%s", date, amount, txnType, NormalizeDescription(description))
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}

// NormalizeDescription applies NFKC, lower-cases and collapses whitespace runs
func NormalizeDescription(s string) string {
	s = strings.ToLower(norm.NFKC.String(s))
	return strings.Join(strings.Fields(s), " ")
}

// LoadState loads a state file from disk.
// Returns an os.IsNotExist error if the file doesn't exist.
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	if state.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported state file version %d (current version: %d)", state.Version, CurrentVersion)
	}

	if state.Fingerprints == nil {
		state.Fingerprints = make(map[string]*FingerprintRecord)
	}

	return &state, nil
}

// LoadOrNewState loads filePath, returning an empty state when it does not exist
func LoadOrNewState(filePath string) (*State, error) {
	state, err := LoadState(filePath)
	if os.IsNotExist(err) {
		return NewState(), nil
	}
	return state, err
}

// SaveState atomically writes the state to disk, creating the parent directory.
func SaveState(state *State, filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	state.Metadata.LastUpdated = time.Now()
	state.Metadata.TotalFingerprints = len(state.Fingerprints)

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tempFile := filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tempFile, filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// IsDuplicate checks if a fingerprint exists in the state
func (s *State) IsDuplicate(fingerprint string) bool {
	_, exists := s.Fingerprints[fingerprint]
	return exists
}

// Record stores a fingerprint.
// A new fingerprint starts with count 1; a known one has LastSeen and Count updated.
func (s *State) Record(fingerprint, entryID, source string, timestamp time.Time) error {
	if fingerprint == "" {
		return fmt.Errorf("fingerprint cannot be empty")
	}
	if entryID == "" {
		return fmt.Errorf("entry ID cannot be empty")
	}

	if record, exists := s.Fingerprints[fingerprint]; exists {
		record.LastSeen = timestamp
		record.Count++
		return nil
	}

	s.Fingerprints[fingerprint] = &FingerprintRecord{
		FirstSeen: timestamp,
		LastSeen:  timestamp,
		Count:     1,
		EntryID:   entryID,
		Source:    source,
	}
	return nil
}
