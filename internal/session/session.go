package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// State is what the tool remembers between runs.
type State struct {
	FilePath        string `json:"file_path"`
	OutputPath      string `json:"output_path"`
	BranchColumn    string `json:"branch_column"`
	PhoneColumn     string `json:"phone_column"`
	HyperlinkColumn string `json:"hyperlink_column"`
	FormatString    string `json:"format_string"`
	ChunkSize       string `json:"chunk_size"`
	SplitByBranch   bool   `json:"splitby_branch"`
	Where           string `json:"where,omitempty"`
}

// SaveToFile saves the state to a JSON file, creating its directory.
func (s *State) SaveToFile(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadFromFile loads state from a JSON file. A missing file yields an error
// satisfying errors.Is(err, os.ErrNotExist).
func LoadFromFile(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}
	return &state, nil
}
