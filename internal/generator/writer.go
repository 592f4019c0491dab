package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteDataset serializes the dataset into edges.json and queries.json under the provided directory.
func WriteDataset(dataset Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := writeJSON(filepath.Join(dir, "edges.json"), dataset.Edges); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, "queries.json"), dataset.Queries)
}

// ReadDataset loads a dataset previously written by WriteDataset. A missing
// queries.json yields an empty query list.
func ReadDataset(dir string) (Dataset, error) {
	var ds Dataset
	if err := readJSON(filepath.Join(dir, "edges.json"), &ds.Edges); err != nil {
		return Dataset{}, err
	}
	queriesPath := filepath.Join(dir, "queries.json")
	if _, err := os.Stat(queriesPath); err == nil {
		if err := readJSON(queriesPath, &ds.Queries); err != nil {
			return Dataset{}, err
		}
	}
	return ds, nil
}

func writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, target any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
