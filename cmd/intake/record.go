package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joseph-ayodele/inquiry-intake/internal/entity"
)

func readRecord(path string) (*entity.Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rec := entity.NewRecord()
	if err := json.Unmarshal(b, rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return rec, nil
}
