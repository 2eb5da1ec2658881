package ingest

import (
	"fmt"
	"os"

	"github.com/hpungsan/quotebook/internal/errors"
)

// Validator checks a stored attachment against the size floor and ceiling.
type Validator struct {
	// MinBytes is the integrity floor. Smaller files count as failed downloads.
	MinBytes int64
	// MaxBytes is the ceiling. Zero disables it.
	MaxBytes int64
}

// Check succeeds iff path exists and holds at least MinBytes.
func (v Validator) Check(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.NewIntegrityFailure(path, "file is missing")
	}
	if info.Size() < v.MinBytes {
		return errors.NewIntegrityFailure(path, fmt.Sprintf("file holds %d bytes, need at least %d", info.Size(), v.MinBytes))
	}
	return nil
}

// CheckSize returns the size of the attachment for quote id, failing with a
// size violation when it exceeds MaxBytes.
func (v Validator) CheckSize(id int64, path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, errors.NewIntegrityFailure(path, "file is missing")
	}
	if v.MaxBytes > 0 && info.Size() > v.MaxBytes {
		return info.Size(), errors.NewSizeViolation(id, v.MaxBytes, info.Size())
	}
	return info.Size(), nil
}
