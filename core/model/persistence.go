package model

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/pkg/errors"
)

// SaveGob writes value to path using gob encoding. The caller is expected
// to have registered any interface-typed concrete values beforehand.
func SaveGob(value interface{}, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("SaveGob", path, err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(value); err != nil {
		return errors.NewStorageError("SaveGob", path, err)
	}
	return nil
}

// LoadGob reads a gob-encoded value from path into target, which must be
// a pointer. A missing or corrupt file is reported as a StorageError,
// never a panic.
func LoadGob(target interface{}, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.NewStorageError("LoadGob", path, err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(target); err != nil {
		return errors.NewStorageError("LoadGob", path, err)
	}
	return nil
}

// SaveGobToWriter writes value to w using gob encoding.
func SaveGobToWriter(value interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(value); err != nil {
		return errors.Wrap(err, "failed to encode value")
	}
	return nil
}

// LoadGobFromReader reads a gob-encoded value from r into target.
func LoadGobFromReader(target interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(target); err != nil {
		return errors.Wrap(err, "failed to decode value")
	}
	return nil
}
