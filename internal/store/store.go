// Package store loads and saves cell tables as .bight files.
//
// A .bight file is a JSON document:
//
//	{"version": 1, "cells": [{"x": 0, "y": 0, "source": "42"}, ...]}
//
// Cells are written row-major so files diff cleanly.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/bight/internal/grid"
	"github.com/dshills/bight/internal/table"
)

// FormatVersion is the file format version written by Save.
const FormatVersion = 1

// Extension is the file extension of grid files.
const Extension = ".bight"

// Errors returned by Load.
var (
	ErrInvalidFormat      = errors.New("invalid bight file")
	ErrUnsupportedVersion = errors.New("unsupported bight file version")
)

type cellRecord struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Source string `json:"source"`
}

// Store reads and writes .bight files on the local file system.
type Store struct {
	perm os.FileMode
}

// New creates a store writing files with mode 0644.
func New() *Store {
	return &Store{perm: 0o644}
}

// IsGridFile reports whether path has the .bight extension.
func IsGridFile(path string) bool {
	return filepath.Ext(path) == Extension
}

// Load reads the file at path into a source table.
func (s *Store) Load(path string) (*table.SourceTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	src, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return src, nil
}

// Save writes src to path, replacing the file atomically.
func (s *Store) Save(path string, src *table.SourceTable) error {
	data, err := Encode(src)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("saving %s: %w", path, err)
	}
	if err := tmp.Chmod(s.perm); err != nil {
		tmp.Close()
		return fmt.Errorf("saving %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// Encode serializes src.
func Encode(src *table.SourceTable) ([]byte, error) {
	doc := []byte(`{"version":0,"cells":[]}`)

	doc, err := sjson.SetBytes(doc, "version", FormatVersion)
	if err != nil {
		return nil, err
	}

	records := make([]cellRecord, 0, src.Len())
	for _, pos := range src.Positions() {
		if source, ok := src.Get(pos); ok {
			records = append(records, cellRecord{X: pos.X, Y: pos.Y, Source: source})
		}
	}
	doc, err = sjson.SetBytes(doc, "cells", records)
	if err != nil {
		return nil, err
	}
	return append(doc, '\n'), nil
}

// Decode parses a .bight document.
func Decode(data []byte) (*table.SourceTable, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidFormat
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, ErrInvalidFormat
	}

	version := root.Get("version")
	if !version.Exists() || version.Type != gjson.Number {
		return nil, fmt.Errorf("%w: missing version", ErrInvalidFormat)
	}
	if version.Int() != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version.Int())
	}

	cells := root.Get("cells")
	if cells.Exists() && !cells.IsArray() {
		return nil, fmt.Errorf("%w: cells is not an array", ErrInvalidFormat)
	}

	src := table.NewSourceTable()
	var decodeErr error
	cells.ForEach(func(i, cell gjson.Result) bool {
		x, y, source := cell.Get("x"), cell.Get("y"), cell.Get("source")
		if x.Type != gjson.Number || y.Type != gjson.Number || source.Type != gjson.String {
			decodeErr = fmt.Errorf("%w: cell %d is malformed", ErrInvalidFormat, i.Int())
			return false
		}
		pos := grid.Pos(int(x.Int()), int(y.Int()))
		if !pos.Valid() {
			decodeErr = fmt.Errorf("%w: cell %d has negative coordinates", ErrInvalidFormat, i.Int())
			return false
		}
		src.Set(pos, source.String())
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return src, nil
}
