// Package vectorfile reads pre-computed query and candidate vectors from a
// YAML or JSON document.
//
//	metric: cosine
//	query: [0.1, 0.2, 0.3]
//	candidates:
//	  - id: vehicle
//	    vector: [0.1, 0.2, 0.25]
package vectorfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/botirk38/embedscore/similarity"
	"gopkg.in/yaml.v3"
)

// File is a decoded vector file. Metric is empty when the file leaves it to
// the caller.
type File struct {
	Metric     string                 `yaml:"metric"`
	Query      similarity.Vector      `yaml:"query"`
	Candidates []similarity.Candidate `yaml:"candidates"`
}

// Load reads and parses the vector file at path.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	file, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// Parse decodes a vector file. JSON documents are accepted as YAML.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty vector file", similarity.ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: %v", similarity.ErrInvalidInput, err)
	}

	if err := file.validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

func (f *File) validate() error {
	if len(f.Query) == 0 {
		return fmt.Errorf("%w: query vector is missing", similarity.ErrInvalidInput)
	}
	if len(f.Candidates) == 0 {
		return fmt.Errorf("%w: no candidates", similarity.ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(f.Candidates))
	for i, c := range f.Candidates {
		if c.ID == "" {
			return fmt.Errorf("%w: candidate %d has no id", similarity.ErrInvalidInput, i)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: duplicate candidate id %q", similarity.ErrInvalidInput, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}
