package core

import (
	"encoding/json"
	"io"

	"github.com/codeguardian/codeguardian/internal/export"
)

// MarshalFindings writes findings in the export document format.
func MarshalFindings(w io.Writer, findings []Finding) error {
	b, err := export.JSON(findings)
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

// UnmarshalFindings decodes an export document, useful for ingestion tests.
func UnmarshalFindings(r io.Reader) ([]Finding, error) {
	var fs []Finding
	if err := json.NewDecoder(r).Decode(&fs); err != nil {
		return nil, err
	}
	return fs, nil
}
