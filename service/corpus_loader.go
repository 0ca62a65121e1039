package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"arccs-backend/models"
)

var ErrNoRegulationsInFile = errors.New("no regulation list found in corpus file")

// corpusKeys are the accepted top-level keys of a corpus JSON file, probed in
// order. Files produced by different pipeline stages name their record list
// differently; all of them load.
var corpusKeys = []string{
	"cleaned_regulations",
	"regulations",
	"filtered_regulations",
	"all_regulations",
	"kept",
}

// ParseCorpusJSON loads regulation records from a corpus file. The file may
// be a bare JSON array of records or an object carrying the list under one of
// the known keys.
func ParseCorpusJSON(data []byte) (models.RegulationList, error) {
	var direct models.RegulationList
	if err := json.Unmarshal(data, &direct); err == nil {
		return direct, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("invalid corpus file: %w", err)
	}

	for _, key := range corpusKeys {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		var records models.RegulationList
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("invalid regulation list under %q: %w", key, err)
		}
		return records, nil
	}

	return nil, ErrNoRegulationsInFile
}
