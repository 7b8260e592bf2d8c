package talent

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ReadProfiles loads raw profiles from the talent CSV export at path.
func ReadProfiles(path string) ([]Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profiles file %q: %w", path, err)
	}
	defer f.Close()

	profiles, err := ParseProfiles(f)
	if err != nil {
		return nil, fmt.Errorf("parse profiles file %q: %w", path, err)
	}

	return profiles, nil
}

// ParseProfiles reads CSV rows and decodes them into profiles by header
// name, so column order in the export does not matter. Rows without any
// name are dropped.
func ParseProfiles(r io.Reader) ([]Profile, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var profiles []Profile
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		row := make(map[string]string, len(header))
		for i, value := range record {
			if i >= len(header) {
				break
			}
			row[header[i]] = value
		}

		var profile Profile
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result: &profile,
		})
		if err != nil {
			return nil, fmt.Errorf("build row decoder: %w", err)
		}
		if err := decoder.Decode(row); err != nil {
			return nil, fmt.Errorf("decode row: %w", err)
		}

		if profile.Name() == "" {
			continue
		}

		profiles = append(profiles, profile)
	}

	return profiles, nil
}
