package optionsapi

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// LoadRecords decodes a JSON array of objects.
func LoadRecords(r io.Reader) ([]map[string]any, error) {
	if r == nil {
		return nil, fmt.Errorf("optionsapi: missing reader")
	}
	var records []map[string]any
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("optionsapi: decode records: %w", err)
	}
	out := make([]map[string]any, 0, len(records))
	for _, record := range records {
		if record != nil {
			out = append(out, record)
		}
	}
	return out, nil
}

// LoadLines reads one option per line as "value" or "value|label". Blank
// lines and lines starting with "#" are ignored, duplicate values keep their
// first occurrence, and the result is sorted by label.
func LoadLines(r io.Reader) ([]map[string]any, error) {
	if r == nil {
		return nil, fmt.Errorf("optionsapi: missing reader")
	}

	scanner := bufio.NewScanner(r)
	records := make([]map[string]any, 0, 64)
	seen := map[string]struct{}{}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		value, label, found := strings.Cut(line, "|")
		value = strings.TrimSpace(value)
		label = strings.TrimSpace(label)
		if !found || label == "" {
			label = value
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		records = append(records, map[string]any{"value": value, "label": label})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i]["label"].(string) < records[j]["label"].(string)
	})
	return records, nil
}
