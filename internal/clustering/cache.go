package clustering

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// cacheFile is the serialized derived state of one clustering run. It is
// keyed by the catalog size and cluster count it was computed from; a
// mismatch on either invalidates the whole file.
type cacheFile struct {
	Count       int               `json:"count"`
	Clusters    int               `json:"clusters"`
	Assignments []int             `json:"assignments"`
	LabelsRaw   map[string]string `json:"labels"`
}

// loadCache reads a cached clustering keyed by catalog size and cluster
// count. It returns false when the file is absent, unreadable, or computed
// for a different catalog or k; callers then recompute.
func loadCache(path string, count, k int) ([]int, map[int]string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, false
	}

	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, nil, false
	}
	if cf.Count != count || cf.Clusters != k || len(cf.Assignments) != count {
		return nil, nil, false
	}

	labels := make(map[int]string, len(cf.LabelsRaw))
	for k, v := range cf.LabelsRaw {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, nil, false
		}
		labels[id] = v
	}
	return cf.Assignments, labels, true
}

// saveCache persists a clustering run next to the catalog it was derived
// from.
func saveCache(path string, count, k int, assign []int, labels map[int]string) error {
	raw := make(map[string]string, len(labels))
	for id, name := range labels {
		raw[strconv.Itoa(id)] = name
	}

	data, err := json.Marshal(cacheFile{Count: count, Clusters: k, Assignments: assign, LabelsRaw: raw})
	if err != nil {
		return fmt.Errorf("marshal cluster cache: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write cluster cache: %w", err)
	}
	return nil
}
