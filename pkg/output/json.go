package output

import (
	"encoding/json"

	"github.com/ArnaudBarre/bun-dedupe/pkg/analyzer"
)

// JSONReport is the machine-readable summary of a run
type JSONReport struct {
	Lockfile        string            `json:"lockfile"`
	Mode            string            `json:"mode"` // "check" or "fix"
	DuplicatesFound bool              `json:"duplicates_found"`
	Hoisted         []analyzer.Hoist  `json:"hoisted"`
	Promotions      map[string]string `json:"promotions"`
}

// GenerateJSONReport converts an analysis result to JSON format
func GenerateJSONReport(lockfilePath string, check bool, result *analyzer.Result) ([]byte, error) {
	mode := "fix"
	if check {
		mode = "check"
	}
	return json.MarshalIndent(JSONReport{
		Lockfile:        lockfilePath,
		Mode:            mode,
		DuplicatesFound: len(result.Hoisted) > 0,
		Hoisted:         result.Hoisted,
		Promotions:      result.Promotions,
	}, "", "  ")
}
