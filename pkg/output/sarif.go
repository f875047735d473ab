package output

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ArnaudBarre/bun-dedupe/pkg/analyzer"
	"github.com/ArnaudBarre/bun-dedupe/pkg/lockfile"
)

// SARIF format specification: https://docs.oasis-open.org/sarif/sarif/v2.1.0/sarif-v2.1.0.html

// SarifReport represents the top-level SARIF report structure
type SarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []SarifRun `json:"runs"`
}

// SarifRun represents a single run of the analysis tool
type SarifRun struct {
	Tool        SarifTool         `json:"tool"`
	Results     []SarifResult     `json:"results"`
	Invocations []SarifInvocation `json:"invocations"`
}

// SarifTool represents the tool that performed the analysis
type SarifTool struct {
	Driver SarifDriver `json:"driver"`
}

// SarifDriver represents the driver of the tool
type SarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []SarifRule `json:"rules"`
}

// SarifRule represents a rule that was evaluated during the analysis
type SarifRule struct {
	ID               string       `json:"id"`
	ShortDescription SarifMessage `json:"shortDescription"`
	FullDescription  SarifMessage `json:"fullDescription"`
	Help             SarifMessage `json:"help"`
}

// SarifResult represents a result of the analysis
type SarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   SarifMessage    `json:"message"`
	Locations []SarifLocation `json:"locations"`
}

// SarifMessage represents a message in the SARIF report
type SarifMessage struct {
	Text string `json:"text"`
}

// SarifLocation represents a location in the code
type SarifLocation struct {
	PhysicalLocation SarifPhysicalLocation `json:"physicalLocation"`
}

// SarifPhysicalLocation represents a physical location in the code
type SarifPhysicalLocation struct {
	ArtifactLocation SarifArtifactLocation `json:"artifactLocation"`
	Region           *SarifRegion          `json:"region,omitempty"`
}

// SarifArtifactLocation represents the location of an artifact
type SarifArtifactLocation struct {
	URI string `json:"uri"`
}

// SarifRegion represents a region in the code
type SarifRegion struct {
	StartLine int `json:"startLine,omitempty"`
}

// SarifInvocation represents an invocation of the tool
type SarifInvocation struct {
	ExecutionSuccessful bool   `json:"executionSuccessful"`
	StartTimeUtc        string `json:"startTimeUtc"`
	EndTimeUtc          string `json:"endTimeUtc"`
}

const (
	ruleDuplicate  = "duplicate-package"
	rulePromotable = "promotable-package"
)

// GenerateSarifReport converts hoisted packages to SARIF results located in the lockfile.
// started is when the run began.
func GenerateSarifReport(result *analyzer.Result, lockfilePath string, text []byte, toolVersion string, started time.Time) ([]byte, error) {
	rules := []SarifRule{
		{
			ID:               ruleDuplicate,
			ShortDescription: SarifMessage{Text: "Duplicate nested package"},
			FullDescription:  SarifMessage{Text: "A nested copy of this package is redundant because an ancestor install already satisfies the requested range."},
			Help:             SarifMessage{Text: "Run `bun dedupe` to drop the nested copy."},
		},
		{
			ID:               rulePromotable,
			ShortDescription: SarifMessage{Text: "Promotable nested package"},
			FullDescription:  SarifMessage{Text: "The nested copy satisfies every requirement on the ancestor install and can replace it."},
			Help:             SarifMessage{Text: "Run `bun dedupe` to promote the nested version and drop the duplicate."},
		},
	}

	results := make([]SarifResult, 0, len(result.Hoisted))
	for _, h := range result.Hoisted {
		ruleID := ruleDuplicate
		messageText := fmt.Sprintf("%s@%s duplicates %s@%s, which satisfies %s required by %s",
			h.Path, h.Version, h.AncestorPath, h.AncestorVersion, h.Range, h.Dependent)
		if h.Reason == analyzer.ReasonPromoted {
			ruleID = rulePromotable
			messageText = fmt.Sprintf("%s@%s can replace %s@%s for every dependent",
				h.Path, h.Version, h.AncestorPath, h.AncestorVersion)
		}
		if h.Package != "" {
			messageText += fmt.Sprintf(" (alias of %s)", h.Package)
		}

		location := SarifPhysicalLocation{
			ArtifactLocation: SarifArtifactLocation{URI: lockfilePath},
		}
		if line := lockfile.EntryLine(text, h.Path); line > 0 {
			location.Region = &SarifRegion{StartLine: line}
		}

		results = append(results, SarifResult{
			RuleID:    ruleID,
			Level:     "warning",
			Message:   SarifMessage{Text: messageText},
			Locations: []SarifLocation{{PhysicalLocation: location}},
		})
	}

	sarifReport := SarifReport{
		Schema:  "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json",
		Version: "2.1.0",
		Runs: []SarifRun{
			{
				Tool: SarifTool{
					Driver: SarifDriver{
						Name:           "bun-dedupe",
						Version:        toolVersion,
						InformationURI: "https://github.com/ArnaudBarre/bun-dedupe",
						Rules:          rules,
					},
				},
				Results: results,
				Invocations: []SarifInvocation{
					{
						ExecutionSuccessful: true,
						StartTimeUtc:        started.UTC().Format(time.RFC3339),
						EndTimeUtc:          time.Now().UTC().Format(time.RFC3339),
					},
				},
			},
		},
	}

	return json.MarshalIndent(sarifReport, "", "  ")
}
