// Package cli provides CLI output utilities for match results.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/predictiff/companymatch/internal/models"
	"github.com/predictiff/companymatch/pkg/utils"
)

// MatchOutputFormat is the format for match result output.
type MatchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText MatchOutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON MatchOutputFormat = "json"
)

// WriteMatchResults writes batch match results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteMatchResults(w io.Writer, response *models.MatchResponse, format MatchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	default:
		writeMatchResultsText(w, response)
		return nil
	}
}

func writeMatchResultsText(w io.Writer, response *models.MatchResponse) {
	fmt.Fprintf(w, "\nResolved %d names in %dms (%d matched)\n\n",
		response.Processed, response.QueryTime, response.Matches)
	for _, result := range response.Results {
		writeOneResult(w, result)
	}
}

func writeOneResult(w io.Writer, result *models.MatchResult) {
	name := utils.Truncate(result.InputName, 48)
	if !result.MatchFound {
		fmt.Fprintf(w, "%-50s -> no match\n", name)
		return
	}
	fmt.Fprintf(w, "%-50s -> %s (%s, confidence %d, %d candidates)\n",
		name, result.Domain, result.Tier, result.Confidence, result.CandidatesFound)
}

// PrintMatchResults prints match results to stdout in text format.
func PrintMatchResults(response *models.MatchResponse) {
	_ = WriteMatchResults(os.Stdout, response, OutputText)
}
