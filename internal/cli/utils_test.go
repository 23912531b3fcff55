package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/predictiff/companymatch/internal/models"
)

func sampleResponse() *models.MatchResponse {
	return &models.MatchResponse{
		Results: []*models.MatchResult{
			{
				InputName:       "Microsoft Corporation",
				MatchFound:      true,
				Domain:          "microsoft.com",
				CompanyName:     "Microsoft Corporation",
				Tier:            "exact",
				Confidence:      100,
				CandidatesFound: 3,
			},
			{
				InputName: "No Such Company",
			},
		},
		Processed: 2,
		Matches:   1,
		QueryTime: 42,
	}
}

func TestWriteMatchResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMatchResults(&buf, sampleResponse(), OutputJSON); err != nil {
		t.Fatalf("WriteMatchResults(json): %v", err)
	}
	var decoded models.MatchResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Processed != 2 || decoded.Matches != 1 || decoded.QueryTime != 42 {
		t.Errorf("decoded summary = %+v", decoded)
	}
	if len(decoded.Results) != 2 || decoded.Results[0].Domain != "microsoft.com" {
		t.Errorf("decoded results = %+v", decoded.Results)
	}
}

func TestWriteMatchResults_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMatchResults(&buf, sampleResponse(), OutputText); err != nil {
		t.Fatalf("WriteMatchResults(text): %v", err)
	}
	out := buf.String()
	for _, sub := range []string{"Resolved 2 names", "42ms", "1 matched", "microsoft.com", "exact", "confidence 100", "no match"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteMatchResults_unknownFormatTreatedAsText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMatchResults(&buf, sampleResponse(), MatchOutputFormat("unknown")); err != nil {
		t.Fatalf("WriteMatchResults(unknown): %v", err)
	}
	if !strings.Contains(buf.String(), "Resolved") {
		t.Errorf("unknown format should fall back to text; got %q", buf.String())
	}
}

func TestWriteMatchResults_truncatesLongInputNames(t *testing.T) {
	long := strings.Repeat("x", 80)
	resp := &models.MatchResponse{
		Results:   []*models.MatchResult{{InputName: long}},
		Processed: 1,
	}
	var buf bytes.Buffer
	if err := WriteMatchResults(&buf, resp, OutputText); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), long) {
		t.Error("long input name should be truncated in text output")
	}
}
