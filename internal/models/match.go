package models

import "fmt"

// MatchCandidate is a candidate domain produced by one tier during a single
// name resolution. Candidates are merged by domain, ranked, and discarded
// within the call; they are never persisted.
type MatchCandidate struct {
	Domain        string `json:"domain"`
	DisplayName   string `json:"display_name"`
	Tier          string `json:"tier"`
	Confidence    int    `json:"confidence"`
	QualityScore  int    `json:"quality_score"`
	EmployeeCount int    `json:"employee_count"`
}

// MatchResult is the outcome of resolving one input name.
type MatchResult struct {
	InputName       string `json:"input_name"`
	MatchFound      bool   `json:"match_found"`
	Domain          string `json:"domain,omitempty"`
	CompanyName     string `json:"company_name,omitempty"`
	Tier            string `json:"tier,omitempty"`
	Confidence      int    `json:"confidence"`
	CandidatesFound int    `json:"candidates_found"`
}

// MatchRequest is a batch resolution request.
type MatchRequest struct {
	Companies []string `json:"companies"`
}

// Validate rejects a batch that carries no names. Malformed individual names
// are not an error; they normalize to empty and resolve to not-found.
func (r *MatchRequest) Validate() error {
	if len(r.Companies) == 0 {
		return fmt.Errorf("no companies provided")
	}
	return nil
}

// MatchResponse is the response for a batch resolution request. Results are in
// the same order as the request's Companies.
type MatchResponse struct {
	Results   []*MatchResult `json:"results"`
	Processed int            `json:"processed"`
	Matches   int            `json:"matches"`
	QueryTime int64          `json:"query_time_ms"`
}
