package analyst

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusOK      Status = "ok"
	StatusDataGap Status = "data_gap"
	StatusFailed  Status = "failed"
)

const sourcesHeader = "VERIFIED SOURCES (PRIORITIZED BY RECENCY AND RELEVANCE):"

// Report is the outcome of an analysis or a question. Failures are carried
// in Status and Error rather than returned.
type Report struct {
	Status   Status   `json:"status"`
	Query    string   `json:"query"`
	Keywords []string `json:"keywords,omitempty"`
	Text     string   `json:"text"`
	Sources  []string `json:"sources,omitempty"`
	Synced   bool     `json:"synced"`
	Error    string   `json:"error,omitempty"`
}

func (r Report) OK() bool {
	return r.Status == StatusOK
}

// Markdown renders the report for chat and terminal transports.
func (r Report) Markdown() string {
	switch r.Status {
	case StatusFailed:
		return "System Error: " + r.Error
	case StatusDataGap:
		return r.Text
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(r.Text))
	if len(r.Sources) > 0 {
		b.WriteString("\n\n**" + sourcesHeader + "**\n")
		for _, link := range r.Sources {
			fmt.Fprintf(&b, "- %s\n", link)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func failed(query string, err error) Report {
	return Report{Status: StatusFailed, Query: query, Error: err.Error()}
}
