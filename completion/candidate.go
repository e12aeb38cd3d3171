// Package completion decides what to complete at a cursor and talks to the
// external PHP completion engine.
package completion

import (
	"encoding/json"
)

// Candidate is one completion suggestion as phpactor reports it.
type Candidate struct {
	Type             string          `json:"type"`
	Name             string          `json:"name"`
	Snippet          string          `json:"snippet"`
	Label            string          `json:"label"`
	ShortDescription string          `json:"short_description"`
	Documentation    string          `json:"documentation"`
	ClassImport      *string         `json:"class_import,omitempty"`
	NameImport       *string         `json:"name_import,omitempty"`
	FQN              *string         `json:"fqn,omitempty"`
	Range            json.RawMessage `json:"range,omitempty"`
	Info             string          `json:"info"`
}

// Fallback is the single candidate returned when there is nothing to
// complete, so the editor always gets a deterministic answer.
func Fallback() Candidate {
	return Candidate{
		Type:             "none",
		Label:            "Nothing found",
		ShortDescription: "no completion context available",
		Documentation:    "Nothing found",
	}
}

// IsFallback reports whether c is the no-context placeholder.
func (c Candidate) IsFallback() bool {
	return c.Type == "none" && c.Label == "Nothing found"
}

type request struct {
	Action     string            `json:"action"`
	Parameters requestParameters `json:"parameters"`
}

type requestParameters struct {
	Source string `json:"source"`
	Offset int    `json:"offset"`
}

type response struct {
	Version    string             `json:"version"`
	Action     string             `json:"action"`
	Parameters responseParameters `json:"parameters"`
}

type responseParameters struct {
	Value *responseValue `json:"value"`

	// set when action is "error"
	Message string `json:"message"`
	Details string `json:"details"`
}

type responseValue struct {
	Suggestions []Candidate       `json:"suggestions"`
	Issues      []json.RawMessage `json:"issues"`
}
