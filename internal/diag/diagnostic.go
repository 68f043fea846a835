// Package diag is the non-fatal diagnostics channel of doclet resolution.
// Resolvers never fail on bad input; they report what they skipped here.
package diag

import "fmt"

// Code classifies why a relationship was dropped or a doclet was skipped.
type Code string

const (
	CodeUnresolvedAncestor Code = "unresolved_ancestor"
	CodeUnresolvedBorrow   Code = "unresolved_borrow"
	CodeMalformedLongname  Code = "malformed_longname"
	CodeCyclicAncestry     Code = "cyclic_ancestry"
	CodeDuplicateLongname  Code = "duplicate_longname"
	CodeIgnoredRelation    Code = "ignored_relation"
)

// Severity of a diagnostic. None of them abort a run.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return fmt.Sprintf("severity(%d)", uint8(s))
}

// ParseSeverity is the inverse of Severity.String.
func ParseSeverity(s string) Severity {
	switch s {
	case "warning":
		return SevWarning
	case "error":
		return SevError
	}
	return SevInfo
}

// Diagnostic describes one recovered problem.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	Stage    string   `json:"stage,omitempty"`
	// Subject is the longname of the doclet being processed.
	Subject string `json:"subject,omitempty"`
	// Target is the referenced longname that could not be used.
	Target  string `json:"target,omitempty"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s [%s]", d.Severity, d.Code)
	if d.Subject != "" {
		s += " " + d.Subject
	}
	if d.Target != "" {
		s += " -> " + d.Target
	}
	return s + ": " + d.Message
}
