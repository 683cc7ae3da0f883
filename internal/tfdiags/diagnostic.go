// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tfdiags

// Diagnostic is the interface implemented by all diagnostic types in this
// package. A diagnostic describes a single problem, or potential problem,
// along with enough context for a user to understand and hopefully address
// it.
type Diagnostic interface {
	Severity() Severity
	Description() Description
	Source() Source
}

type Severity rune

const (
	Error   Severity = 'E'
	Warning Severity = 'W'
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "Error"
	case Warning:
		return "Warning"
	default:
		return "Severity(" + string(s) + ")"
	}
}

// Description is the human-readable content of a diagnostic: a short
// summary phrase and then an optional longer detail, written in full
// sentences.
type Description struct {
	Summary string
	Detail  string
}

// Source identifies the source location, if any, that a diagnostic relates
// to. Subject is the specific construct the problem was detected at, while
// Context optionally identifies some broader construct enclosing it.
type Source struct {
	Subject *SourceRange
	Context *SourceRange
}
