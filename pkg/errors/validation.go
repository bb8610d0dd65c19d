package errors

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matzehuels/flowcanvas/pkg/flow"
)

const (
	maxLabelLength    = 200
	maxFlowNameLength = 120
)

// ValidateLabel checks a node label after trimming surrounding whitespace.
//
// The validation rules are:
//   - No empty labels
//   - No control characters (labels render on a single line)
//   - Maximum length of 200 characters
func ValidateLabel(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return New(ErrCodeInvalidLabel, "label cannot be empty")
	}
	if utf8.RuneCountInString(label) > maxLabelLength {
		return New(ErrCodeInvalidLabel, "label too long (max %d characters)", maxLabelLength)
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidLabel, "label contains invalid control characters")
		}
	}
	return nil
}

// ValidateFlowName checks the name a flow is saved under remotely.
// A name is required; path separators and control characters are rejected.
func ValidateFlowName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return New(ErrCodeInvalidFlowName, "flow name is required")
	}
	if utf8.RuneCountInString(name) > maxFlowNameLength {
		return New(ErrCodeInvalidFlowName, "flow name too long (max %d characters)", maxFlowNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidFlowName, "flow name contains invalid control characters")
		}
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidFlowName, "flow name cannot contain path separators")
	}
	return nil
}

// ValidateKind resolves a user-supplied kind name, accepting aliases.
func ValidateKind(name string) (flow.Kind, error) {
	if strings.TrimSpace(name) == "" {
		return "", New(ErrCodeInvalidKind, "node kind cannot be empty")
	}
	k, ok := flow.ParseKind(name)
	if !ok {
		return "", New(ErrCodeInvalidKind, "unknown node kind: %q", name)
	}
	return k, nil
}
