// Package upload accepts statement files. Only the file name is inspected;
// the content is never parsed.
package upload

import (
	"strings"

	"bankdash/internal/core"
)

// DefaultExtensions lists the suffixes accepted when none are configured.
var DefaultExtensions = []string{".csv"}

// Validator checks an uploaded file name against a set of suffixes.
type Validator struct {
	Extensions      []string
	CaseInsensitive bool
}

// NewValidator builds a validator. Empty extensions fall back to .csv and
// every extension is normalized to start with a dot.
func NewValidator(extensions []string, caseInsensitive bool) Validator {
	var exts []string
	for _, e := range extensions {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	if len(exts) == 0 {
		exts = append(exts, DefaultExtensions...)
	}
	return Validator{Extensions: exts, CaseInsensitive: caseInsensitive}
}

// Validate returns *core.InvalidFormatError when filename does not end in
// one of the accepted extensions.
func (v Validator) Validate(filename string) error {
	exts := v.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	for _, ext := range exts {
		if strings.HasSuffix(filename, ext) {
			return nil
		}
		if v.CaseInsensitive && len(filename) >= len(ext) &&
			strings.EqualFold(filename[len(filename)-len(ext):], ext) {
			return nil
		}
	}
	return &core.InvalidFormatError{Filename: filename, Allowed: exts}
}
