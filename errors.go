package dashschema

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes
const (
	CodeInvalidArgument = "invalid_argument"
	CodePathResolution  = "path_resolution"
	CodeNodeNotFound    = "node_not_found"
	CodeParseError      = "parse_error"
	CodeTooDeep         = "too_deep"
	CodeDuplicateKey    = "duplicate_key"
	CodeSchemaViolation = "schema_violation"
)

// Sentinels matched by errors.Is against Issue and Issues.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrPathResolution  = errors.New("path does not resolve")
	ErrNodeNotFound    = errors.New("node not found")
	ErrParse           = errors.New("schema parse error")
)

// Issue is a single failure tied to a location. Path is a dotted schema path
// for index operations and a JSON Pointer for validation results.
type Issue struct {
	Path    string
	Code    string
	Message string
	// Segment is the first path segment that failed to resolve, if any.
	Segment string
	Cause   error
	Params  map[string]any
}

func (it Issue) Error() string {
	var b strings.Builder
	b.WriteString(it.Code)
	if it.Path != "" {
		fmt.Fprintf(&b, " at %s", it.Path)
	}
	if it.Message != "" {
		b.WriteString(": ")
		b.WriteString(it.Message)
	}
	return b.String()
}

func (it Issue) Unwrap() error { return it.Cause }

func (it Issue) Is(target error) bool {
	return sentinelFor(it.Code) == target && target != nil
}

// Issues is a collection of issues that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", iss[i].Code, iss[i].Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Is reports whether any contained issue maps to target.
func (iss Issues) Is(target error) bool {
	for _, it := range iss {
		if it.Is(target) {
			return true
		}
	}
	return false
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	return append(dst, more...)
}

// AsIssues extracts Issues from an error. A lone Issue is promoted to a
// one-element collection.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	var it Issue
	if errors.As(err, &it) {
		return Issues{it}, true
	}
	return nil, false
}

// CodeOf returns the issue code carried by err, or "" when err is not an
// Issue.
func CodeOf(err error) string {
	if iss, ok := AsIssues(err); ok && len(iss) > 0 {
		return iss[0].Code
	}
	return ""
}

func sentinelFor(code string) error {
	switch code {
	case CodeInvalidArgument:
		return ErrInvalidArgument
	case CodePathResolution:
		return ErrPathResolution
	case CodeNodeNotFound:
		return ErrNodeNotFound
	case CodeParseError, CodeTooDeep, CodeDuplicateKey:
		return ErrParse
	}
	return nil
}

func invalidArgument(msg string, kv ...any) Issue {
	return Issue{Code: CodeInvalidArgument, Message: msg, Params: params(kv)}
}

func params(kv []any) map[string]any {
	if len(kv) == 0 {
		return nil
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return m
}
