// Package endpoint builds TBA API request paths from an endpoint name and an
// ordered list of optional path parameters.
package endpoint

import (
	"strconv"
	"strings"
)

// Param is a single named path parameter.
//
// A boolean parameter contributes its name as a segment when true and nothing
// when false. Any other parameter contributes its string form, unless it is
// absent.
type Param struct {
	Name    string
	value   string
	present bool
	flag    bool
}

// String returns a string-valued parameter.
func String(name, value string) Param {
	return Param{Name: name, value: value, present: true}
}

// Int returns an integer-valued parameter.
func Int(name string, value int) Param {
	return Param{Name: name, value: strconv.Itoa(value), present: true}
}

// Bool returns a flag parameter.
func Bool(name string, value bool) Param {
	return Param{Name: name, present: value, flag: true}
}

// Literal is a flag parameter that is always set, used for fixed sub-resource
// segments such as "simple" or "matches".
func Literal(name string) Param {
	return Bool(name, true)
}

// OptString returns a string parameter that is omitted when value is nil.
func OptString(name string, value *string) Param {
	if value == nil {
		return Param{Name: name}
	}
	return String(name, *value)
}

// OptInt returns an integer parameter that is omitted when value is nil.
func OptInt(name string, value *int) Param {
	if value == nil {
		return Param{Name: name}
	}
	return Int(name, *value)
}

// Present reports whether the parameter contributes a segment.
func (p Param) Present() bool {
	return p.present
}

// Segment returns the path segment the parameter contributes.
// The result is meaningless when Present is false.
func (p Param) Segment() string {
	if p.flag {
		return p.Name
	}
	return p.value
}

// Build joins the endpoint and every present parameter with "/".
//
// Example:
//
//	Build("teams", Int("year", 2022), Int("page_num", 1), Bool("simple", true))
//	// teams/2022/1/simple
//
// Values are not escaped.
func Build(name string, params ...Param) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, strings.Trim(name, "/"))

	for _, p := range params {
		if !p.present {
			continue
		}
		parts = append(parts, p.Segment())
	}

	return strings.Join(parts, "/")
}

// Name returns the endpoint name of a built path, i.e. its first segment.
// It is used as a low-cardinality metrics label.
func Name(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}
