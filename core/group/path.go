package group

import (
	"regexp"
	"strconv"
)

// PathSegment is one (name, index) pair of a bracketed address such as
// "sample_processing[1]". Indexes are 1-based as written in documents
// and are stored as given.
type PathSegment struct {
	Name  string
	Index int
}

// pathPattern matches one name[index] segment with an optional trailing
// underscore separator.
var pathPattern = regexp.MustCompile(`([^\[]+)\[(\d+)\]_?`)

// ExtractPath parses a key[index]_next_key[next_index]... address into
// its (name, index) segments. An address with no bracketed segment
// yields nil; callers treat such addresses as plain names.
func ExtractPath(address string) []PathSegment {
	matches := pathPattern.FindAllStringSubmatch(address, -1)
	if len(matches) == 0 {
		return nil
	}
	segments := make([]PathSegment, 0, len(matches))
	for _, m := range matches {
		// The pattern guarantees a run of digits.
		index, _ := strconv.Atoi(m[2])
		segments = append(segments, PathSegment{Name: m[1], Index: index})
	}
	return segments
}
