package view

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrBadIndex marks a page reference whose ordinal is neither a positive
// number nor the word "last".
var ErrBadIndex = errors.New("bad page number")

var numericRef = regexp.MustCompile(`^[0-9]+$`)

// PageRef identifies a multi-entry page: an optional tag filter plus either a
// concrete 1-based ordinal or the symbolic last page.
type PageRef struct {
	Tag   string
	Index int
	Last  bool
}

// MakePageRef builds a page reference from up to two raw path segments, empty
// strings meaning absent. A single numeric-looking segment is an ordinal, any
// other single segment is a tag filter; with two segments the first is the
// tag and the second must parse as an ordinal or "last".
func MakePageRef(a, b string) (PageRef, error) {
	if a == "" {
		return PageRef{Index: 1}, nil
	}
	if b == "" {
		if index, last, ok := parseIndex(a); ok {
			return PageRef{Index: index, Last: last}, nil
		}
		return PageRef{Tag: a, Index: 1}, nil
	}
	index, last, ok := parseIndex(b)
	if !ok {
		return PageRef{}, fmt.Errorf("%w: %q", ErrBadIndex, b)
	}
	return PageRef{Tag: a, Index: index, Last: last}, nil
}

func parseIndex(x string) (index int, last, ok bool) {
	if numericRef.MatchString(x) {
		n, err := strconv.Atoi(x)
		if err != nil {
			return 0, false, false
		}
		return n, false, true
	}
	if x == "last" {
		return 0, true, true
	}
	return 0, false, false
}

// AbsIndex resolves the symbolic last page against the actual page count.
func (r PageRef) AbsIndex(pageCount int) int {
	if r.Last {
		return pageCount
	}
	return r.Index
}

// PrevURL returns the URL of the preceding page, or "" on the first page.
func (r PageRef) PrevURL(pageCount int) string {
	x := r.AbsIndex(pageCount)
	if x <= 1 {
		return ""
	}
	return PageRef{Tag: r.Tag, Index: x - 1}.URL()
}

// NextURL returns the URL of the following page, or "" on the last page.
func (r PageRef) NextURL(pageCount int) string {
	x := r.AbsIndex(pageCount)
	if x >= pageCount {
		return ""
	}
	return PageRef{Tag: r.Tag, Index: x + 1}.URL()
}

// URL renders the canonical path for this reference: "/" for the untagged
// first page, "/page/<index>", "/page/<tag>" or "/page/<tag>/<index>".
func (r PageRef) URL() string {
	ret := "/page"
	if r.Tag != "" {
		ret += "/" + r.Tag
	}
	if r.Index > 1 {
		ret += "/" + strconv.Itoa(r.Index)
	}
	if ret == "/page" {
		return "/"
	}
	return ret
}
