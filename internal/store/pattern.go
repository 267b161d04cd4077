package store

import "strings"

// Pattern is a path with named wildcard segments, e.g.
// "conversations/{cid}/messages/{mid}".
type Pattern struct {
	raw      string
	segments []string
}

func NewPattern(s string) Pattern {
	return Pattern{
		raw:      s,
		segments: strings.Split(strings.Trim(s, "/"), "/"),
	}
}

func (p Pattern) String() string {
	return p.raw
}

// Match reports whether path matches the pattern and binds wildcard segments
// into the returned params map.
func (p Pattern) Match(path Path) (map[string]string, bool) {
	if len(path) != len(p.segments) {
		return nil, false
	}
	params := map[string]string{}
	for i, seg := range p.segments {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			params[seg[1:len(seg)-1]] = path[i]
			continue
		}
		if seg != path[i] {
			return nil, false
		}
	}
	return params, true
}
