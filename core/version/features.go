package version

import "fmt"

// Feature is a piece of syntax that only exists from some version onward.
type Feature uint8

const (
	AssignmentExpressions Feature = iota
	PositionalOnlyParameters
	ParenthesizedContextManagers
	MatchStatement
	ExceptGroups
	TypeParameters
	TypeAliasStatement
)

var features = [...]struct {
	name string
	min  Version
}{
	AssignmentExpressions:        {"assignment expressions", Version{Major: 3, Minor: 8}},
	PositionalOnlyParameters:     {"positional-only parameters", Version{Major: 3, Minor: 8}},
	ParenthesizedContextManagers: {"parenthesized context managers", Version{Major: 3, Minor: 9}},
	MatchStatement:               {"match statements", Version{Major: 3, Minor: 10}},
	ExceptGroups:                 {"'except*' clauses", Version{Major: 3, Minor: 11}},
	TypeParameters:               {"type parameter lists", Version{Major: 3, Minor: 12}},
	TypeAliasStatement:           {"type alias statements", Version{Major: 3, Minor: 12}},
}

func (f Feature) String() string {
	if int(f) < len(features) {
		return features[f].name
	}
	return fmt.Sprintf("Feature(%d)", f)
}

// MinVersion is the first version supporting f.
func (f Feature) MinVersion() Version {
	return features[f].min
}

// Supports reports whether target accepts f. A zero target accepts everything.
func (v Version) Supports(f Feature) bool {
	return v.IsZero() || v.AtLeast(f.MinVersion())
}

// Requirement renders the warning text for using f under target.
func (f Feature) Requirement(target Version) string {
	return fmt.Sprintf("%s require Python %s or newer (target is %s)", f, f.MinVersion(), target)
}
