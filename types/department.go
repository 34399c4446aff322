package types

import (
	"fmt"
	"strings"
)

// The closed set of departments. Unknown names are rejected at ingestion,
// user creation, and query time.
const (
	DepartmentEngineering = "engineering"
	DepartmentFinance     = "finance"
	DepartmentHR          = "hr"
	DepartmentMarketing   = "marketing"
)

// BroadcastSegment is the path component that marks a document visible to
// every department. It is not itself a department.
const BroadcastSegment = "general"

var KnownDepartments = []string{
	DepartmentEngineering,
	DepartmentFinance,
	DepartmentHR,
	DepartmentMarketing,
}

func IsKnownDepartment(name string) bool {
	name = strings.ToLower(name)
	for _, d := range KnownDepartments {
		if d == name {
			return true
		}
	}
	return false
}

// ParseDepartment canonicalizes a department name to lowercase and rejects
// anything outside the known set, including the broadcast segment.
func ParseDepartment(name string) (string, error) {
	canonical := strings.ToLower(strings.TrimSpace(name))
	if !IsKnownDepartment(canonical) {
		return "", fmt.Errorf("%w: %q", ErrUnknownDepartment, name)
	}
	return canonical, nil
}

// DepartmentTag is a document's visibility marker: either broadcast (visible
// to everyone) or scoped to exactly one department. The zero value is
// neither and matches nothing.
type DepartmentTag struct {
	Broadcast bool   `json:"broadcast" bson:"broadcast"`
	Name      string `json:"name,omitempty" bson:"name,omitempty"`
}

func BroadcastTag() DepartmentTag {
	return DepartmentTag{Broadcast: true}
}

func SingleTag(department string) DepartmentTag {
	return DepartmentTag{Name: department}
}

// VisibleTo reports whether a requester from the given department may read
// content carrying this tag.
func (t DepartmentTag) VisibleTo(department string) bool {
	if t.Broadcast {
		return true
	}
	return t.Name != "" && strings.EqualFold(t.Name, department)
}

func (t DepartmentTag) String() string {
	if t.Broadcast {
		return BroadcastSegment
	}
	return t.Name
}
