package service

import (
	"log"
	"strings"

	"github.com/baotran/ragchat-be/database"
	"github.com/baotran/ragchat-be/types"
)

// PermissionService decides which retrieved passages a requester may see.
// The structured department tag is the only access-control input. The older
// behavior of also granting access when the department name appeared as a
// substring of the source path is kept purely as a logged diagnostic; a path
// match never grants anything.
type PermissionService struct{}

func NewPermissionService() *PermissionService {
	return &PermissionService{}
}

// IsVisible reports whether an entry tagged with tag may be shown to a
// requester from the given department: broadcast tags always, otherwise only
// an exact case-insensitive department match.
func (s *PermissionService) IsVisible(requesterDepartment string, tag types.DepartmentTag) bool {
	return tag.VisibleTo(requesterDepartment)
}

// Filter retains visible entries, preserving retrieval order.
func (s *PermissionService) Filter(requesterDepartment string, entries []database.ScoredEntry) []database.ScoredEntry {
	retained := make([]database.ScoredEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Entry.Tag.VisibleTo(requesterDepartment) {
			retained = append(retained, entry)
			continue
		}
		if pathSuggestsAccess(requesterDepartment, entry.Entry.Source) {
			log.Printf("permission: denying %s; source path %q mentions the requester department but metadata tag %q does not authorize it",
				entry.Entry.ChunkID, entry.Entry.Source, entry.Entry.Tag)
		}
	}
	return retained
}

func pathSuggestsAccess(requesterDepartment, source string) bool {
	source = strings.ToLower(source)
	return strings.Contains(source, strings.ToLower(requesterDepartment)) ||
		strings.Contains(source, types.BroadcastSegment)
}
