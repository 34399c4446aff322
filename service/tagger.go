package service

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/baotran/ragchat-be/types"
)

// TaggerService derives a document's department tag from its source path.
// A path component equal to a known department tags the document for that
// department; the "general" component marks it broadcast. Substring matches
// do not count, only whole components.
type TaggerService struct{}

func NewTaggerService() *TaggerService {
	return &TaggerService{}
}

func (s *TaggerService) Tag(source string) (types.DepartmentTag, error) {
	for _, segment := range strings.Split(filepath.ToSlash(source), "/") {
		segment = strings.ToLower(segment)
		if segment == types.BroadcastSegment {
			return types.BroadcastTag(), nil
		}
		if types.IsKnownDepartment(segment) {
			return types.DepartmentTag{Name: segment}, nil
		}
	}
	return types.DepartmentTag{}, fmt.Errorf("%w: %s", types.ErrNoDepartment, source)
}
