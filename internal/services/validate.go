package services

import (
	"fmt"
	"strings"

	"github.com/petfolio/docsync/internal/common"
)

// ValidateFile checks a prospective upload against the configured size limit
// and allowed content types. It is pure, runs before any I/O, and is never
// bypassed by the batch paths. The returned error matches
// common.ErrValidation under errors.Is.
func (s *FileService) ValidateFile(size int64, mimeType string) error {
	if size <= 0 {
		return fmt.Errorf("%w: size must be positive, got %d", common.ErrValidation, size)
	}
	if size > s.maxUploadBytes {
		return fmt.Errorf("%w: size %d exceeds the %d byte limit", common.ErrValidation, size, s.maxUploadBytes)
	}
	if _, ok := s.allowedTypes[strings.ToLower(mimeType)]; !ok {
		return fmt.Errorf("%w: content type %q is not allowed", common.ErrValidation, mimeType)
	}
	return nil
}
