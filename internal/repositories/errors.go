package repositories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/farellandr/coursehub/internal/apperrors"
)

// translate maps gorm errors onto the application taxonomy. notFound is
// returned for gorm.ErrRecordNotFound.
func translate(err error, notFound *apperrors.AppError) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound.WithError(err)
	}
	return apperrors.Internal(err)
}
