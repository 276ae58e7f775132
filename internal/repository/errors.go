package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"hotelbooking/internal/domain"
)

func notFound(err error, entity string, id int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", entity, id, domain.ErrNotFound)
	}
	return err
}
