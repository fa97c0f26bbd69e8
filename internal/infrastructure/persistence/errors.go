package persistence

import (
	"errors"

	"github.com/mattn/go-sqlite3"
	"github.com/retailpos/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateWriteError maps constraint violations reported by the dialect
// (gorm.Config.TranslateError) to domain errors. onDuplicate is returned for
// unique violations; foreign key violations become shared.ErrInUse.
// The sqlite dialector leaves foreign key failures untranslated, so those
// are matched on the driver's extended code.
func translateWriteError(err error, onDuplicate error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		if onDuplicate != nil {
			return onDuplicate
		}
		return shared.ErrAlreadyExists
	case errors.Is(err, gorm.ErrForeignKeyViolated), isSQLiteForeignKey(err):
		return shared.ErrInUse
	}
	return err
}

func isSQLiteForeignKey(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

// notFound maps gorm.ErrRecordNotFound to the given domain error
func notFound(err error, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}

func likePattern(search string) string {
	return "%" + search + "%"
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case interface{ String() string }:
		return s.String()
	}
	return ""
}
