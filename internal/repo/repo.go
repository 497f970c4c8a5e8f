// Package repo is the persistence layer for identity and session records.
// Every mutating method runs as one unit of work: gorm wraps single writes in
// a transaction and multi-step methods use an explicit Transaction block, so a
// constraint violation always rolls the whole step back before it is surfaced
// as apperr.ErrStorageIntegrity.
package repo

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/avdonin/shop_backend/internal/apperr"
)

type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func integrity(err error) error {
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrStorageIntegrity, err)
	}
	return nil
}
