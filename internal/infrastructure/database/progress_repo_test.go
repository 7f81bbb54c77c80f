package database

import (
	"context"
	"testing"

	"github.com/vicimikul/lifi-fee-scraper/internal/errs"
)

func TestProgressRepo_Set_RejectsNegativeBlock(t *testing.T) {
	// Validation runs before any storage access.
	repo := &ProgressRepo{}

	err := repo.Set(context.Background(), 137, -1)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errs.IsValidation(err) {
		t.Errorf("expected validation error, got %T", err)
	}
}
