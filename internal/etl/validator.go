package etl

import (
	"context"
	"fmt"

	"github.com/BartekS5/legacysync/internal/store"
	"github.com/BartekS5/legacysync/pkg/logger"
)

// Validation holds the canonical totals after an import.
type Validation struct {
	Users        int64  `json:"users" yaml:"users"`
	Requests     int64  `json:"requests" yaml:"requests"`
	Environments int64  `json:"environments" yaml:"environments"`
	OK           bool   `json:"ok" yaml:"ok"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty"`
}

type Validator struct {
	Catalog store.Catalog
}

func NewValidator(c store.Catalog) *Validator {
	return &Validator{Catalog: c}
}

// Validate counts users, requests and environments. A counting failure is
// returned and recorded; nothing is rolled back.
func (v *Validator) Validate(ctx context.Context) (*Validation, error) {
	res := &Validation{}
	var err error

	if res.Users, err = v.Catalog.Users().Count(ctx); err != nil {
		return v.fail(res, fmt.Errorf("failed to count users: %w", err))
	}
	if res.Requests, err = v.Catalog.Requests().Count(ctx); err != nil {
		return v.fail(res, fmt.Errorf("failed to count requests: %w", err))
	}
	if res.Environments, err = v.Catalog.Environments().Count(ctx); err != nil {
		return v.fail(res, fmt.Errorf("failed to count environments: %w", err))
	}
	res.OK = true

	logger.Infof("Validation finished - users: %d, requests: %d, environments: %d",
		res.Users, res.Requests, res.Environments)
	return res, nil
}

func (v *Validator) fail(res *Validation, err error) (*Validation, error) {
	logger.Errorf("Validation of migrated data failed: %v", err)
	res.Error = err.Error()
	return res, err
}
