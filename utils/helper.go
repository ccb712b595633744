package utils

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/swelyradist/agency_backend/config"
	"github.com/bsm/redislock"
	"github.com/go-playground/validator/v10"
)

func ProcessValidationErrors(err error) map[string]string {
	validationErrors := err.(validator.ValidationErrors)

	errorResponse := make(map[string]string)
	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}
	return errorResponse
}

// ObtainAgencyLock grabs a distributed lock for the given agency-scoped key and
// returns a release func. Two ingestion runs over the same (agency, source) must
// not interleave; the lock serializes whole runs, the ledger dedup constraint is
// the second line of defense.
func ObtainAgencyLock(ctx context.Context, agencyId string, lockType string, ttl time.Duration) (func(), error) {
	locker := config.GetRedisLock()
	if locker == nil {
		// Redis is optional in batch/test setups; dedup still holds without the lock.
		return func() {}, nil
	}
	lockKey := fmt.Sprintf("%s:%s", lockType, agencyId)
	lock, err := locker.Obtain(ctx, lockKey, ttl, nil)
	if err == redislock.ErrNotObtained {
		return nil, fmt.Errorf("could not obtain lock %s", lockKey)
	} else if err != nil {
		return nil, err
	}
	return func() {
		_ = lock.Release(ctx)
	}, nil
}
