// Package availability computes the set of resources bookable across an
// entire reservation series, not just one date.
package availability

import (
	"context"
	"time"
)

// CheckFunc returns the resources available on one occurrence date. The
// reservation being edited, if any, is excluded from conflict
// consideration by the caller's implementation.
type CheckFunc func(ctx context.Context, date time.Time) ([]int64, error)

// Intersect starts from the first occurrence's available set and narrows
// it with every further occurrence date. As soon as the intersection is
// empty it returns without checking the remaining dates.
func Intersect(ctx context.Context, first []int64, dates []time.Time, check CheckFunc) ([]int64, error) {
	result := make(map[int64]struct{}, len(first))
	for _, id := range first {
		result[id] = struct{}{}
	}

	for _, date := range dates {
		if len(result) == 0 {
			return nil, nil
		}

		candidates, err := check(ctx, date)
		if err != nil {
			return nil, err
		}

		candidateSet := make(map[int64]struct{}, len(candidates))
		for _, id := range candidates {
			candidateSet[id] = struct{}{}
		}

		for id := range result {
			if _, ok := candidateSet[id]; !ok {
				delete(result, id)
			}
		}
	}

	if len(result) == 0 {
		return nil, nil
	}

	res := make([]int64, 0, len(result))
	for _, id := range first {
		if _, ok := result[id]; ok {
			res = append(res, id)
		}
	}
	return res, nil
}

// Contains reports whether the id survived the intersection.
func Contains(set []int64, id int64) bool {
	for _, s := range set {
		if s == id {
			return true
		}
	}
	return false
}
