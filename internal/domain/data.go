package domain

import "context"

// FetchData resolves immediately unless ctx is already done.
func FetchData(ctx context.Context) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []int{1, 2, 3}, nil
}
