package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/stretchr/testify/require"
)

func TestRetryLoadingCacheRetriesUntilPopulated(t *testing.T) {
	calls := 0
	err := RetryLoadingCache(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return redis.ErrNil
		}
		return nil
	}, 5*time.Second)
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestRetryLoadingCacheAbortsOnOtherErrors(t *testing.T) {
	boom := errors.New("connection refused")
	calls := 0
	err := RetryLoadingCache(context.Background(), func(context.Context) error {
		calls++
		return boom
	}, 5*time.Second)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, calls)
}

func TestRetryLoadingCacheTimesOut(t *testing.T) {
	err := RetryLoadingCache(context.Background(), func(context.Context) error {
		return redis.ErrNil
	}, 50*time.Millisecond)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
