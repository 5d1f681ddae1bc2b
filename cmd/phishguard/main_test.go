package main

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/mikey/phishguard/internal/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestServeStopsFilterWhenDone(t *testing.T) {
	ctrl := gomock.NewController(t)
	emailFilter := mocks.NewMockEmailFilter(ctrl)
	detector := mocks.NewMockDetector(ctrl)

	gomock.InOrder(
		emailFilter.EXPECT().Start().Return(nil),
		emailFilter.EXPECT().Stop().Return(nil),
	)
	detector.EXPECT().Ready().Return(false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, serve(ctx, zap.NewNop(), emailFilter, detector))
}

func TestServeFailures(t *testing.T) {
	t.Run("start", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		emailFilter := mocks.NewMockEmailFilter(ctrl)
		emailFilter.EXPECT().Start().Return(errors.New("address in use"))

		err := serve(context.Background(), zap.NewNop(), emailFilter, mocks.NewMockDetector(ctrl))
		require.ErrorContains(t, err, "address in use")
	})

	t.Run("stop", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		emailFilter := mocks.NewMockEmailFilter(ctrl)
		detector := mocks.NewMockDetector(ctrl)
		emailFilter.EXPECT().Start().Return(nil)
		emailFilter.EXPECT().Stop().Return(errors.New("shutdown timed out"))
		detector.EXPECT().Ready().Return(true)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.ErrorContains(t, serve(ctx, zap.NewNop(), emailFilter, detector), "shutdown timed out")
	})
}
