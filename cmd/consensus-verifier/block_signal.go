//go:build !zmq

package main

import (
	"context"

	"go.uber.org/zap"
)

// startBlockSignal without ZMQ support leaves the verifier on its polling interval.
func startBlockSignal(_ context.Context, addr string, logger *zap.Logger) (<-chan struct{}, error) {
	if addr != "" {
		logger.Warn("built without zmq support, ignoring block announcements", zap.String("addr", addr))
	}
	return nil, nil
}
