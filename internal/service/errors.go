package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/fairshare/internal/extract"
	"github.com/mmynk/fairshare/internal/metrics"
	"github.com/mmynk/fairshare/internal/storage"
)

// storeError maps a storage error to a Connect error.
func storeError(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	slog.Error(op+" failed", "error", err)
	return connect.NewError(connect.CodeInternal, err)
}

// extractError maps an extraction failure to a Connect error and the metrics
// outcome it counts as.
func extractError(err error) (*connect.Error, string) {
	switch {
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err), metrics.OutcomeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err), metrics.OutcomeCanceled
	case errors.Is(err, extract.ErrEmptyRequest), errors.Is(err, extract.ErrInvalidImage):
		return connect.NewError(connect.CodeInvalidArgument, err), metrics.OutcomeInvalid
	case errors.Is(err, extract.ErrMissingCredentials):
		return connect.NewError(connect.CodeFailedPrecondition, err), metrics.OutcomeDisabled
	case errors.Is(err, extract.ErrMalformedResponse):
		return connect.NewError(connect.CodeUnavailable, err), metrics.OutcomeMalformed
	case errors.Is(err, extract.ErrUpstream):
		return connect.NewError(connect.CodeUnavailable, err), metrics.OutcomeUpstream
	default:
		return connect.NewError(connect.CodeInternal, err), metrics.OutcomeUpstream
	}
}
