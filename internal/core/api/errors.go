package api

import (
	"context"
	"errors"

	"github.com/solatis/rulefold/internal/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// errBadRequest marks malformed request documents.
var errBadRequest = errors.New("invalid request")

// toStatus maps handler errors to gRPC status.
// Malformed requests, unknown modes and missing parameters map to
// INVALID_ARGUMENT. Context errors keep their own codes; everything else is
// INTERNAL.
func toStatus(err error) error {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, types.ErrNoParameters),
		errors.Is(err, types.ErrUnknownMode):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
