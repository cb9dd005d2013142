package grpc

import (
	"context"
	"errors"

	"github.com/DRSN-tech/shop-orders/pkg/e"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GRPCErrorResponse переводит доменную ошибку в gRPC-статус. Неизвестные ошибки скрываются за Internal.
func GRPCErrorResponse(err error) error {
	if v, ok := e.AsValidation(err); ok {
		return status.Error(codes.InvalidArgument, v.Error())
	}
	if nf, ok := e.AsNotFound(err); ok {
		return status.Error(codes.NotFound, nf.Error())
	}
	if s, ok := e.AsInsufficientStock(err); ok {
		return status.Error(codes.InvalidArgument, s.Error())
	}

	switch {
	case errors.Is(err, e.ErrInvalidID):
		return status.Error(codes.InvalidArgument, e.ErrInvalidID.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, e.ErrInternalServerError.Error())
	}
}
