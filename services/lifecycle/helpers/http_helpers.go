package helpers

import (
	"context"
	"errors"
	"net/http"

	"auction-engine/internal/auctionerrors"
	"auction-engine/utils"
)

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrInvalidAuctionID):
		return http.StatusBadRequest, "invalid auction id"
	case errors.Is(err, auctionerrors.ErrNoBids):
		return http.StatusNotFound, "no bids found for auction"
	case errors.Is(err, auctionerrors.ErrTransactionAborted):
		return http.StatusConflict, "auction is being updated concurrently"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "store timed out"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
