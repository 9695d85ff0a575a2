package httpserver

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/sam-maryland/losers-bracket/internal/bracket"
)

// Error codes returned in ErrorResponse.
const (
	CodeInvalidArgument  = "INVALID_ARGUMENT"
	CodeFeedUnavailable  = "FEED_UNAVAILABLE"
	CodeLiveUnavailable  = "LIVE_UNAVAILABLE"
	CodeInsufficientData = "INSUFFICIENT_DATA"
	CodeInvalidSettings  = "INVALID_SETTINGS"
	CodeInternal         = "INTERNAL"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(c *fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	code := CodeInternal
	msg := "internal error"

	switch {
	case errors.Is(err, ErrInvalidArgument):
		status = http.StatusBadRequest
		code = CodeInvalidArgument
		msg = err.Error()
	case errors.Is(err, bracket.ErrFeedUnavailable):
		status = http.StatusBadGateway
		code = CodeFeedUnavailable
		msg = err.Error()
	case errors.Is(err, bracket.ErrLiveFetchFailed):
		status = http.StatusBadGateway
		code = CodeLiveUnavailable
		msg = err.Error()
	case errors.Is(err, bracket.ErrInsufficientData):
		status = http.StatusTooEarly
		code = CodeInsufficientData
		msg = err.Error()
	case errors.Is(err, bracket.ErrInvalidSettings):
		code = CodeInvalidSettings
		msg = err.Error()
	}

	return c.Status(status).JSON(ErrorResponse{Error: ErrorBody{Code: code, Message: msg}})
}
