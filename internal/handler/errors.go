package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"orchid-shop/internal/apperr"
	"orchid-shop/internal/dto"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Validator adapts go-playground/validator to echo.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Wrap(apperr.KindInvalidArgument, err, "Invalid request")
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return apperr.Wrap(apperr.KindInvalidArgument, err, "%s", strings.Join(msgs, "; "))
}

// ErrorHandler renders every error as {"error", "message"}. Internal errors
// are logged and answered with a generic message.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			status int
			body   dto.ErrorResponse
		)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			body = dto.ErrorResponse{
				Error:   statusCode(he.Code),
				Message: fmt.Sprint(he.Message),
			}
		} else {
			kind := apperr.KindOf(err)
			status = apperr.HTTPStatus(err)
			body = dto.ErrorResponse{Error: kind.String(), Message: apperr.MessageOf(err)}
			if kind == apperr.KindInternal || kind == apperr.KindUpstreamFailure {
				log.Error("request failed",
					zap.String("method", c.Request().Method),
					zap.String("path", c.Path()),
					zap.Error(err))
			}
			if kind == apperr.KindInternal || body.Message == "" {
				body.Message = http.StatusText(status)
			}
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			log.Warn("write error response", zap.Error(writeErr))
		}
	}
}

func statusCode(status int) string {
	return strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_")
}
