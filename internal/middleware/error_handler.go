package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"rideboard/internal/dto"
)

// ErrorHandler renders every error as the Code+Message envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	resp := dto.ErrorResponse{Code: dto.CodeInternal, Message: "internal error"}

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		switch m := he.Message.(type) {
		case dto.ErrorResponse:
			resp = m
		case string:
			resp = dto.ErrorResponse{Code: defaultCode(code), Message: m}
		default:
			resp = dto.ErrorResponse{Code: defaultCode(code), Message: http.StatusText(code)}
		}
	} else {
		logrus.WithError(err).WithField("path", c.Path()).Error("unhandled error")
	}

	_ = c.JSON(code, resp)
}

func defaultCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return dto.CodeValidation
	case http.StatusUnauthorized:
		return dto.CodeUnauthorized
	case http.StatusForbidden:
		return dto.CodeForbidden
	case http.StatusNotFound:
		return dto.CodeNotFound
	case http.StatusServiceUnavailable:
		return dto.CodeUnavailable
	default:
		return dto.CodeInternal
	}
}
