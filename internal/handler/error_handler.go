package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	apperrors "storefront/internal/errors"
)

// ErrorHandler converts any error returned by a handler into an envelope for API callers
// or the error view for pages.
func ErrorHandler(log *logrus.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, msg := statusAndMessage(err)
		entry := log.WithFields(logrus.Fields{
			"method": c.Request().Method,
			"uri":    c.Request().RequestURI,
			"status": status,
		})
		if status >= http.StatusInternalServerError {
			entry.WithError(err).Error("request failed")
		} else {
			entry.WithError(err).Debug("request rejected")
		}

		var werr error
		switch {
		case c.Request().Method == http.MethodHead:
			werr = c.NoContent(status)
		case wantsJSON(c) || c.Echo().Renderer == nil:
			werr = c.JSON(status, apperrors.Failure(msg))
		default:
			werr = c.Render(status, "error", echo.Map{
				"Title":   http.StatusText(status),
				"Status":  status,
				"Message": msg,
			})
		}
		if werr != nil {
			log.WithError(werr).Error("write error response")
		}
	}
}

func statusAndMessage(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if inner, ok := he.Message.(error); ok {
			return he.Code, inner.Error()
		}
		return he.Code, fmt.Sprint(he.Message)
	}
	mapped := apperrors.MapErrorToHTTP(err)
	return mapped.StatusCode, mapped.Message
}
