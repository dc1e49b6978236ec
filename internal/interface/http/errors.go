package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-attendance-auth/internal/application"
	"github.com/oksasatya/go-attendance-auth/pkg/response"
	"github.com/oksasatya/go-attendance-auth/pkg/validation"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(k application.Kind) int {
	switch k {
	case application.KindConflict:
		return http.StatusConflict
	case application.KindValidation, application.KindDomainRule:
		return http.StatusBadRequest
	case application.KindUnauthorized:
		return http.StatusUnauthorized
	case application.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeError answers with the status and code of err. Unknown errors are
// logged and reported without their message.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var appErr *application.Error
	if !errors.As(err, &appErr) {
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"path":       c.FullPath(),
			}).Error("request failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal server error", response.ErrorBody{Code: "internal"})
		return
	}
	status := StatusFor(appErr.Kind)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.WithError(err).WithField("request_id", c.GetString("request_id")).Warn("external dependency failed")
	}
	response.Error[any](c, status, appErr.Message, response.ErrorBody{Code: appErr.Code})
}

func bindError(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", response.ErrorBody{
		Code:    application.ErrValidation.Code,
		Details: validation.ToDetails(err),
	})
}
