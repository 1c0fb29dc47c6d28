package handlers

import (
	"errors"
	"log"
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	"social-service/internal/apperrors"
)

type errorResponse struct {
	Error    string                 `json:"error"`
	Code     apperrors.Code         `json:"code"`
	Fields   []apperrors.FieldError `json:"fields,omitempty"`
	Metadata map[string]string      `json:"metadata,omitempty"`
}

// writeError renders err with the status of its code. Uncoded errors become 500s.
func writeError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		appErr = apperrors.Wrap(apperrors.CodeInternal, "internal error", err)
	}
	if appErr.Code == apperrors.CodeInternal {
		log.Printf("error: %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(nethttp.StatusInternalServerError, errorResponse{Error: "internal error", Code: apperrors.CodeInternal})
		return
	}
	c.JSON(appErr.Code.HTTPStatus(), errorResponse{
		Error:    appErr.Message,
		Code:     appErr.Code,
		Fields:   appErr.Fields,
		Metadata: appErr.Metadata,
	})
}

func badBody(c *gin.Context) {
	writeError(c, apperrors.Validation([]apperrors.FieldError{{Field: "body", Message: "invalid request body"}}))
}

func badParam(c *gin.Context, name string) {
	writeError(c, apperrors.Validation([]apperrors.FieldError{{Field: name, Message: "must be a positive integer"}}))
}
