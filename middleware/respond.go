package middleware

import (
	"errors"
	"net/http"

	"Connectify/logger"
	"Connectify/tools/errs"

	"github.com/gin-gonic/gin"
)

// Response envelope shared by every REST endpoint:
// {"success": bool, "message": string?, "data": {...}?}.

func OK(c *gin.Context, status int, message string, data gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// Fail maps the error taxonomy onto HTTP statuses. Store errors are
// logged with full detail but leave the process as an opaque 500; the
// not-found/denied conflation reaches the wire as a plain 404.
func Fail(c *gin.Context, err error) {
	var ce *errs.CodeError
	if !errors.As(err, &ce) {
		ce = errs.ErrStore.WrapMsg("unclassified", "cause", err.Error())
	}

	status := http.StatusInternalServerError
	msg := ce.Msg
	switch ce.Code {
	case errs.CodeValidation:
		status = http.StatusBadRequest
	case errs.CodeUnauthorized:
		status = http.StatusUnauthorized
	case errs.CodeNotFoundOrDenied:
		status = http.StatusNotFound
	case errs.CodeStore:
		logger.Errorf("store error: %s", ce.Error())
		msg = "Server error"
	default:
		logger.Errorf("unmapped error: %s", ce.Error())
		msg = "Server error"
	}

	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": msg})
}
