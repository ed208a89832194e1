package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bloom-backend/internal/platform/apierr"
	"github.com/yungbote/bloom-backend/internal/platform/ctxutil"
	"github.com/yungbote/bloom-backend/internal/platform/logger"
)

// RespondServiceError maps a service error onto the envelope. Anything that is not an
// *apierr.Error is an infrastructure failure: it is logged with the trace id and reported as 500.
func RespondServiceError(c *gin.Context, log *logger.Logger, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) && ae.Status > 0 && ae.Status < http.StatusInternalServerError {
		RespondError(c, ae.Status, ae.Code, ae.Err)
		return
	}
	if log != nil {
		log.Error("request failed",
			"route", c.FullPath(),
			"trace_id", ctxutil.TraceID(c.Request.Context()),
			"error", err,
		)
	}
	RespondError(c, http.StatusInternalServerError, "internal_error", err)
}
