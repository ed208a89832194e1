package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/bloom-backend/internal/http/response"
	"github.com/yungbote/bloom-backend/internal/platform/ctxutil"
	"github.com/yungbote/bloom-backend/internal/platform/logger"
	"github.com/yungbote/bloom-backend/internal/services"
)

type SurveyHandler struct {
	log     *logger.Logger
	surveys services.SurveyService
}

func NewSurveyHandler(log *logger.Logger, surveys services.SurveyService) *SurveyHandler {
	return &SurveyHandler{log: log.With("handler", "SurveyHandler"), surveys: surveys}
}

// GET /api/surveys
func (h *SurveyHandler) List(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	list, err := h.surveys.ListVisibleSurveys(c.Request.Context(), rd.CompanyID, rd.UserID, rd.IsAdmin())
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, list)
}

// GET /api/surveys/:id/analytics
func (h *SurveyHandler) Analytics(c *gin.Context) {
	surveyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_survey_id", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	out, err := h.surveys.GetSurveyAnalytics(c.Request.Context(), rd.CompanyID, surveyID)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}
