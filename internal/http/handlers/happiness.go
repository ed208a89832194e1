package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/bloom-backend/internal/domain/happiness"
	"github.com/yungbote/bloom-backend/internal/http/response"
	"github.com/yungbote/bloom-backend/internal/platform/ctxutil"
	"github.com/yungbote/bloom-backend/internal/platform/logger"
	"github.com/yungbote/bloom-backend/internal/services"
)

var errScoreRequired = errors.New("score is required")

type HappinessHandler struct {
	log       *logger.Logger
	happiness services.HappinessService
}

func NewHappinessHandler(log *logger.Logger, happiness services.HappinessService) *HappinessHandler {
	return &HappinessHandler{log: log.With("handler", "HappinessHandler"), happiness: happiness}
}

type submitHappinessRequest struct {
	Score *float64 `json:"score"`
}

type happinessStatusResponse struct {
	Submitted bool      `json:"submitted"`
	WeekStart time.Time `json:"week_start"`
}

// GET /api/happiness/status
func (h *HappinessHandler) Status(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	submitted, err := h.happiness.HasUserSubmittedThisWeek(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, happinessStatusResponse{
		Submitted: submitted,
		WeekStart: h.happiness.CurrentWeekStart(),
	})
}

// POST /api/happiness
func (h *HappinessHandler) Submit(c *gin.Context) {
	var req submitHappinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.Score == nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errScoreRequired)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	sub, err := h.happiness.SubmitHappinessScore(c.Request.Context(), rd.UserID, rd.CompanyID, *req.Score)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondCreated(c, sub)
}

// GET /api/happiness/analytics?weeks=&team_id=&company_level=&view_type=
func (h *HappinessHandler) Analytics(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	opts := services.WeeklyAnalyticsOptions{UserID: rd.UserID}

	weeks, err := parseWeeks(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	opts.Weeks = weeks

	if raw := strings.TrimSpace(c.Query("team_id")); raw != "" {
		teamID, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("team_id: %w", err))
			return
		}
		opts.TeamID = &teamID
	}
	if raw := strings.TrimSpace(c.Query("company_level")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("company_level: %w", err))
			return
		}
		opts.CompanyLevel = v
	}
	view, err := happiness.ParseViewType(c.Query("view_type"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	opts.ViewType = view

	data, err := h.happiness.GetWeeklyHappinessAnalytics(c.Request.Context(), rd.CompanyID, opts)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, data)
}

// GET /api/admin/happiness/analytics?weeks=
func (h *HappinessHandler) AdminAnalytics(c *gin.Context) {
	weeks, err := parseWeeks(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	data, err := h.happiness.GetHappinessAnalytics(c.Request.Context(), rd.CompanyID, weeks)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, data)
}

// parseWeeks returns 0 when the parameter is absent; range checks happen in the service.
func parseWeeks(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.Query("weeks"))
	if raw == "" {
		return 0, nil
	}
	weeks, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("weeks: %w", err)
	}
	if weeks < 1 || weeks > services.MaxAnalyticsWeeks {
		return 0, fmt.Errorf("weeks must be between 1 and %d", services.MaxAnalyticsWeeks)
	}
	return weeks, nil
}
