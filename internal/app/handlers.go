package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/bloom-backend/internal/http/handlers"
	"github.com/yungbote/bloom-backend/internal/platform/logger"
)

type Handlers struct {
	Health    *httpH.HealthHandler
	Happiness *httpH.HappinessHandler
	Survey    *httpH.SurveyHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(db),
		Happiness: httpH.NewHappinessHandler(log, services.Happiness),
		Survey:    httpH.NewSurveyHandler(log, services.Survey),
	}
}
