package handlers

import (
	"net/http"

	"dailyPlanner/internal/logger"
	"dailyPlanner/internal/service"

	"go.uber.org/zap"
)

// handleServiceError отвечает клиенту по ошибке сервиса: бизнес-ошибки по коду, остальное 500
func handleServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	if businessErr, ok := service.AsBusinessError(err); ok {
		statusCode := mapBusinessErrorToHTTP(businessErr.Code)

		logger.Warn("HTTP: Бизнес-ошибка",
			zap.String("operation", operation),
			zap.String("error_code", businessErr.Code),
			zap.Int("http_status", statusCode))

		responseWithJSON(w, statusCode,
			toPayload("error", businessErr.Code),
			toPayload("message", businessErr.Message),
			toPayload("details", businessErr.Details),
		)
		return
	}

	logger.Error("HTTP: Ошибка Service", err,
		zap.String("operation", operation),
		zap.String("client_ip", r.RemoteAddr))

	responseWithError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeVersionConflict:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
