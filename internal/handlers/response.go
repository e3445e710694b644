package handlers

import (
	"encoding/json"
	"net/http"

	"dailyPlanner/internal/logger"
)

type Payload struct {
	Key     string
	Payload any
}

func toPayload(key string, pl any) Payload {
	return Payload{Key: key, Payload: pl}
}

// responseWithJSON собирает тело ответа из пар ключ-значение
func responseWithJSON(w http.ResponseWriter, code int, payload ...Payload) {
	storage := make(map[string]any, len(payload))
	for _, pl := range payload {
		storage[pl.Key] = pl.Payload
	}
	writeJSON(w, code, storage)
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("HTTP: Не удалось записать ответ", err)
	}
}

func responseWithError(w http.ResponseWriter, code int, message string) {
	responseWithJSON(w, code,
		toPayload("error", http.StatusText(code)),
		toPayload("message", message))
}
