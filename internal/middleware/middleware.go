package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"dailyPlanner/internal/logger"

	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const RequestIdKey contextKey = "request_id"

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := r.Header.Get("X-Request-ID")
		if requestId == "" {
			requestId = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestId)

		ctx := context.WithValue(r.Context(), RequestIdKey, requestId)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIdKey).(string); ok {
		return id
	}
	return ""
}

type loggingWriter struct {
	http.ResponseWriter
	status      int
	size        int
	wroteHeader bool
}

func (lw *loggingWriter) WriteHeader(code int) {
	if !lw.wroteHeader {
		lw.status = code
		lw.wroteHeader = true
		lw.ResponseWriter.WriteHeader(code)
	}
}

func (lw *loggingWriter) Write(b []byte) (int, error) {
	if !lw.wroteHeader {
		lw.WriteHeader(http.StatusOK)
	}

	n, err := lw.ResponseWriter.Write(b)
	lw.size += n
	return n, err
}

func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestId := GetRequestID(r.Context())

		logger.Info("HTTP_IN: Начало запроса",
			zap.String("request_id", requestId),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.String("client_ip", r.RemoteAddr),
		)

		lw := &loggingWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(lw, r)

		logLevel := zap.InfoLevel
		if lw.status >= 400 && lw.status < 500 {
			logLevel = zap.WarnLevel
		} else if lw.status >= 500 {
			logLevel = zap.ErrorLevel
		}
		logger.Log(logLevel, "HTTP_OUT: Завершение запроса",
			zap.String("request_id", requestId),
			zap.Int("status", lw.status),
			zap.Int("bytes_written", lw.size),
			zap.Duration("ms", time.Since(start)),
		)
	})
}

// Timeout ограничивает контекст запроса. Если обработчик ничего не записал
// к моменту истечения срока, клиент получает 504.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			lw := &loggingWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(lw, r.WithContext(ctx))

			if !lw.wroteHeader && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				requestId := GetRequestID(r.Context())
				logger.Warn("HTTP: Таймаут запроса",
					zap.String("request_id", requestId),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Duration("timeout", timeout))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusGatewayTimeout)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error":      "request_timeout",
					"message":    "запрос выполнялся слишком долго",
					"request_id": requestId,
				})
			}
		})
	}
}

// CORS разрешает планировщику из браузера ходить к API
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

type clientInfo struct {
	count   int
	resetAt time.Time
}

// rateLimiter считает запросы по IP в окне фиксированной длины.
// Истёкшие окна вычищаются не чаще одного раза за окно.
type rateLimiter struct {
	rpm    int
	window time.Duration
	now    func() time.Time

	mtx       sync.Mutex
	clients   map[string]*clientInfo
	lastSweep time.Time
}

func newRateLimiter(rpm int, window time.Duration, now func() time.Time) *rateLimiter {
	return &rateLimiter{
		rpm:       rpm,
		window:    window,
		now:       now,
		clients:   make(map[string]*clientInfo),
		lastSweep: now(),
	}
}

// allow возвращает копию окна клиента и признак, что запрос укладывается в лимит
func (l *rateLimiter) allow(ip string) (clientInfo, bool) {
	now := l.now()

	l.mtx.Lock()
	defer l.mtx.Unlock()

	l.sweep(now)

	info, exists := l.clients[ip]
	if !exists || now.After(info.resetAt) {
		info = &clientInfo{count: 1, resetAt: now.Add(l.window)}
		l.clients[ip] = info
		return *info, true
	}
	if info.count >= l.rpm {
		return *info, false
	}
	info.count++
	return *info, true
}

// sweep вызывается под mtx
func (l *rateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	for ip, info := range l.clients {
		if now.After(info.resetAt) {
			delete(l.clients, ip)
		}
	}
	l.lastSweep = now
}

// RateLimit - фиксированное окно в минуту на IP клиента
func RateLimit(rpm int) func(http.Handler) http.Handler {
	return rateLimit(newRateLimiter(rpm, time.Minute, time.Now))
}

func rateLimit(limiter *rateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info, ok := limiter.allow(getIp(r))

			if !ok {
				retryAfter := int(info.resetAt.Sub(limiter.now()).Seconds())

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.WriteHeader(http.StatusTooManyRequests)

				_ = json.NewEncoder(w).Encode(map[string]any{
					"error":       "rate_limit_exceeded",
					"message":     "Слишком много запросов. Попробуйте позже.",
					"retry_after": retryAfter,
					"request_id":  GetRequestID(r.Context()),
				})
				return
			}

			remaining := max(limiter.rpm-info.count, 0)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.rpm))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.resetAt.Unix(), 10))

			next.ServeHTTP(w, r)
		})
	}
}

func getIp(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
