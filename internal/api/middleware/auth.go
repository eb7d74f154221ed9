package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/api/handlers"
)

const userIDHeader = "X-User-ID"

type contextKey string

const userIDKey contextKey = "userID"

const msgMissingUserID = "отсутствует или некорректен заголовок X-User-ID"

// Auth извлекает ID пользователя из заголовка X-User-ID и кладет его в контекст.
// Аутентификацию выполняет внешний шлюз, здесь только идентификация.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(userIDHeader)
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID достает ID пользователя из контекста запроса
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}
