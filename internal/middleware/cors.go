package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/taichu-system/tenancy-management/internal/constants"
)

// CORS 将 go-chi/cors 适配为 gin 中间件，预检请求在此结束
func CORS(allowedOrigins []string) gin.HandlerFunc {
	handler := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", constants.HeaderRequestID},
		ExposedHeaders:   []string{constants.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	})

	return func(c *gin.Context) {
		passed := false
		handler.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
		})).ServeHTTP(c.Writer, c.Request)

		if !passed {
			c.Abort()
			return
		}
		c.Next()
	}
}
