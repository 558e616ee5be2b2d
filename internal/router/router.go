package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"complianceadvisor/internal/auth"
	"complianceadvisor/internal/config"
	"complianceadvisor/internal/handler"
	"complianceadvisor/internal/service"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log *zap.Logger,
	jwtService *auth.JWTService,
	authService service.AuthService,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	complianceHandler *handler.ComplianceHandler,
	documentHandler *handler.DocumentHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}))

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Everything below requires a valid, unrevoked session cookie.
	protected := []echo.MiddlewareFunc{
		echojwt.WithConfig(echojwt.Config{
			TokenLookup: "cookie:" + auth.CookieName,
			ContextKey:  handler.ClaimsContextKey,
			ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
				return jwtService.Validate(token)
			},
			ErrorHandler: handler.UnauthorizedHandler,
		}),
		handler.SessionGuard(authService),
	}

	api := e.Group("/api")
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)

	secured := api.Group("", protected...)
	secured.POST("/logout", authHandler.Logout)
	secured.GET("/me", userHandler.Me)
	secured.POST("/check", complianceHandler.Check)
	secured.GET("/options", complianceHandler.Options)
	secured.POST("/upload", documentHandler.Upload, middleware.BodyLimit(cfg.MaxUploadSize))
	secured.GET("/my-documents", documentHandler.MyDocuments)
	secured.GET("/documents", documentHandler.ListDocuments)
	secured.POST("/delete-document", documentHandler.Delete)

	downloads := e.Group("", protected...)
	downloads.GET("/download/:docName", documentHandler.Preview)
	downloads.GET("/download-attachment/:docName", documentHandler.Download)
}

func requestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				log.Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
