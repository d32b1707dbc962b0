// Package server contain implementation of go-gin-server and each route handlers
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"trizen-careers/internal/controller/account"
	applicationctl "trizen-careers/internal/controller/application"
	"trizen-careers/internal/controller/job"
	"trizen-careers/internal/middleware"
	"trizen-careers/internal/storage"
	"trizen-careers/internal/utilities"
)

const maxBodyBytes = 1 << 20

// RegisterRoutes will register each http endpoint routes to bound Server instance
func (s *MyServer) RegisterRoutes() http.Handler {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.AllowOrigin,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Content-Type", utilities.ProfileTokenHeader},
		ExposeHeaders:    []string{utilities.ProfileTokenHeader},
		AllowCredentials: true, // profile cookie
	}))
	r.Use(middleware.SafeHeader())

	jobs := job.NewJobController(s.Catalog)
	applications := applicationctl.NewApplicationController(s.Catalog, s.Submitter)
	accounts := account.NewAccountController()

	r.GET("/", s.HelloWorldHandler)
	r.GET("/health", s.healthHandler)
	v1 := r.Group("/api/v1")
	{
		v1.Use(middleware.SizeLimit(maxBodyBytes), middleware.ProfileIdentity(s.Registry))

		jobRoute := v1.Group("/jobs")
		{
			jobRoute.GET("", jobs.ListJobsHandler)
			jobRoute.GET("facets", jobs.FacetsHandler)
			jobRoute.GET(":id", jobs.GetJobHandler)
		}

		applicationRoute := v1.Group("/applications/:jobId")
		{
			applicationRoute.POST("", applications.OpenApplicationHandler)
			applicationRoute.GET("", applications.GetApplicationHandler)
			applicationRoute.DELETE("", applications.DiscardApplicationHandler)
			applicationRoute.PUT("fields/:field", applications.SetFieldHandler)
			applicationRoute.POST("fields/:field/blur", applications.BlurFieldHandler)
			applicationRoute.POST("submit", middleware.EnvRateLimitMiddleware(), applications.SubmitApplicationHandler)
		}

		v1.GET("/session", accounts.SessionHandler)
		authRoute := v1.Group("/auth")
		{
			authRoute.GET("state", accounts.StateHandler)
			authRoute.POST("password-check", accounts.PasswordCheckHandler)
			authRoute.POST("show-login", accounts.ShowLoginHandler)
			authRoute.POST("reset", accounts.ResetHandler)
			authRoute.POST("logout", accounts.LogoutHandler)

			limited := authRoute.Group("", middleware.EnvRateLimitMiddleware())
			limited.POST("register", accounts.RegisterHandler)
			limited.POST("verify", accounts.VerifyHandler)
			limited.POST("resend", accounts.ResendHandler)
			limited.POST("login", accounts.LoginHandler)
		}
	}

	return r
}

// HelloWorldHandler handle request by return message "Hello World"
func (s *MyServer) HelloWorldHandler(c *gin.Context) {
	resp := make(map[string]string)
	resp["message"] = "Hello World"

	c.JSON(http.StatusOK, resp)
}

func (s *MyServer) healthHandler(c *gin.Context) {
	stats := map[string]string{
		"status":  "up",
		"catalog": s.Catalog.Version(),
	}
	if hr, ok := s.Store.(storage.HealthReporter); ok {
		for k, v := range hr.Health() {
			stats["storage_"+k] = v
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := s.Backend.Health(ctx); err != nil {
		stats["backend"] = "down"
		stats["backend_error"] = err.Error()
	} else {
		stats["backend"] = "up"
	}

	c.JSON(http.StatusOK, stats)
}
