package httpx

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/you/emrsvc/internal/http/handlers"
	"github.com/you/emrsvc/internal/http/middleware"
	"github.com/you/emrsvc/internal/logging"
	"go.uber.org/zap"
)

// Pages guarded by the cookie/JWT context
var jwtPages = []string{"/dashboard", "/billing-report", "/profile", "/users", "/settings"}

// Pages guarded by the federated context
var federatedPages = []string{"/firebase-dashboard"}

// RouterDeps is everything BuildRouter wires together
type RouterDeps struct {
	Auth      *handlers.AuthHandlers
	Users     *handlers.UserHandlers
	Files     *handlers.FileHandlers
	Federated *handlers.FederatedHandlers
	Insights  *handlers.InsightHandlers
	Policies  *handlers.PolicyHandlers

	AuthMW *middleware.AuthMW
	Casbin middleware.CasbinMiddleware

	Logger         *zap.Logger
	Version        string
	AllowedOrigins []string
	StaticDir      string

	// MaxUploadBytes caps a stored file; request bodies get headroom on top
	MaxUploadBytes int64
}

// Room for multipart headers and form fields around the file part
const multipartOverhead = 1 << 20

// multipartMemory is how much of a multipart form is kept in memory before spooling
const multipartMemory = 8 << 20

func BuildRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = multipartMemory
	r.Use(gin.Recovery(), logging.GinLogger(d.Logger), middleware.Metrics())
	if len(d.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "x-user-id"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var uploadLimit, insightLimit gin.HandlerFunc = middleware.BodyLimit(0), middleware.BodyLimit(0)
	if d.MaxUploadBytes > 0 {
		uploadLimit = middleware.BodyLimit(d.MaxUploadBytes + multipartOverhead)
		// images arrive base64 encoded
		insightLimit = middleware.BodyLimit(d.MaxUploadBytes*4/3 + multipartOverhead)
	}

	api := r.Group("/api")
	api.GET("/health", handlers.Health(d.Version))

	auth := api.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.GET("/state", d.Auth.State)
	auth.POST("/forgot-password", d.Auth.ForgotPassword)
	auth.POST("/reset-password", d.Auth.ResetPassword)

	authed := auth.Group("/").Use(d.AuthMW.WithJWT())
	authed.GET("/verify", d.Auth.Verify)
	authed.POST("/refresh", d.Auth.Refresh)
	authed.POST("/logout", d.Auth.Logout)

	users := api.Group("/users").Use(d.AuthMW.WithJWT(), d.Casbin.Enforce())
	users.GET("/profile", d.Users.GetProfile)
	users.PUT("/profile", d.Users.UpdateProfile)
	users.POST("/avatar", uploadLimit, d.Users.UploadAvatar)
	users.GET("", d.Users.ListUsers)
	users.GET("/:id", d.Users.GetUser)
	users.DELETE("/:id", d.Users.DeleteUser)

	files := api.Group("/files").Use(d.AuthMW.WithJWT(), d.Casbin.Enforce())
	files.POST("/upload", uploadLimit, d.Files.Upload)
	files.GET("/*path", d.Files.Serve)
	files.DELETE("/*path", d.Files.Delete)

	adm := api.Group("/admin").Use(d.AuthMW.WithJWT(), d.Casbin.Enforce())
	adm.GET("/policies", d.Policies.List)
	adm.POST("/policies", d.Policies.Add)
	adm.DELETE("/policies", d.Policies.Remove)

	fed := api.Group("/federated")
	fed.GET("/google", d.Federated.GoogleStart)
	fed.GET("/google/callback", d.Federated.GoogleCallback)
	fed.POST("/phone/send", d.Federated.SendPhoneCode)
	fed.POST("/phone/verify", d.Federated.VerifyPhoneCode)
	fed.POST("/phone/resend", d.Federated.ResendPhoneCode)
	fed.GET("/state", d.Federated.State)
	fed.POST("/signout", d.Federated.SignOut)

	ai := api.Group("/insights").Use(d.AuthMW.WithAnyAuth(), insightLimit)
	ai.POST("/image-analysis", d.Insights.AnalyzeImage)
	ai.POST("/clinical-reasoning", d.Insights.ClinicalReasoning)
	ai.POST("/research", d.Insights.ResearchInsights)
	ai.POST("/predictive-analytics", d.Insights.PredictiveAnalytics)
	ai.POST("/treatment-optimization", d.Insights.TreatmentOptimization)
	ai.POST("/decision-support", d.Insights.DecisionSupport)
	ai.POST("/population-health", d.Insights.PopulationHealth)

	index := spaIndex(d.StaticDir)
	for _, p := range jwtPages {
		r.GET(p, d.AuthMW.WithJWT(), index)
	}
	for _, p := range federatedPages {
		r.GET(p, d.AuthMW.WithFederated(), index)
	}
	r.NoRoute(spaFallback(d.StaticDir, index))

	return r
}

// spaIndex serves the single page app shell
func spaIndex(staticDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if staticDir == "" {
			c.JSON(http.StatusNotFound, gin.H{"message": "Resource not found", "success": false})
			return
		}
		c.File(filepath.Join(staticDir, "index.html"))
	}
}

// spaFallback serves built assets when they exist and the app shell for any
// other page. Unknown API routes stay JSON 404s.
func spaFallback(staticDir string, index gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if staticDir == "" || c.Request.Method != http.MethodGet || strings.HasPrefix(path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"message": "Resource not found", "success": false})
			return
		}

		asset := filepath.Join(staticDir, filepath.FromSlash(filepath.Clean("/"+path)))
		if info, err := os.Stat(asset); err == nil && !info.IsDir() {
			c.File(asset)
			return
		}
		index(c)
	}
}
