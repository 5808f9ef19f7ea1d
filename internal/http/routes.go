package http

import (
	"membership_webapp/internal/config"
	"membership_webapp/internal/domain"
	"membership_webapp/internal/http/handlers"
	"membership_webapp/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, catalog *domain.TierCatalog, cfg *config.Config, version string) {
	h := handlers.NewHandler(db, catalog, handlers.HandlerConfig{
		ProfileSecret:  cfg.ProfileSecret,
		AdminMemberIDs: cfg.AdminMemberIDs,
		CommentGap:     cfg.CommentGap,
		SurfGap:        cfg.SurfGap,
		TierStipend:    cfg.TierStipend,
	})
	healthHandler := handlers.NewHealthHandler(db, version)

	// Health checks and metrics (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	registerAPIRoutes(v1, h, cfg)
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, cfg *config.Config) {
	// Auth: ticket in, JWT out. Tighter limit than the rest of the API.
	api.POST("/auth", middleware.RedisRateLimit(5, cfg.APIRateWindow), h.Auth)

	// Own profile and score
	api.GET("/me", middleware.JWT(), h.Me)
	api.GET("/me/puls", middleware.JWT(), h.MyPuls)
	api.POST("/me/puls/collect", middleware.JWT(), h.CollectPuls)
	api.POST("/me/emotion", middleware.JWT(), h.SetEmotion)
	api.POST("/me/about", middleware.JWT(), h.CompleteAboutMe)
	api.POST("/me/tier", middleware.JWT(), h.ChangeTier)

	// Friends
	api.GET("/me/friends", middleware.JWT(), h.FriendCounts)
	api.POST("/me/friends/:id", middleware.JWT(), h.AddFriend)
	api.POST("/me/best-friends/:id", middleware.JWT(), h.AddBestFriend)

	// Other members
	api.GET("/profile/:id", middleware.JWT(), h.Profile)
	api.GET("/profile/:id/visitors", middleware.JWT(), h.Visitors)
	api.GET("/profile/:id/guestbook", middleware.JWT(), h.Guestbook)
	api.POST("/profile/:id/guestbook", middleware.JWT(),
		middleware.ActionRateLimit("guestbook", 10, cfg.APIRateWindow), h.SignGuestbook)

	// Galleries and pictures
	api.POST("/me/galleries", middleware.JWT(), h.CreateGallery)
	api.POST("/galleries/:id/pictures", middleware.JWT(), h.AddPicture)
	api.POST("/pictures/:id/comments", middleware.JWT(),
		middleware.ActionRateLimit("comment", 20, cfg.APIRateWindow), h.CommentPicture)

	// Profile photo moderation
	api.POST("/me/photo-request", middleware.JWT(), h.RequestProfilePhoto)
	api.POST("/admin/photo-requests/:id", middleware.JWT(), h.ExaminePhotoRequest)

	// Bonus campaigns
	api.GET("/bonuses", h.ActiveBonuses)
	api.POST("/admin/bonuses", middleware.JWT(), h.CreateBonusCampaign)
}
