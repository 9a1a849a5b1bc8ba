package handler

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/middleware"
)

// Handlers собирает обработчики всех маршрутов
type Handlers struct {
	Attempts     *AttemptHandler
	Study        *StudyHandler
	Leaderboard  *LeaderboardHandler
	Achievements *AchievementHandler
	Profile      *ProfileHandler
	WS           *WSHandler
}

// RouterConfig - параметры роутера. WriteLimit может быть nil.
type RouterConfig struct {
	AllowedOrigins []string
	TrustedProxies []string
	WriteLimit     gin.HandlerFunc
}

// NewRouter регистрирует маршруты /api и /ws
func NewRouter(h Handlers, auth *middleware.AuthMiddleware, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// nil - не доверять прокси-заголовкам
	_ = router.SetTrustedProxies(cfg.TrustedProxies)

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || containsWildcard(cfg.AllowedOrigins) {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	router.Use(cors.New(corsCfg))

	// limited ставит ограничитель частоты перед пишущим обработчиком
	limited := func(chain ...gin.HandlerFunc) []gin.HandlerFunc {
		if cfg.WriteLimit == nil {
			return chain
		}
		return append([]gin.HandlerFunc{cfg.WriteLimit}, chain...)
	}

	api := router.Group("/api")
	api.Use(auth.RequireAuth())
	{
		attempts := api.Group("/attempts")
		{
			attempts.POST("", limited(h.Attempts.Record)...)
			attempts.GET("", h.Attempts.List)
			attempts.GET("/:id", middleware.ExtractUintParam("id", "attempt_id"), h.Attempts.Get)
		}

		study := api.Group("/study/sessions")
		{
			study.POST("", limited(h.Study.Start)...)
			study.GET("/active", h.Study.GetActive)
			study.DELETE("/active", h.Study.Abandon)
			study.POST("/:id/answers", limited(middleware.ExtractUUIDParam("id", "session_id"), h.Study.Answer)...)
		}

		api.GET("/leaderboard/:board", h.Leaderboard.Get)

		api.GET("/achievements", h.Achievements.List)
		api.GET("/achievements/me", h.Achievements.ListMine)

		api.GET("/avatars", h.Profile.ListAvatars)
		api.GET("/profile", h.Profile.GetProfile)
		api.PUT("/profile/avatar", h.Profile.SelectAvatar)

		admin := api.Group("/admin")
		admin.Use(auth.AdminOnly())
		{
			admin.GET("/leaderboard/:board/export", h.Leaderboard.Export)
		}
	}

	// Браузер не может передать заголовок при апгрейде: токен приходит в ?token=
	router.GET("/ws", auth.RequireAuth(), h.WS.HandleConnection)

	return router
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
