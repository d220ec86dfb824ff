package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"Task_Mania/internal/handler"
	"Task_Mania/internal/middleware"
)

type Handlers struct {
	User      *handler.UserHandler
	Email     *handler.EmailHandler
	OAuth     *handler.OAuthHandler
	Community *handler.CommunityHandler
	Post      *handler.PostHandler
	PostLike  *handler.PostLikeHandler
	Comment   *handler.CommentHandler
	Follow    *handler.FollowHandler
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func InitRouter(h Handlers, sessions middleware.SessionStore, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), cors.New(corsConfig(corsOrigins)))

	auth := middleware.AuthMiddleware(sessions)
	optional := middleware.OptionalAuth(sessions)

	// email codes
	emailGroup := r.Group("/api/email")
	{
		emailGroup.POST("/:scope/code", h.Email.SendCode)
	}

	// accounts
	userGroup := r.Group("/api/user")
	{
		userGroup.POST("/register", h.User.Register)
		userGroup.POST("/login", h.User.Login)
		userGroup.POST("/logout", auth, h.User.Logout)
		userGroup.POST("/reset", h.User.ResetPassword)
	}
	r.GET("/api/users/:id", h.User.Profile)

	// tokens
	tokenGroup := r.Group("/api/token")
	{
		tokenGroup.POST("/refresh", h.User.TokenRefresh)
	}

	// google login
	oauthGroup := r.Group("/api/auth/oauth2")
	{
		oauthGroup.GET("/google", h.OAuth.GoogleLogin)
		oauthGroup.GET("/callback", h.OAuth.Callback)
	}

	// signed-in only
	authGroup := r.Group("/api/auth")
	authGroup.Use(auth)
	{
		authGroup.POST("/change-password", h.User.ChangePassword)
		authGroup.GET("/me", h.User.Me)
	}

	CommunityRoutes(r.Group("/api/communities"), h.Community, auth)

	// posts, likes and comments
	postGroup := r.Group("/api/posts")
	{
		postGroup.GET("/feed", auth, h.Post.Feed)
		postGroup.GET("/user/:userId", optional, h.Post.ListByUser)
		postGroup.GET("/category/:category", optional, h.Post.ListBySkillCategory)
		postGroup.GET("/community/:communityId", optional, h.Post.ListByCommunity)
		postGroup.POST("", auth, h.Post.CreatePost)
		postGroup.GET("/:id", optional, h.Post.GetPost)
		postGroup.PUT("/:id", auth, h.Post.UpdatePost)
		postGroup.DELETE("/:id", auth, h.Post.DeletePost)

		postGroup.POST("/:id/like", auth, h.PostLike.Like)
		postGroup.DELETE("/:id/like", auth, h.PostLike.Unlike)
		postGroup.GET("/:id/like", auth, h.PostLike.IsLiked)
		postGroup.GET("/:id/likes/count", h.PostLike.Count)

		postGroup.POST("/:id/comments", auth, h.Comment.Create)
		postGroup.GET("/:id/comments", h.Comment.ListByPost)
		postGroup.GET("/:id/comments/count", h.Comment.Count)
	}

	commentGroup := r.Group("/api/comments")
	commentGroup.Use(auth)
	{
		commentGroup.PUT("/:id", h.Comment.Update)
		commentGroup.DELETE("/:id", h.Comment.Delete)
	}

	// follows
	followGroup := r.Group("/api/follow")
	followGroup.Use(auth)
	{
		followGroup.POST("", h.Follow.Follow)
		followGroup.GET("/followings", h.Follow.ListFollowings)
		followGroup.GET("/followers", h.Follow.ListFollowers)
		followGroup.GET("/relation", h.Follow.Relation)
	}

	return r
}

// CommunityRoutes mounts the community table on g. Reads are public, writes go
// through auth.
func CommunityRoutes(g *gin.RouterGroup, h *handler.CommunityHandler, auth gin.HandlerFunc) {
	g.GET("", h.GetAll)
	g.GET("/public", h.GetPublic)
	g.GET("/creator/:creatorId", h.GetByCreator)
	g.GET("/member/:memberId", h.GetByMember)
	g.GET("/admin/:adminId", h.GetByAdmin)
	g.GET("/category/:category", h.GetByCategory)
	g.GET("/:id", h.GetByID)
	g.GET("/:id/member/:uid", h.IsMember)
	g.GET("/:id/admin/:uid", h.IsAdmin)
	g.GET("/:id/creator/:uid", h.IsCreator)

	g.POST("", auth, h.Create)
	g.PUT("/:id", auth, h.Update)
	g.DELETE("/:id", auth, h.Delete)
	g.POST("/:id/join/:uid", auth, h.Join)
	g.POST("/:id/leave/:uid", auth, h.Leave)
	g.POST("/:id/admin/:uid", auth, h.AddAdmin)
	g.DELETE("/:id/admin/:uid", auth, h.RemoveAdmin)
}
