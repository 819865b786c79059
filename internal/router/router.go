package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rotalog/internal/config"
	"github.com/rotalog/internal/handler"
)

// Setup 配置 Gin 引擎和路由
func Setup(api *handler.API, cfg config.AppConfig) *gin.Engine {
	gin.SetMode(cfg.GinMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handler.RequestID())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// 公开页面路由
	r.GET("/", api.ShowHome)
	r.GET("/page/:ref", api.ShowPage)
	r.GET("/page/:ref/:secref", api.ShowPage)
	r.GET("/entry/:ref", api.ShowEntry)
	r.GET("/meta/:ref", api.ShowMeta)
	r.GET("/rss.xml", api.ShowRssFeed)

	// 需要 api_key 的同步接口
	secured := r.Group("/api")
	secured.Use(handler.APIKeyRequired(cfg))
	{
		secured.GET("/index", api.GetIndex)
		secured.POST("/create", api.CreateEntry)
		secured.POST("/update", api.UpdateEntry)
		secured.POST("/rotate", api.RotateEntries)
	}

	return r
}
