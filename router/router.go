package router

import (
	"net/http"

	"incometracker/api"
	"incometracker/config"
	_ "incometracker/docs"
	"incometracker/middleware"
	"incometracker/view"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 收入页面状态按用户缓存，登录与页面接口共用
	sessions := view.NewRegistry()

	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录）
		authHandler := api.NewAuthHandler(cfg, sessions)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", middleware.LoginRateLimitFromConfig(&cfg.Security), authHandler.Register)
			auth.POST("/login", middleware.LoginRateLimitFromConfig(&cfg.Security), authHandler.Login)
		}

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			authorized.GET("/auth/profile", authHandler.GetProfile)

			// 收入页面：每个接口对应页面上的一个用户动作
			viewHandler := api.NewIncomeViewHandler(cfg, sessions)
			incomeView := authorized.Group("/income-view")
			{
				incomeView.GET("", viewHandler.Get)
				incomeView.POST("/submit", viewHandler.Submit)
				incomeView.POST("/incomes/:id/edit", viewHandler.Edit)
				incomeView.POST("/incomes/:id/select", viewHandler.Select)
				incomeView.POST("/deselect", viewHandler.Deselect)
				incomeView.POST("/clear", viewHandler.Clear)
				incomeView.POST("/delete", viewHandler.Delete)
				incomeView.POST("/notes", viewHandler.AddNote)
				incomeView.DELETE("/notes/:id", viewHandler.DeleteNote)
				incomeView.GET("/summary", viewHandler.Summary)
				incomeView.POST("/summary/email", viewHandler.EmailSummary)
			}

			// 导出相关
			exportHandler := api.NewExportHandler()
			export := authorized.Group("/export")
			{
				export.GET("/incomes/csv", exportHandler.ExportCSV)
				export.GET("/incomes/excel", exportHandler.ExportExcel)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
