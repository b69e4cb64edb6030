package router

import (
	"github.com/gin-gonic/gin"
	"github.com/taichu-system/tenancy-management/internal/di"
	"github.com/taichu-system/tenancy-management/internal/middleware"
	"github.com/taichu-system/tenancy-management/internal/model"
)

// Setup 注册全部路由
func Setup(c *di.Container) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery(c.Log))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(c.Log))
	r.Use(middleware.CORS(c.Config.Server.AllowedOrigins))
	r.NoRoute(middleware.NoRoute())

	r.GET("/healthz", c.HealthHandler.Healthz)

	// 认证相关路由（登录不需要认证）
	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/login", c.AuthHandler.Login)
		auth.POST("/logout", middleware.SessionMiddleware(c.AuthService), c.AuthHandler.Logout)
		auth.GET("/me", middleware.SessionMiddleware(c.AuthService), c.AuthHandler.Me)
	}

	v1 := r.Group("/api/v1")
	v1.Use(middleware.SessionMiddleware(c.AuthService))

	caretakerOnly := middleware.RoleMiddleware(c.AuthService, model.RoleCaretaker)
	tenantOnly := middleware.RoleMiddleware(c.AuthService, model.RoleTenant)
	anyRole := middleware.RoleMiddleware(c.AuthService, model.RoleCaretaker, model.RoleTenant)
	{
		units := v1.Group("/units", caretakerOnly)
		{
			units.GET("", c.UnitHandler.ListUnits)
			units.GET("/available", c.UnitHandler.ListAvailableUnits)
			units.GET("/stats", c.OccupancyHandler.GetStats)
			units.GET("/:id", c.UnitHandler.GetUnit)
			units.POST("", c.UnitHandler.CreateUnit)
			units.PUT("/:id", c.UnitHandler.UpdateUnit)
			units.DELETE("/:id", c.UnitHandler.DeleteUnit)
		}

		tenants := v1.Group("/tenants")
		{
			tenants.POST("", caretakerOnly, c.TenantHandler.OnboardTenant)
			tenants.GET("", caretakerOnly, c.TenantHandler.ListTenants)
			tenants.GET("/me", tenantOnly, c.TenantHandler.GetMyProfile)
			// 租户本人可查看，归属校验在服务层
			tenants.GET("/:id", anyRole, c.TenantHandler.GetTenant)
			tenants.PUT("/:id", caretakerOnly, c.TenantHandler.UpdateTenant)
			tenants.DELETE("/:id", caretakerOnly, c.TenantHandler.OffboardTenant)
		}

		leases := v1.Group("/leases", caretakerOnly)
		{
			leases.GET("", c.LeaseHandler.ListLeases)
			leases.POST("/:id/terminate", c.LeaseHandler.TerminateLease)
		}

		v1.GET("/occupancy/stats", caretakerOnly, c.OccupancyHandler.GetStats)
		v1.GET("/audit", caretakerOnly, c.AuditHandler.ListAuditEvents)
	}

	return r
}
