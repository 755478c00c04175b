package web

import (
	"net/http"

	"github.com/erpcompany/erp/core"
	"github.com/erpcompany/erp/health"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ManagementController serves /health, /info and /metrics. Each route is
// mounted only when its service is registered.
type ManagementController struct {
	Health   *health.Registry      `di:"?"`
	Info     *core.ApplicationInfo `di:"?"`
	Gatherer prometheus.Gatherer   `di:"?"`
}

func (m *ManagementController) MountRoutes(router gin.IRouter) {
	if m.Health != nil {
		router.GET("/health", m.health)
	}
	if m.Info != nil {
		router.GET("/info", m.info)
	}
	if m.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Gatherer, promhttp.HandlerOpts{})))
	}
}

func (m *ManagementController) health(c *gin.Context) {
	report := m.Health.Refresh(c.Request.Context())
	status := http.StatusOK
	if !report.Up() {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}

func (m *ManagementController) info(c *gin.Context) {
	c.JSON(http.StatusOK, m.Info)
}
