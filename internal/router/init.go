package router

import (
	"github.com/oksasatya/go-attendance-auth/internal/container"
	"github.com/oksasatya/go-attendance-auth/internal/router/modules"
)

// InitModules registers every feature module built by c.
// Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	r.Add(modules.NewHealthModule(c.HealthHandler))
	r.Add(modules.NewAuthModule(c.AuthHandler, c.JWT, c.Limit))
	r.Add(modules.NewAdminModule(c.AuthHandler, c.AdminHandler, c.JWT, c.Limit))
	r.Add(modules.NewProfileModule(c.ProfileHandler, c.JWT, c.Limit))
	r.Add(modules.NewAttendanceModule(c.AttendanceHandler, c.JWT, c.Limit))

	if c.Config.MetricsEnabled && c.Registry != nil {
		r.AddRoot(modules.NewDebugModule(c.Metrics.Handler()))
	}
}
