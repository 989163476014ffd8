package middleware

import (
	midsec "Connectify/middleware/security"
	userservice "Connectify/module/user/service"

	"github.com/gin-gonic/gin"
)

type RouteOpt struct {
	IsAuth bool
}

// Router wraps route registration so the auth requirement is declared
// next to each path.
type Router struct {
	Auth *userservice.Auth
}

func (rt *Router) handlers(handler gin.HandlerFunc, opt RouteOpt) []gin.HandlerFunc {
	if opt.IsAuth {
		return []gin.HandlerFunc{midsec.Middleware(rt.Auth), handler}
	}
	return []gin.HandlerFunc{handler}
}

func (rt *Router) GET(r gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt) {
	r.GET(path, rt.handlers(handler, opt)...)
}

func (rt *Router) POST(r gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt) {
	r.POST(path, rt.handlers(handler, opt)...)
}

func (rt *Router) PUT(r gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt) {
	r.PUT(path, rt.handlers(handler, opt)...)
}

func (rt *Router) DELETE(r gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt) {
	r.DELETE(path, rt.handlers(handler, opt)...)
}
