package handler

import (
	"net/http"

	"Connectify/middleware"
	midsec "Connectify/middleware/security"
	"Connectify/module/user/service"
	"Connectify/tools/errs"

	"github.com/gin-gonic/gin"
)

// Auth exposes the identity collaborator over REST.
type Auth struct {
	Service *service.Auth
}

func NewAuth(s *service.Auth) *Auth {
	return &Auth{Service: s}
}

type registerReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Avatar   string `json:"avatar"`
}

// POST /api/auth/register
func (h *Auth) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, errs.Validation("invalid request body"))
		return
	}
	u, token, err := h.Service.Register(c.Request.Context(), req.Username, req.Password, req.Avatar)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	middleware.OK(c, http.StatusCreated, "Registered successfully", gin.H{
		"token": token,
		"user":  u.Summary(),
	})
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/auth/login
func (h *Auth) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, errs.Validation("invalid request body"))
		return
	}
	u, token, err := h.Service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	middleware.OK(c, http.StatusOK, "Logged in successfully", gin.H{
		"token": token,
		"user":  u.Summary(),
	})
}

// POST /api/auth/logout
func (h *Auth) Logout(c *gin.Context) {
	token := midsec.BearerToken(c.GetHeader("Authorization"))
	if err := h.Service.Logout(c.Request.Context(), midsec.UserID(c), token); err != nil {
		middleware.Fail(c, err)
		return
	}
	middleware.OK(c, http.StatusOK, "Logged out", nil)
}
