package api

import (
	"net/http"
	"time"

	"github.com/cccbbbaaaa/culture-china/internal/auth"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请输入账号和密码 / Username and password are required"})
		return
	}

	principal, err := h.Authenticator.Verify(req.Username, req.Password)
	if err != nil {
		h.log.Warn().Str("username", req.Username).Msg("Admin login rejected")
		h.fail(c, err)
		return
	}
	token, expires, err := h.Tokens.Issue(principal)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.setSessionCookie(c, token, int(time.Until(expires).Seconds()))
	h.log.Info().Str("username", principal.Username).Str("role", string(principal.Role)).Msg("Admin logged in")
	c.JSON(http.StatusOK, gin.H{
		"username":   principal.Username,
		"role":       principal.Role,
		"expires_at": expires,
		"redirect":   principal.Role.LandingPath(),
	})
}

func (h *Handler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Session reports who the cookie belongs to.
func (h *Handler) Session(c *gin.Context) {
	p, _ := auth.FromContext(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"username":   p.Username,
		"role":       p.Role,
		"scopes":     p.Role.Scopes(),
		"expires_at": p.ExpiresAt,
	})
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, value, maxAge, "/", "", h.cfg.IsProduction(), true)
}
