package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zaqqye/room_console/internal/middleware"
	"github.com/zaqqye/room_console/internal/models"
	"github.com/zaqqye/room_console/internal/utils"
)

type AuthController struct {
	Sessions *middleware.SessionManager
	// PasswordHash is a bcrypt hash; empty means no password is asked for.
	PasswordHash string
	Logger       *zap.Logger
}

type loginRequest struct {
	Name     string `form:"name"`
	Phone    string `form:"phone"`
	Line     string `form:"line"`
	Password string `form:"password"`
}

func (a *AuthController) LoginPage(c *gin.Context) {
	if _, ok := a.Sessions.Read(c); ok {
		c.Redirect(http.StatusFound, "/rooms")
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{"Title": "Sign in"})
}

func (a *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.HTML(http.StatusBadRequest, "login.html", gin.H{"Title": "Sign in", "Error": "Invalid form."})
		return
	}
	admin := models.AdminSession{
		Name:  strings.TrimSpace(req.Name),
		Phone: strings.TrimSpace(req.Phone),
		Line:  strings.TrimSpace(req.Line),
	}
	if admin.Name == "" {
		c.HTML(http.StatusBadRequest, "login.html", gin.H{"Title": "Sign in", "Error": "Admin name is required."})
		return
	}
	if a.PasswordHash != "" && !utils.CheckPassword(a.PasswordHash, req.Password) {
		a.Logger.Info("login rejected", zap.String("admin", admin.Name))
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{"Title": "Sign in", "Error": "Invalid credentials."})
		return
	}
	if err := a.Sessions.Write(c, admin); err != nil {
		a.Logger.Error("write session", zap.Error(err))
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{"Title": "Sign in", "Error": "Could not start the session."})
		return
	}
	c.Redirect(http.StatusFound, "/rooms")
}

func (a *AuthController) Logout(c *gin.Context) {
	a.Sessions.Clear(c)
	c.Redirect(http.StatusFound, middleware.LoginPath)
}
