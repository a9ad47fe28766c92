package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/zaqqye/room_console/internal/models"
)

const (
	SessionCookie = "console_session"
	LoginPath     = "/login"
	adminKey      = "admin"
)

type SessionConfig struct {
	Secret    string
	ExpiresIn time.Duration
	Secure    bool
}

type SessionClaims struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Line  string `json:"line,omitempty"`
	jwt.RegisteredClaims
}

// SessionManager keeps the admin identity in a signed cookie. Nothing is
// stored server side; logout is dropping the cookie.
type SessionManager struct {
	cfg SessionConfig
}

func NewSessionManager(cfg SessionConfig) *SessionManager {
	if cfg.ExpiresIn <= 0 {
		cfg.ExpiresIn = 12 * time.Hour
	}
	return &SessionManager{cfg: cfg}
}

func (m *SessionManager) Sign(admin models.AdminSession, now time.Time) (string, error) {
	if strings.TrimSpace(admin.Name) == "" {
		return "", errors.New("admin name is required")
	}
	claims := SessionClaims{
		Name:  admin.Name,
		Phone: admin.Phone,
		Line:  admin.Line,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.ExpiresIn)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.cfg.Secret))
}

func (m *SessionManager) Parse(tokenStr string) (models.AdminSession, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(m.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return models.AdminSession{}, errors.New("invalid session")
	}
	return models.AdminSession{Name: claims.Name, Phone: claims.Phone, Line: claims.Line}, nil
}

// Write stores admin in the session cookie.
func (m *SessionManager) Write(c *gin.Context, admin models.AdminSession) error {
	tokenStr, err := m.Sign(admin, time.Now())
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, tokenStr, int(m.cfg.ExpiresIn.Seconds()), "/", "", m.cfg.Secure, true)
	return nil
}

// Read returns the admin in the request's cookie. An absent or empty name
// means no session.
func (m *SessionManager) Read(c *gin.Context) (models.AdminSession, bool) {
	tokenStr, err := c.Cookie(SessionCookie)
	if err != nil || tokenStr == "" {
		return models.AdminSession{}, false
	}
	admin, err := m.Parse(tokenStr)
	if err != nil || admin.Name == "" {
		return models.AdminSession{}, false
	}
	return admin, true
}

// Clear drops all session state.
func (m *SessionManager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", m.cfg.Secure, true)
}

// SessionGate lets a request through only with an admin session. Pages are
// redirected to the login page; websocket and API calls get 401.
func SessionGate(m *SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == LoginPath {
			c.Next()
			return
		}
		admin, ok := m.Read(c)
		if !ok {
			if wantsJSON(c) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}
		c.Set(adminKey, admin)
		c.Next()
	}
}

func wantsJSON(c *gin.Context) bool {
	path := c.Request.URL.Path
	if path == "/ws" || strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/pages/") {
		return true
	}
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}

// CurrentAdmin is the admin stored by SessionGate.
func CurrentAdmin(c *gin.Context) models.AdminSession {
	if v, ok := c.Get(adminKey); ok {
		if admin, ok := v.(models.AdminSession); ok {
			return admin
		}
	}
	return models.AdminSession{}
}
