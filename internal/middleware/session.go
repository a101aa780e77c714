package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"policymatcher/internal/config"
	"policymatcher/internal/errs"
	"policymatcher/internal/ids"
	"policymatcher/internal/models"
	"policymatcher/internal/repository"
	"policymatcher/internal/security"
)

const sessionKey = "session"

type SessionManager struct {
	store  *repository.SessionStore
	secret string
	cookie string
	secure bool
	log    zerolog.Logger
	now    func() time.Time
}

func NewSessionManager(store *repository.SessionStore, cfg config.SecurityConfig, log zerolog.Logger) *SessionManager {
	return &SessionManager{
		store:  store,
		secret: cfg.SessionSecret,
		cookie: cfg.SessionCookie,
		secure: cfg.SecureCookie,
		log:    log,
		now:    time.Now,
	}
}

// Middleware loads the session named by the cookie, or starts an anonymous
// one when the cookie is missing, tampered with or expired. After the handler
// the session is written back if it holds a principal or flashes, or if a
// stored session changed. Signed-in sessions are rewritten on every request,
// which keeps the TTL sliding. Empty anonymous sessions are never stored.
func (m *SessionManager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, stored := m.load(c)
		c.Set(sessionKey, session)
		m.writeCookie(c, session.ID)

		c.Next()

		current := CurrentSession(c)
		if current == nil {
			return
		}
		keep := current.Authenticated() || len(current.Flashes) > 0 || (stored && current == session && current.Dirty())
		if !keep {
			return
		}
		if err := m.store.Save(c.Request.Context(), current); err != nil {
			m.log.Error().Err(err).Str("request_id", RequestIDFrom(c)).Msg("save session failed")
		}
	}
}

func (m *SessionManager) load(c *gin.Context) (*models.Session, bool) {
	raw, err := c.Cookie(m.cookie)
	if err != nil || raw == "" {
		return models.NewSession(ids.New(), m.now()), false
	}

	id, err := security.ParseSessionToken(raw, m.secret)
	if err != nil || !ids.Valid(id) {
		return models.NewSession(ids.New(), m.now()), false
	}

	session, err := m.store.Load(c.Request.Context(), id)
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			m.log.Warn().Err(err).Msg("load session failed")
		}
		return models.NewSession(ids.New(), m.now()), false
	}
	return session, true
}

// SignIn stores the principal under a fresh session id so a pre-login id
// can never be reused after authentication.
func (m *SessionManager) SignIn(c *gin.Context, principal models.Principal) {
	session := m.rotate(c)
	session.SignIn(principal)
}

// SignOut drops the principal and rotates the id. Flashes added afterwards
// survive into the next request.
func (m *SessionManager) SignOut(c *gin.Context) {
	session := m.rotate(c)
	session.Clear()
}

func (m *SessionManager) rotate(c *gin.Context) *models.Session {
	old := CurrentSession(c)
	fresh := models.NewSession(ids.New(), m.now())
	if old != nil {
		fresh.Flashes = old.Flashes
		if err := m.store.Delete(c.Request.Context(), old.ID); err != nil {
			m.log.Warn().Err(err).Msg("delete rotated session failed")
		}
	}
	c.Set(sessionKey, fresh)
	m.writeCookie(c, fresh.ID)
	return fresh
}

func (m *SessionManager) writeCookie(c *gin.Context, id string) {
	token, err := security.GenerateSessionToken(m.secret, id, m.store.TTL(), m.now())
	if err != nil {
		m.log.Error().Err(err).Msg("sign session cookie failed")
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookie, token, int(m.store.TTL().Seconds()), "/", "", m.secure, true)
}

func CurrentSession(c *gin.Context) *models.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*models.Session)
	return session
}

// CurrentPrincipal returns nil for anonymous requests.
func CurrentPrincipal(c *gin.Context) *models.Principal {
	session := CurrentSession(c)
	if session == nil {
		return nil
	}
	return session.CurrentPrincipal()
}

func AddFlash(c *gin.Context, category models.FlashCategory, message string) {
	if session := CurrentSession(c); session != nil {
		session.AddFlash(category, message)
	}
}

func PopFlashes(c *gin.Context) []models.Flash {
	if session := CurrentSession(c); session != nil {
		return session.PopFlashes()
	}
	return nil
}
