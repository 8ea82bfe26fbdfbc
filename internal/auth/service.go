package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/mail"
	"os"
	"strings"
	"time"
)

var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrEmailTaken         = errors.New("an account with that email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Service struct {
	repo   *FileRepo
	events *Bus

	logger *log.Logger

	cookieName   string
	sessionTTL   time.Duration
	minPassword  int
	secureCookie bool
}

func NewService(repo *FileRepo, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		repo:        repo,
		events:      NewBus(),
		logger:      logger,
		cookieName:  "mytasks_session",
		sessionTTL:  7 * 24 * time.Hour,
		minPassword: 6,
	}
}

// Events exposes the sign-in/sign-out bus so app state can subscribe on init
// and unsubscribe on teardown.
func (s *Service) Events() *Bus {
	return s.events
}

// SetSessionTTL overrides the default session lifetime. Zero or negative
// values are ignored.
func (s *Service) SetSessionTTL(d time.Duration) {
	if d > 0 {
		s.sessionTTL = d
	}
}

// SetSecureCookie forces the Secure flag on session cookies regardless of
// the request scheme. Used behind TLS-terminating proxies that do not set
// X-Forwarded-Proto.
func (s *Service) SetSecureCookie(force bool) {
	s.secureCookie = force
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return ErrInvalidEmail
	}
	if strings.ToLower(addr.Address) != email {
		return ErrInvalidEmail
	}
	return nil
}

func newSalt() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func hashPassword(salt, password string) string {
	sum := sha256.Sum256([]byte(salt + ":" + password))
	return hex.EncodeToString(sum[:])
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateToken() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}

// Register creates an account and immediately opens a session for it, the
// way the client's create-account tab signs the user in on success.
func (s *Service) Register(email, password, deviceID string, now time.Time) (User, string, time.Time, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return User{}, "", time.Time{}, err
	}
	if len(password) < s.minPassword {
		return User{}, "", time.Time{}, ErrWeakPassword
	}
	if _, exists := s.repo.GetUserByEmail(email); exists {
		return User{}, "", time.Time{}, ErrEmailTaken
	}

	salt := newSalt()
	u := User{
		ID:           newID("usr"),
		Email:        email,
		PasswordSalt: salt,
		PasswordHash: hashPassword(salt, password),
		CreatedAt:    now,
	}
	if err := s.repo.CreateUser(u); err != nil {
		return User{}, "", time.Time{}, err
	}
	return s.openSession(u, deviceID, now)
}

// SignIn verifies credentials and opens a session. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Service) SignIn(email, password, deviceID string, now time.Time) (User, string, time.Time, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return User{}, "", time.Time{}, err
	}

	u, ok := s.repo.GetUserByEmail(email)
	if !ok || hashPassword(u.PasswordSalt, password) != u.PasswordHash {
		return User{}, "", time.Time{}, ErrInvalidCredentials
	}
	return s.openSession(u, deviceID, now)
}

func (s *Service) openSession(u User, deviceID string, now time.Time) (User, string, time.Time, error) {
	token, err := generateToken()
	if err != nil {
		return User{}, "", time.Time{}, err
	}

	exp := now.Add(s.sessionTTL)
	sess := Session{
		ID:        newID("sess"),
		UserID:    u.ID,
		DeviceID:  deviceID,
		TokenHash: hashToken(token),
		CreatedAt: now,
		LastSeen:  now,
		ExpiresAt: exp,
	}
	if err := s.repo.CreateSession(sess); err != nil {
		return User{}, "", time.Time{}, err
	}

	s.events.publish(Event{Type: EventSignedIn, UserID: u.ID, DeviceID: deviceID})
	return u, token, exp, nil
}

func (s *Service) AuthenticateRequest(r *http.Request, now time.Time) (User, Session, bool) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return User{}, Session{}, false
	}

	sess, ok := s.repo.GetSessionByTokenHash(hashToken(cookie.Value))
	if !ok {
		return User{}, Session{}, false
	}

	if now.After(sess.ExpiresAt) {
		_ = s.repo.DeleteSessionByID(sess.ID)
		return User{}, Session{}, false
	}

	u, ok := s.repo.GetUserByID(sess.UserID)
	if !ok {
		_ = s.repo.DeleteSessionByID(sess.ID)
		return User{}, Session{}, false
	}

	// Best-effort last-seen update, throttled to reduce writes.
	if now.Sub(sess.LastSeen) >= 5*time.Minute {
		_ = s.repo.TouchSession(sess.ID, now)
		sess.LastSeen = now
	}

	return u, sess, true
}

// SignOutRequest revokes the request's session, if any, and publishes the
// sign-out event for the session's device.
func (s *Service) SignOutRequest(r *http.Request) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return
	}
	sess, _ := s.repo.DeleteSessionByTokenHash(hashToken(cookie.Value))
	if sess.UserID != "" {
		s.events.publish(Event{Type: EventSignedOut, UserID: sess.UserID, DeviceID: sess.DeviceID})
	}
}

func (s *Service) shouldUseSecureCookie(r *http.Request) bool {
	if s.secureCookie {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("MYTASKS_COOKIE_SECURE"))) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https")
}

func (s *Service) SetSessionCookie(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   s.shouldUseSecureCookie(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Service) ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.shouldUseSecureCookie(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Service) RequireAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, sess, ok := s.AuthenticateRequest(r, time.Now())
		if !ok {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "unauthorized"})
			return
		}
		ctx := withSessionContext(withUserContext(r.Context(), u), sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
