package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Sternrassler/flickr-client/pkg/client"
	"github.com/Sternrassler/flickr-client/pkg/metrics"
	"github.com/Sternrassler/flickr-client/pkg/oauth"
	scs "github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Session keys of the pending OAuth exchange.
const (
	sessTempToken  = "oauth_temp_token"
	sessTempSecret = "oauth_temp_secret"
)

const requestTimeout = 30 * time.Second

type server struct {
	router *chi.Mux
	client *client.Client
	sess   *scs.SessionManager
}

func newSessionManager() *scs.SessionManager {
	sess := scs.New()
	sess.Lifetime = 15 * time.Minute
	sess.Cookie.Name = "flickr_proxy_session"
	sess.Cookie.HttpOnly = true
	sess.Cookie.SameSite = http.SameSiteLaxMode
	return sess
}

func newServer(c *client.Client, sess *scs.SessionManager, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	s := &server{router: r, client: c, sess: sess}

	r.Use(chimw.RealIP)
	r.Use(hlog.NewHandler(logger.With().Str("component", "flickr-proxy").Logger()))
	r.Use(requestID)
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("http_method", r.Method).
			Str("path", r.URL.Path).
			Int("status_code", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request served")
	}))
	r.Use(chimw.Recoverer)

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/rest/{method}", s.handleREST)
	r.Post("/rest/{method}", s.handleREST)

	r.Group(func(ar chi.Router) {
		ar.Use(sess.LoadAndSave)
		ar.Get("/auth/login", s.handleLogin)
		ar.Get("/auth/callback", s.handleCallback)
	})

	return r
}

// requestID tags the request logger and response with an X-Request-Id,
// keeping one supplied by the caller.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("request_id", id)
		})
		next.ServeHTTP(w, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleREST passes query and form values to the named method. nocache=1
// bypasses the response cache.
func (s *server) handleREST(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("request", err.Error(), 0))
		return
	}

	method := chi.URLParam(r, "method")
	bypass := r.Form.Get("nocache") == "1"
	params := make(client.Params, len(r.Form))
	for key := range r.Form {
		switch key {
		case "nocache", "method", "api_key", "format", "nojsoncallback":
			continue
		}
		params[key] = r.Form.Get(key)
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	resp, err := s.client.Request(ctx, method, params, bypass)
	if err != nil {
		status, body := errorResponse(err)
		hlog.FromRequest(r).Debug().Err(err).Str("method", method).Int("status_code", status).Msg("Proxied call failed")
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	perm := r.URL.Query().Get("perm")
	if perm == "" {
		perm = oauth.PermRead
	}

	authURL, temp, err := s.client.Consumer().AuthorizationURL(r.Context(), perm, callbackURL(r))
	if err != nil {
		if errors.Is(err, oauth.ErrInvalidPerm) {
			writeJSON(w, http.StatusBadRequest, errorBody(string(client.ErrorClassAuth), err.Error(), 0))
			return
		}
		hlog.FromRequest(r).Error().Err(err).Msg("Authorization URL request failed")
		writeJSON(w, handshakeStatus(err), errorBody(string(client.ErrorClassAuth), err.Error(), 0))
		return
	}

	s.sess.Put(r.Context(), sessTempToken, temp.Token)
	s.sess.Put(r.Context(), sessTempSecret, temp.Secret)
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (s *server) handleCallback(w http.ResponseWriter, r *http.Request) {
	temp := oauth.Token{
		Token:  s.sess.GetString(r.Context(), sessTempToken),
		Secret: s.sess.GetString(r.Context(), sessTempSecret),
	}
	if temp.Token == "" {
		writeJSON(w, http.StatusBadRequest, errorBody(string(client.ErrorClassAuth), "no pending authorization", 0))
		return
	}
	query := r.URL.Query()
	if got := query.Get("oauth_token"); got != "" && got != temp.Token {
		writeJSON(w, http.StatusBadRequest, errorBody(string(client.ErrorClassAuth), "oauth_token does not match the pending authorization", 0))
		return
	}

	token, err := s.client.Consumer().ExchangeVerifier(r.Context(), temp, query.Get("oauth_verifier"))
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Verifier exchange failed")
		writeJSON(w, handshakeStatus(err), errorBody(string(client.ErrorClassAuth), err.Error(), 0))
		return
	}

	s.sess.Remove(r.Context(), sessTempToken)
	s.sess.Remove(r.Context(), sessTempSecret)
	_ = s.sess.RenewToken(r.Context())

	writeJSON(w, http.StatusOK, map[string]any{
		"stat":      "ok",
		"user_nsid": token.Extra["user_nsid"],
		"username":  token.Extra["username"],
		"fullname":  token.Extra["fullname"],
	})
}

func callbackURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/auth/callback"
}

// errorResponse maps an error to the HTTP status and Flickr-style body
// returned to proxy callers.
func errorResponse(err error) (int, map[string]any) {
	// Deadlines surface wrapped in a TransportError or AuthError.
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, errorBody("timeout", err.Error(), 0)
	}
	class := client.Classify(err)
	switch class {
	case client.ErrorClassService:
		code, _ := client.ServiceCode(err)
		var se *client.ServiceError
		msg := err.Error()
		if errors.As(err, &se) {
			msg = se.Message
		}
		status := http.StatusBadRequest
		if code == 1 {
			status = http.StatusNotFound
		}
		return status, errorBody(string(class), msg, code)
	case client.ErrorClassAuth:
		return http.StatusUnauthorized, errorBody(string(class), err.Error(), 0)
	case client.ErrorClassDecode, client.ErrorClassTransport:
		return http.StatusBadGateway, errorBody(string(class), err.Error(), 0)
	}
	return http.StatusInternalServerError, errorBody("internal", err.Error(), 0)
}

// handshakeStatus is the status for a failed request to the OAuth endpoints.
func handshakeStatus(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func errorBody(class, message string, code int) map[string]any {
	body := map[string]any{"stat": "fail", "class": class, "message": message}
	if code != 0 {
		body["code"] = code
	}
	return body
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
