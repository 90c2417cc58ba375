package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"

	"github.com/cryptodevs/whitelist-dapp/internal/view"
	"github.com/gorilla/mux"
	"github.com/nu7hatch/gouuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const sessionCookie = "whitelist_session"

//go:embed templates/index.html
var templates embed.FS

//go:embed static
var static embed.FS

var page = template.Must(template.ParseFS(templates, "templates/index.html"))

type session struct {
	controller *view.Controller

	mu      sync.Mutex
	alerted *view.Failure
}

// alert returns the message of a blocking failure the first time it is seen.
func (s *session) alert(state view.State) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := state.Failure
	if f == nil || !f.Blocking || f == s.alerted {
		return ""
	}
	s.alerted = f

	return f.Message
}

type Server struct {
	sessions      *cache.Cache
	newController func() *view.Controller
	autoConnect   bool
}

func NewServer(sessions *cache.Cache, newController func() *view.Controller, autoConnect bool) *Server {
	return &Server{sessions, newController, autoConnect}
}

type pageData struct {
	State   view.State
	Control string
	Alert   string
}

type stateResponse struct {
	view.State
	Control view.Control `json:"control"`
	Error   string       `json:"error,omitempty"`
}

func (s *Server) Router() *mux.Router {
	assets, _ := fs.Sub(static, "static")

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleHomepage).Methods("GET")
	r.HandleFunc("/connect", s.handleConnect).Methods("POST")
	r.HandleFunc("/join", s.handleJoin).Methods("POST")
	r.HandleFunc("/dismiss", s.handleDismiss).Methods("POST")
	r.HandleFunc("/api/state", s.handleState).Methods("GET")
	r.HandleFunc("/health", handleHealth).Methods("GET")
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(assets)))).Methods("GET")
	r.NotFoundHandler = notFoundHandler()

	return r
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session, bool) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if found, ok := s.sessions.Get(cookie.Value); ok {
			s.sessions.SetDefault(cookie.Value, found)
			return found.(*session), false
		}
	}

	u, _ := uuid.NewV4()
	id := u.String()
	sess := &session{controller: s.newController()}
	s.sessions.SetDefault(id, sess)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	zap.L().With(zap.String("session", id)).Debug("Web: new session")

	return sess, true
}

// background detaches work that outlives the request, like the refreshes after a connect.
func background(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func (s *Server) handleHomepage(w http.ResponseWriter, r *http.Request) {
	sess, created := s.session(w, r)
	if created && s.autoConnect {
		if err := sess.controller.OnConnect(background(r)); err == nil {
			sess.controller.WaitRefresh()
		}
	}

	state := sess.controller.State()
	data := pageData{
		State:   state,
		Control: view.Render(state).String(),
		Alert:   sess.alert(state),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Execute(w, data); err != nil {
		zap.L().With(zap.Error(err)).Error("Web: failed to render page")
	}
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.session(w, r)
	err := sess.controller.OnConnect(background(r))
	if err == nil {
		sess.controller.WaitRefresh()
	}
	s.respond(w, r, sess, err)
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.session(w, r)
	err := sess.controller.StartJoin(background(r))
	s.respond(w, r, sess, err)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.session(w, r)
	sess.controller.Dismiss()
	s.respond(w, r, sess, nil)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.session(w, r)
	writeState(w, http.StatusOK, sess.controller.State(), nil)
}

// respond redirects browsers back to the page and answers API clients with the state.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, sess *session, err error) {
	if r.Header.Get("Accept") != "application/json" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	status := http.StatusOK
	var failure *view.Failure
	switch {
	case err == nil:
	case errors.Is(err, view.ErrJoinInFlight), errors.Is(err, view.ErrAlreadyJoined):
		status = http.StatusConflict
	case errors.Is(err, view.ErrNotConnected):
		status = http.StatusPreconditionFailed
	case errors.As(err, &failure):
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}

	writeState(w, status, sess.controller.State(), err)
}

func writeState(w http.ResponseWriter, status int, state view.State, err error) {
	resp := stateResponse{State: state, Control: view.Render(state)}
	if err != nil {
		resp.Error = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		zap.L().With(zap.Error(err)).Warn("Web: failed to write state")
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprintf(w, "Page not found")
	})
}
