package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/danielpatrickdp/chatpls/internal/gameplay"
	"github.com/danielpatrickdp/chatpls/internal/hub"
	"github.com/danielpatrickdp/chatpls/internal/levels"
	"github.com/danielpatrickdp/chatpls/internal/store"
)

// Server exposes a session over HTTP and pushes view updates over websocket.
type Server struct {
	Router  http.Handler
	session *gameplay.Session
	hub     *hub.Hub
	store   *store.Store
	cancel  func()
}

// New wires the routes. st may be nil, in which case /api/rounds answers 404.
// The hub must be running.
func New(sess *gameplay.Session, h *hub.Hub, st *store.Store) *Server {
	s := &Server{session: sess, hub: h, store: st}
	s.cancel = sess.Subscribe(func(v gameplay.Views) {
		h.Broadcast("views", v)
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/ws", h.ServeWS)
	mux.HandleFunc("/api/scenario", s.handleScenario)
	mux.HandleFunc("/api/answer", s.handleAnswer)
	mux.HandleFunc("/api/reset", s.handleReset)
	mux.HandleFunc("/api/views", s.handleViews)
	mux.HandleFunc("/api/levels", s.handleLevels)
	mux.HandleFunc("/api/levels/validate", s.handleValidate)
	mux.HandleFunc("/api/rounds", s.handleRounds)

	s.Router = withCORS(mux)
	return s
}

// Close stops forwarding session updates to the hub.
func (s *Server) Close() {
	s.cancel()
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ScenarioRequest loads a built-in scenario by id or an inline one.
type ScenarioRequest struct {
	ScenarioID string                   `json:"scenario_id,omitempty"`
	Scenario   *gameplay.ScenarioConfig `json:"scenario,omitempty"`
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req ScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	var sc gameplay.ScenarioConfig
	switch {
	case req.Scenario != nil:
		if req.Scenario.ID == "" {
			writeError(w, http.StatusBadRequest, "scenario id is required")
			return
		}
		sc = *req.Scenario
	case req.ScenarioID == "" || req.ScenarioID == gameplay.DemoGreetingScenario().ID:
		sc = gameplay.DemoGreetingScenario()
	default:
		writeError(w, http.StatusNotFound, "unknown scenario "+req.ScenarioID)
		return
	}

	s.session.LoadScenario(sc)
	writeJSON(w, http.StatusOK, s.session.Views())
}

// AnswerRequest submits a player answer.
type AnswerRequest struct {
	Answer  string `json:"answer"`
	ModelID string `json:"model_id,omitempty"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	res, err := s.session.SubmitAnswer(r.Context(), req.Answer, req.ModelID)
	switch {
	case errors.Is(err, gameplay.ErrNoScenarioLoaded):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, gameplay.ErrScorerFailure):
		log.Printf("[SERVER] answer: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	s.session.Reset()
	writeJSON(w, http.StatusOK, s.session.Views())
}

func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.session.Views())
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	if id := r.URL.Query().Get("id"); id != "" {
		sc, ok := levels.ByID(id)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown level "+id)
			return
		}
		writeJSON(w, http.StatusOK, sc)
		return
	}
	writeJSON(w, http.StatusOK, levels.Registry())
}

// ValidateResponse lists every structural problem of a level scenario.
type ValidateResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var sc levels.LevelScenario
	if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	errs := levels.Validate(sc)
	if errs == nil {
		errs = []string{}
	}
	writeJSON(w, http.StatusOK, ValidateResponse{Valid: len(errs) == 0, Errors: errs})
}

func (s *Server) handleRounds(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	if s.store == nil {
		writeError(w, http.StatusNotFound, "round ledger disabled")
		return
	}

	q := r.URL.Query()
	if id := q.Get("id"); id != "" {
		rec, err := s.store.GetRound(r.Context(), id)
		if errors.Is(err, store.ErrRoundNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, rec)
		return
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	recs, err := s.store.ListRounds(r.Context(), q.Get("scenario_id"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []store.RoundRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}
