package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/veleth/anima/internal/being"
	"github.com/veleth/anima/internal/gateway"
	"github.com/veleth/anima/internal/memory"
	"github.com/veleth/anima/internal/recall"
	"github.com/veleth/anima/internal/skill"
	"go.uber.org/zap"
)

// Handler holds dependencies for HTTP handlers. The recall index and the
// broadcaster may be nil; their endpoints answer 503 then.
type Handler struct {
	name   string
	sched  *being.Scheduler
	vitals *being.Vitals
	loop   *being.Loop
	mem    *memory.Log
	skills *skill.Registry
	index  *recall.Index
	bc     *gateway.Broadcaster
	nowFn  func() time.Time
	logger *zap.Logger
}

// NewHandler creates a new API handler. nowFn supplies the being's
// current time, which may run faster than the wall clock.
func NewHandler(
	name string,
	sched *being.Scheduler,
	vitals *being.Vitals,
	loop *being.Loop,
	mem *memory.Log,
	skills *skill.Registry,
	index *recall.Index,
	bc *gateway.Broadcaster,
	nowFn func() time.Time,
	logger *zap.Logger,
) *Handler {
	if nowFn == nil {
		nowFn = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		name:   name,
		sched:  sched,
		vitals: vitals,
		loop:   loop,
		mem:    mem,
		skills: skills,
		index:  index,
		bc:     bc,
		nowFn:  nowFn,
		logger: logger,
	}
}

// Router builds the chi router with all routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.healthCheck)

		r.Get("/being/status", h.beingStatus)
		r.Get("/being/vitals", h.beingVitals)
		r.Post("/being/pulse", h.pulse)

		r.Get("/activities", h.listActivities)
		r.Get("/skills", h.listSkills)

		r.Get("/memory/recent", h.recentRecords)
		r.Get("/memory/slots", h.listSlots)
		r.Get("/memory/slots/{key}", h.getSlot)
		r.Get("/memory/search", h.searchMemory)

		r.Post("/suggest", h.suggestTopic)
		r.Get("/announcements", h.listAnnouncements)
	})

	return r
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "being": h.name})
}

func (h *Handler) beingStatus(w http.ResponseWriter, r *http.Request) {
	now := h.nowFn()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"being":     h.name,
		"time":      now.UTC().Format(time.RFC3339),
		"scheduler": h.sched.Snapshot(now),
		"records":   h.mem.Len(),
	})
}

func (h *Handler) beingVitals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.vitals.Snapshot())
}

func (h *Handler) pulse(w http.ResponseWriter, r *http.Request) {
	name, ran := h.loop.PulseNow()
	resp := map[string]interface{}{
		"ran":  ran,
		"time": h.nowFn().UTC().Format(time.RFC3339),
	}
	if ran {
		resp["activity"] = name
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sched.Specs())
}

func (h *Handler) listSkills(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.skills.Snapshot())
}

func (h *Handler) recentRecords(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	writeJSON(w, http.StatusOK, h.mem.Recent(limit))
}

func (h *Handler) listSlots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.mem.Slots())
}

func (h *Handler) getSlot(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value, ok := h.mem.Retrieve(key)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "slot not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"key": key, "value": value})
}

func (h *Handler) searchMemory(w http.ResponseWriter, r *http.Request) {
	if h.index == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "recall not initialized"})
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "q is required"})
		return
	}
	hits, err := h.index.Search(r.Context(), query, queryInt(r, "limit", 5))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, hits)
}

type suggestRequest struct {
	Topic string `json:"topic"`
}

func (h *Handler) suggestTopic(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Topic == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "topic is required"})
		return
	}
	h.mem.Store(r.Context(), memory.SlotResearchTopic, req.Topic)
	h.logger.Info("research topic suggested", zap.String("topic", req.Topic))
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "suggested",
		"topic":  req.Topic,
	})
}

func (h *Handler) listAnnouncements(w http.ResponseWriter, r *http.Request) {
	if h.bc == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "gateway not initialized"})
		return
	}
	writeJSON(w, http.StatusOK, h.bc.History(queryInt(r, "limit", 20)))
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
