package dashboard

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/agilebiz/agileai/internal/agent"
	"github.com/agilebiz/agileai/internal/backlog"
	"github.com/agilebiz/agileai/internal/hook"
	"github.com/agilebiz/agileai/internal/notify"
	"github.com/agilebiz/agileai/internal/state"
)

// maxBodyBytes caps request bodies. Hook payloads and state patches are
// small JSON documents; anything beyond this is a client mistake.
const maxBodyBytes = 1 << 20

type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, msg string) {
	s.writeJSON(w, status, apiError{Error: msg, Code: code})
}

// writeDomainError maps store errors onto the API taxonomy. Messages come
// from the domain packages and never contain filesystem paths.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var validation *hook.ValidationError
	var personaErr *agent.ValidationError
	switch {
	case errors.Is(err, hook.ErrHookNotFound),
		errors.Is(err, backlog.ErrItemNotFound),
		errors.Is(err, state.ErrUnknownKind),
		errors.Is(err, agent.ErrPersonaNotFound):
		s.writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, backlog.ErrTerminalStatus):
		s.writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, hook.ErrHookDisabled):
		s.writeError(w, http.StatusConflict, "hook_disabled", err.Error())
	case errors.As(err, &validation), errors.As(err, &personaErr):
		s.writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, backlog.ErrInvalidInput):
		s.writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	default:
		s.logger.Error("internal error", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

// decodeBody decodes a JSON request body into v, enforcing the size cap.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_body", "could not read request body")
		return false
	}
	if len(body) == 0 {
		s.writeError(w, http.StatusBadRequest, "invalid_body", "request body is empty")
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return false
	}
	return true
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- hooks ---

func (s *Server) handleHookConfigGet(w http.ResponseWriter, _ *http.Request) {
	_, cfg, err := s.hooks.Load()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleHookConfigPut(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if !s.decodeBody(w, r, &patch) {
		return
	}

	cfg, err := s.hooks.Patch(patch)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.bus.Publish(notify.Event{Type: notify.EventConfigChanged})
	s.writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleHookRegistry(w http.ResponseWriter, _ *http.Request) {
	reg, _, err := s.hooks.Load()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, reg)
}

func (s *Server) handleHookPerformance(w http.ResponseWriter, _ *http.Request) {
	agg, err := s.metrics.Aggregate()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"hooks": agg})
}

func (s *Server) handleHookTest(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "hookName")

	reg, cfg, err := s.hooks.Load()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	h, err := reg.Get(name)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_body", "could not read request body")
		return
	}
	if len(payload) > 0 && !json.Valid(payload) {
		s.writeError(w, http.StatusBadRequest, "invalid_json", "payload is not valid JSON")
		return
	}

	runner := hook.NewRunner(cfg, s.metrics, s.bus)
	result, err := runner.Run(r.Context(), h, payload)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if result.TimedOut {
		s.writeJSON(w, http.StatusRequestTimeout, result)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// --- improvements ---

func (s *Server) handleImprovementsList(w http.ResponseWriter, r *http.Request) {
	filter := backlog.Filter{
		Status:   r.URL.Query().Get("status"),
		Priority: r.URL.Query().Get("priority"),
	}
	items, err := s.items.List(filter)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleImprovementsAdd(w http.ResponseWriter, r *http.Request) {
	var draft backlog.Draft
	if !s.decodeBody(w, r, &draft) {
		return
	}
	item, err := s.items.Add(draft)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.bus.Publish(notify.Event{
		Type: notify.EventBacklogChange,
		Data: map[string]any{"id": item.ID, "action": "added"},
	})
	s.writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleImprovementGet(w http.ResponseWriter, r *http.Request) {
	item, err := s.items.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleImprovementPatch(w http.ResponseWriter, r *http.Request) {
	var patch backlog.Patch
	if !s.decodeBody(w, r, &patch) {
		return
	}
	item, err := s.items.Update(chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.bus.Publish(notify.Event{
		Type: notify.EventBacklogChange,
		Data: map[string]any{"id": item.ID, "action": "updated"},
	})
	s.writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleImprovementDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.items.Remove(id); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.bus.Publish(notify.Event{
		Type: notify.EventBacklogChange,
		Data: map[string]any{"id": id, "action": "removed"},
	})
	w.WriteHeader(http.StatusNoContent)
}

// --- project state ---

func (s *Server) handleStateGet(w http.ResponseWriter, r *http.Request) {
	kind, err := state.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	doc, err := s.states.Get(kind)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleStatePut(w http.ResponseWriter, r *http.Request) {
	kind, err := state.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	var patch state.Document
	if !s.decodeBody(w, r, &patch) {
		return
	}
	doc, err := s.states.Merge(kind, patch)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.bus.Publish(notify.Event{
		Type: notify.EventStateChanged,
		Data: map[string]any{"kind": string(kind)},
	})
	s.writeJSON(w, http.StatusOK, doc)
}

// --- agents ---

// agentSummary is the list-view shape for a persona.
type agentSummary struct {
	Name   string   `json:"name"`
	Title  string   `json:"title"`
	Tags   []string `json:"tags,omitempty"`
	Source string   `json:"source"`
}

func (s *Server) handleAgentsList(w http.ResponseWriter, _ *http.Request) {
	personas, stats, err := s.agents.List()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	summaries := make([]agentSummary, 0, len(personas))
	for _, p := range personas {
		summaries = append(summaries, agentSummary{
			Name:   p.Name,
			Title:  p.Title,
			Tags:   p.Tags,
			Source: p.Source,
		})
	}
	// total counts the personas served, matching the CLI and MCP list
	// shapes; skipped counts workspace files that failed to parse.
	s.writeJSON(w, http.StatusOK, map[string]any{
		"agents":  summaries,
		"total":   len(summaries),
		"skipped": stats.Skipped,
	})
}

func (s *Server) handleAgentGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.agents.Get(chi.URLParam(r, "name"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}
