package api

import (
	"errors"
	"net/http"

	"github.com/shortsmith/shortsmith/internal/generate"
	"github.com/shortsmith/shortsmith/internal/rewrite"
	"github.com/shortsmith/shortsmith/internal/score"
	"github.com/shortsmith/shortsmith/internal/script"
)

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Score ---

type scoreRequest struct {
	Script script.Script `json:"script"`
}

type scoreResponse struct {
	Result  resultJSON `json:"result"`
	Summary string     `json:"summary"`
	Weakest string     `json:"weakest"`
}

type resultJSON struct {
	Total     int `json:"total"`
	Hook      int `json:"hook"`
	Question  int `json:"question"`
	Emotion   int `json:"emotion"`
	Curiosity int `json:"curiosity"`
	Variation int `json:"variation"`
	Duration  int `json:"duration"`
	CTA       int `json:"cta"`
}

func toResultJSON(r score.Result) resultJSON {
	return resultJSON{
		Total:     r.Total,
		Hook:      r.Hook,
		Question:  r.Question,
		Emotion:   r.Emotion,
		Curiosity: r.Curiosity,
		Variation: r.Variation,
		Duration:  r.Duration,
		CTA:       r.CTA,
	}
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	res, err := score.Score(req.Script)
	if err != nil {
		writeError(w, http.StatusBadRequest, "scoring: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, scoreResponse{
		Result:  toResultJSON(res),
		Summary: res.Summary(),
		Weakest: res.Weakest().String(),
	})
}

// --- Rewrite ---

type rewriteRequest struct {
	Script       script.Script `json:"script"`
	Topic        string        `json:"topic"`
	LanguageMode string        `json:"language_mode,omitempty"`
	BlockedHooks []string      `json:"blocked_hooks,omitempty"`
}

type rewriteResponse struct {
	Script script.Script `json:"script"`
	Before resultJSON    `json:"before"`
	After  resultJSON    `json:"after"`
	NoOp   bool          `json:"noop"`
}

func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	var req rewriteRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	before, err := score.Score(req.Script)
	if err != nil {
		writeError(w, http.StatusBadRequest, "scoring: "+err.Error())
		return
	}

	rw := rewrite.New(s.provider, req.Topic, req.LanguageMode)
	for _, h := range req.BlockedHooks {
		rw.Blocked[script.Signature(h)] = true
	}
	out, noop, err := rw.Rewrite(r.Context(), req.Script, before)
	if err != nil {
		if errors.Is(err, rewrite.ErrProviderUnavailable) {
			writeError(w, http.StatusBadGateway, "rewrite provider unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "rewriting: "+err.Error())
		return
	}

	after, err := score.Score(out)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "rescoring: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rewriteResponse{
		Script: out,
		Before: toResultJSON(before),
		After:  toResultJSON(after),
		NoOp:   noop,
	})
}

// --- Generate ---

type generateRequest struct {
	Channel      string `json:"channel"`
	Topic        string `json:"topic"`
	LanguageMode string `json:"language_mode,omitempty"`
	MaxScenes    int    `json:"max_scenes,omitempty"`
}

type generateResponse struct {
	Script   script.Script `json:"script"`
	Result   resultJSON    `json:"result"`
	FromBank bool          `json:"from_bank"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.Topic == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}

	out, err := s.source.Generate(r.Context(), generate.Request{
		Channel:      req.Channel,
		Topic:        req.Topic,
		LanguageMode: req.LanguageMode,
		MaxScenes:    req.MaxScenes,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "generating: "+err.Error())
		return
	}

	res, err := score.Score(out.Script)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "scoring: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Script:   out.Script,
		Result:   toResultJSON(res),
		FromBank: out.FromBank,
	})
}
