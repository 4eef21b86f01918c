package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/toolrack/pkg/buildinfo"
	"github.com/matzehuels/toolrack/pkg/errors"
	"github.com/matzehuels/toolrack/pkg/observability"
	"github.com/matzehuels/toolrack/pkg/params"
	"github.com/matzehuels/toolrack/pkg/pipeline"
	"github.com/matzehuels/toolrack/pkg/render"
	"github.com/matzehuels/toolrack/pkg/tool"
)

// toolRequest is a tool descriptor as sent by clients. Enabled defaults to
// true when omitted, matching a blank enabled cell in a catalog.
type toolRequest struct {
	Name           string  `json:"name"`
	Row            int     `json:"row"`
	Col            int     `json:"col"`
	HandleDiameter float64 `json:"handle_d_mm"`
	ShaftDiameter  float64 `json:"shaft_d_mm"`
	Enabled        *bool   `json:"enabled,omitempty"`
}

func (t toolRequest) tool(line int) tool.Tool {
	enabled := true
	if t.Enabled != nil {
		enabled = *t.Enabled
	}
	return tool.Tool{
		Name:           t.Name,
		Row:            t.Row,
		Col:            t.Col,
		HandleDiameter: t.HandleDiameter,
		ShaftDiameter:  t.ShaftDiameter,
		Enabled:        enabled,
		Line:           line,
	}
}

// buildRequest is the body of /v1/layout and /v1/plan. Params is an overlay
// on the defaults; lengths and angles may be numbers or unit strings.
type buildRequest struct {
	Tools      []toolRequest  `json:"tools"`
	Params     map[string]any `json:"params,omitempty"`
	Name       string         `json:"name,omitempty"`
	MountStyle string         `json:"mount_style,omitempty"`
	Refresh    bool           `json:"refresh,omitempty"`
}

func (b buildRequest) resolve() ([]tool.Tool, params.Set, error) {
	tools := make([]tool.Tool, len(b.Tools))
	for i, t := range b.Tools {
		tools[i] = t.tool(i + 1)
	}
	p, err := params.Overlay(params.Defaults(), b.Params)
	if err != nil {
		return nil, params.Set{}, err
	}
	return tools, p, nil
}

// apiError is the error body.
type apiError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"definitions": params.Definitions(),
		"defaults":    params.Defaults().Values(),
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	tools, p, err := req.resolve()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.MountStyle != "" {
		p.MountStyle = params.ParseMountStyle(req.MountStyle)
	}
	summary, hit, err := s.runner.Layout(r.Context(), tools, p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	tools, p, err := req.resolve()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), pipeline.Options{
		Tools:      tools,
		Params:     &p,
		MountStyle: req.MountStyle,
		Name:       req.Name,
		Formats:    []string{render.FormatJSON},
		Refresh:    req.Refresh,
		Logger:     s.logger,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, res.CacheInfo.PlanHit)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[render.FormatJSON])
}

// decode reads a buildRequest, answering 400 or 413 itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (buildRequest, bool) {
	var req buildRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, apiError{
				Code:      string(errors.ErrCodeInvalidInput),
				Message:   fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
				RequestID: middleware.GetReqID(r.Context()),
			})
			return req, false
		}
		writeJSON(w, http.StatusBadRequest, apiError{
			Code:      string(errors.ErrCodeInvalidInput),
			Message:   "malformed JSON: " + err.Error(),
			RequestID: middleware.GetReqID(r.Context()),
		})
		return req, false
	}
	if req.Tools == nil {
		writeJSON(w, http.StatusBadRequest, apiError{
			Code:      string(errors.ErrCodeInvalidInput),
			Message:   "request must include a tools array",
			RequestID: middleware.GetReqID(r.Context()),
		})
		return req, false
	}
	return req, true
}

// statusClientClosed is reported when the client went away mid-build.
const statusClientClosed = 499

// statusFor maps an error to its HTTP status: fatal input and validation
// errors are 422, everything else a server fault.
func statusFor(err error) int {
	switch {
	case errors.IsFatal(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusBadRequest
	case stderrors.Is(err, context.Canceled):
		return statusClientClosed
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, apiError{
		Code:      string(code),
		Message:   errors.UserMessage(err),
		Details:   errors.GetDetails(err),
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set("X-Toolrack-Cache", "hit")
	} else {
		w.Header().Set("X-Toolrack-Cache", "miss")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
