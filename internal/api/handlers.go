package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/OCAP2/auvplanner/internal/estimator"
	"github.com/OCAP2/auvplanner/internal/planner"
	"github.com/OCAP2/auvplanner/pkg/core"
)

const msgInternal = "Internal error while estimating the mission."

// formValues echoes the submitted fields back into the page.
type formValues struct {
	Depth            string
	Speed            string
	BatteryCapacity  string
	Weight           string
	Volume           string
	CurrentSpeed     string
	CurrentDirection string
}

type pageData struct {
	Form          formValues
	WaypointsJSON string
	Report        *planner.Report
	Error         string
}

// errorResponse is the API body for a rejected mission.
type errorResponse struct {
	Error     string          `json:"error"`
	Waypoints []core.Waypoint `json:"waypoints"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, pageData{WaypointsJSON: "[]"})
}

func (s *Server) handleIndexSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.renderPage(w, r, http.StatusBadRequest, pageData{WaypointsJSON: "[]", Error: "Could not read the submitted form."})
		return
	}

	in, err := MissionFromForm(r.PostForm)
	if err == nil {
		var report planner.Report
		report, err = s.planner.Estimate(r.Context(), in)
		if err == nil {
			wps, _ := json.Marshal(in.Waypoints)
			s.renderPage(w, r, http.StatusOK, pageData{
				Form: formValues{
					Depth:            r.PostForm.Get("depth"),
					Speed:            r.PostForm.Get("speed"),
					BatteryCapacity:  r.PostForm.Get("battery_capacity"),
					Weight:           r.PostForm.Get("weight"),
					Volume:           r.PostForm.Get("volume"),
					CurrentSpeed:     r.PostForm.Get("current_speed"),
					CurrentDirection: r.PostForm.Get("current_direction"),
				},
				WaypointsJSON: string(wps),
				Report:        &report,
			})
			return
		}
	}

	status, msg := s.classify(r, err)
	s.renderPage(w, r, status, pageData{WaypointsJSON: "[]", Error: msg})
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var (
		in  core.MissionInput
		err error
	)
	if isFormRequest(r) {
		if err = r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Could not read the submitted form.", Waypoints: []core.Waypoint{}})
			return
		}
		in, err = MissionFromForm(r.PostForm)
	} else {
		var body []byte
		body, err = io.ReadAll(r.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "Request body too large.", Waypoints: []core.Waypoint{}})
				return
			}
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Could not read the request body.", Waypoints: []core.Waypoint{}})
			return
		}
		in, err = MissionFromJSON(body)
	}

	if err == nil {
		var report planner.Report
		report, err = s.planner.Estimate(r.Context(), in)
		if err == nil {
			writeJSON(w, http.StatusOK, report)
			return
		}
	}

	status, msg := s.classify(r, err)
	writeJSON(w, status, errorResponse{Error: msg, Waypoints: []core.Waypoint{}})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	if !s.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// classify maps an estimate error to a status and a displayable message.
func (s *Server) classify(r *http.Request, err error) (int, string) {
	if estimator.IsValidationError(err) {
		return http.StatusUnprocessableEntity, err.Error()
	}
	s.logger.ErrorContext(r.Context(), "Estimate failed", "error", err)
	return http.StatusInternalServerError, msgInternal
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.page.Execute(w, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to render page", "error", err)
	}
}

func isFormRequest(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return ct == "application/x-www-form-urlencoded"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
