package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"airwatch/internal/models"
	"airwatch/internal/render"
	"airwatch/pkg/logging"
)

var pageNav = []render.NavLink{
	{Label: "Monitoring", URL: "/"},
	{Label: "Simulation", URL: "/simulate"},
	{Label: "API", URL: docsPath},
}

// Dashboard handles GET /, the monitoring view.
// An aqi query parameter adds the matching health tip.
func (h *AQIHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	surface := render.NewHTMLSurface("AQI Monitoring Tool", pageNav...)

	path, r, err := h.dataset(r)
	if err != nil {
		h.sendPage(w, r, surface, err)
		return
	}

	threshold := h.opts.Threshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		if threshold, err = parseFloatParam("threshold", raw); err != nil {
			h.sendPage(w, r, surface, err)
			return
		}
	}

	report, err := h.service.Monitor(r.Context(), path, threshold)
	if err != nil {
		h.sendPage(w, r, surface, err)
		return
	}

	view := &render.MonitoringView{
		Report:  report,
		Station: h.opts.Station,
		Logos:   render.LogoAssets("/assets/", h.opts.Logos),
	}
	if raw := r.URL.Query().Get("aqi"); raw != "" {
		aqi, err := parseFloatParam("aqi", raw)
		if err == nil {
			view.Advisory, err = h.service.Advise(r.Context(), aqi)
		}
		if err != nil {
			h.sendPage(w, r, surface, err)
			return
		}
	}

	h.sendPage(w, r, surface, view.Present(surface))
}

// SimulationPage handles GET /simulate, the scenario view
func (h *AQIHandler) SimulationPage(w http.ResponseWriter, r *http.Request) {
	surface := render.NewHTMLSurface("Campus Air WATCH", pageNav...)

	path, r, err := h.dataset(r)
	if err != nil {
		h.sendPage(w, r, surface, err)
		return
	}
	params, err := h.scenario(r)
	if err != nil {
		h.sendPage(w, r, surface, err)
		return
	}

	report, err := h.service.Simulate(r.Context(), path, params)
	if err != nil {
		h.sendPage(w, r, surface, err)
		return
	}

	view := &render.SimulationView{
		Report: report,
		Logos:  render.LogoAssets("/assets/", h.opts.Logos),
	}
	if err := view.Present(surface); err != nil {
		h.sendPage(w, r, surface, err)
		return
	}

	query := r.URL.Query()
	query.Set("vegetation", strconv.FormatFloat(params.VegetationRatio, 'f', -1, 64))
	query.Set("ev", strconv.FormatFloat(params.EVAdoptionRatio, 'f', -1, 64))
	query.Set("filter", strconv.FormatFloat(params.SmogFilterEffectiveness, 'f', -1, 64))
	err = surface.Text("Download Adjusted Data", "POST /api/simulate/export?"+query.Encode())
	h.sendPage(w, r, surface, err)
}

// sendPage writes the surface, or an error page when err is set.
// Empty data is shown as a message on an otherwise normal page.
func (h *AQIHandler) sendPage(w http.ResponseWriter, r *http.Request, surface *render.HTMLSurface, err error) {
	status := http.StatusOK
	if err != nil {
		var eErr *models.EmptyDataError
		var errType string
		status, errType = statusFor(err)
		message := err.Error()
		if status == http.StatusInternalServerError {
			h.logger.Error(r.Context(), "[PAGE_ERROR] Page rendering failed", logging.Fields{
				"path": r.URL.Path,
			}, err)
			message = "internal server error"
		}
		heading := "No data"
		if !errors.As(err, &eErr) {
			h.metrics.RecordAPIError(errType, routeName(r))
			heading = "Error"
		}
		surface.Text(heading, message)
	}

	var buf bytes.Buffer
	if _, werr := surface.WriteTo(&buf); werr != nil {
		h.logger.Error(r.Context(), "[PAGE_RENDER_ERROR] Failed to write page", logging.Fields{}, werr)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
