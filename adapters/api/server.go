// Package api is the HTTP surface over the data hub. It serves pipeline
// output as JSON for plot frontends and scripting clients.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"phenolab/adapters/profile"
	"phenolab/app"
	"phenolab/domain/colony"
	"phenolab/domain/core"
	"phenolab/internal"
)

// Server wires the hub's accessors onto a chi router
type Server struct {
	router *chi.Mux
	hub    *app.DataHub
	log    *internal.Logger
}

func NewServer(hub *app.DataHub, log *internal.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		hub:    hub,
		log:    log.WithPrefix("api"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/datasets", s.handleDatasets)
	s.router.Route("/datasets/{id}", func(r chi.Router) {
		r.Get("/current", s.handleCurrent)
		r.Get("/table", s.handleTable)
		r.Get("/timeline", s.handleTimeline)
		r.Get("/bars", s.handleBars)
		r.Get("/anova", s.handleAnova)
		r.Get("/timeseries", s.handleTimeseries)
		r.Get("/profile", s.handleProfile)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	type datasetInfo struct {
		ID      string   `json:"id"`
		Name    string   `json:"name"`
		Animals int      `json:"animals"`
		Tables  []string `json:"tables"`
	}
	datasets := s.hub.Datasets()
	out := make([]datasetInfo, 0, len(datasets))
	for _, ds := range datasets {
		info := datasetInfo{ID: ds.ID.String(), Name: ds.Name, Animals: len(ds.Animals)}
		for _, table := range ds.Tables() {
			info.Tables = append(info.Tables, table.Name)
		}
		out = append(out, info)
	}
	s.writeJSON(w, http.StatusOK, out)
}

// query decodes the shared accessor parameters from the URL
func query(r *http.Request) app.AnalysisQuery {
	q := r.URL.Query()
	return app.AnalysisQuery{
		DatasetID: core.DatasetID(chi.URLParam(r, "id")),
		Table:     q.Get("table"),
		SplitMode: colony.SplitMode(q.Get("split")),
		Factor:    q.Get("factor"),
		Variable:  q.Get("variable"),
		AnimalID:  q.Get("animal"),
	}
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	f, err := s.hub.GetCurrentFrame(query(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, encodeFrame(f))
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	f, err := s.hub.GetDataTableFrame(query(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, encodeFrame(f))
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	f, err := s.hub.GetTimelinePlotFrame(query(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, encodeFrame(f))
}

func (s *Server) handleBars(w http.ResponseWriter, r *http.Request) {
	f, err := s.hub.GetBarPlotFrame(query(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, encodeFrame(f))
}

func (s *Server) handleAnova(w http.ResponseWriter, r *http.Request) {
	f, err := s.hub.GetAnovaFrame(query(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, encodeFrame(f))
}

func (s *Server) handleTimeseries(w http.ResponseWriter, r *http.Request) {
	f, err := s.hub.GetTimeseriesFrame(query(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, encodeFrame(f))
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	q := query(r)
	ds, err := s.hub.Dataset(q.DatasetID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	table, err := ds.Table(q.Table)
	if err != nil {
		s.writeError(w, err)
		return
	}
	f, err := s.hub.GetDataTableFrame(q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	profiles, err := profile.Frame(f, table.Variables)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, profiles)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case core.IsNotFoundError(err):
		code = http.StatusNotFound
	case core.IsConfigError(err), core.IsStructuralError(err):
		code = http.StatusBadRequest
	}
	s.log.Error("%v", err)
	s.writeJSON(w, code, map[string]string{"error": err.Error()})
}
