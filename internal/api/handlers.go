package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gyeh/noharmcheck/internal/model"
	"github.com/gyeh/noharmcheck/internal/parse"
	"github.com/gyeh/noharmcheck/internal/report"
	"github.com/gyeh/noharmcheck/internal/schema"
	"github.com/gyeh/noharmcheck/internal/validate"
)

// filesField is the multipart field whose parts are routed by file name.
const filesField = "files"

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

func (s *Server) categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.AllCategories)
}

type schemaView struct {
	Category  model.Category              `json:"category"`
	Label     string                      `json:"label"`
	Required  []string                    `json:"required"`
	Allowed   []string                    `json:"allowed"`
	Key       []string                    `json:"key"`
	TypeHints map[schema.TypeTag][]string `json:"typeHints"`
	Refs      []schema.Reference          `json:"refs,omitempty"`
}

func (s *Server) schema(w http.ResponseWriter, r *http.Request) {
	var out []schemaView
	for _, c := range model.AllCategories {
		u, ok := s.reg.Lookup(c.Key)
		if !ok {
			continue
		}
		out = append(out, schemaView{
			Category:  c.Key,
			Label:     c.Label,
			Required:  u.Required,
			Allowed:   u.SortedAllowed(),
			Key:       u.Key,
			TypeHints: u.TypeHints,
			Refs:      u.Refs,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"schema": s.reg.Label, "categories": out})
}

type validateResponse struct {
	*report.Report
	Routing []string `json:"routing,omitempty"`
}

// validate accepts a multipart batch. Parts named after a category key go to
// that category; parts named "files" are routed by file name, replacing an
// explicit part of the same category with a routing warning.
func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	inputs, routing, err := collectInputs(r.MultipartForm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(inputs) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	start := time.Now()
	parsed, err := parse.All(r.Context(), inputs)
	if err != nil {
		writeError(w, http.StatusRequestTimeout, err.Error())
		return
	}
	rep, err := validate.Validate(s.reg, parsed)
	if err != nil {
		s.log.Error().Err(err).Msg("validation unavailable")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.metrics.ObserveValidation(time.Since(start))
	s.metrics.RecordReport(rep)

	if r.URL.Query().Get("records") == "false" {
		rep = rep.WithoutRecords()
	}
	writeJSON(w, http.StatusOK, validateResponse{Report: rep, Routing: routing})
}

func collectInputs(form *multipart.Form) ([]parse.Input, []string, error) {
	var inputs []parse.Input
	taken := make(map[model.Category]bool)

	for _, c := range model.AllCategories {
		hs := form.File[string(c.Key)]
		if len(hs) == 0 {
			continue
		}
		in, err := readPart(c.Key, hs[0])
		if err != nil {
			return nil, nil, err
		}
		inputs = append(inputs, in)
		taken[c.Key] = true
	}

	routedParts := form.File[filesField]
	names := make([]string, len(routedParts))
	for i, h := range routedParts {
		names[i] = filepath.Base(h.Filename)
	}
	routed, warnings := model.RouteNames(names, taken)
	for _, cat := range model.CategoryKeys() {
		i, ok := routed[cat]
		if !ok {
			continue
		}
		in, err := readPart(cat, routedParts[i])
		if err != nil {
			return nil, nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, warnings, nil
}

func readPart(cat model.Category, h *multipart.FileHeader) (parse.Input, error) {
	f, err := h.Open()
	if err != nil {
		return parse.Input{}, fmt.Errorf("open %s part: %w", cat, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return parse.Input{}, fmt.Errorf("read %s part: %w", cat, err)
	}
	return parse.Input{Category: cat, FileName: filepath.Base(h.Filename), Data: data}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
