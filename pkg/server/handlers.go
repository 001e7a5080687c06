package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/figstyle/pkg/buildinfo"
	ferrors "github.com/matzehuels/figstyle/pkg/errors"
	"github.com/matzehuels/figstyle/pkg/pipeline"
	"github.com/matzehuels/figstyle/pkg/template"
)

// Response headers set by the templates endpoint.
const (
	CacheHeader      = "X-Figstyle-Cache"
	FigureHashHeader = "X-Figstyle-Figure-Hash"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": buildinfo.Get(),
		"schema":  s.Runner.Schema.Hash(),
	})
}

func (s *Server) handleMake(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}

	opts := pipeline.Options{
		SkipPrior: queryBool(q.Get("skip_prior")),
		Refresh:   queryBool(q.Get("refresh")),
	}
	if name := q.Get("prior"); name != "" {
		if s.Store == nil {
			writeError(w, errNoStore())
			return
		}
		entry, err := s.Store.Get(r.Context(), name)
		if err != nil {
			writeError(w, err)
			return
		}
		opts.Prior = entry.Template
	}

	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.Runner.Make(r.Context(), body, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set(FigureHashHeader, res.FigureHash)
	if res.CacheHit {
		w.Header().Set(CacheHeader, "hit")
	} else {
		w.Header().Set(CacheHeader, "miss")
	}
	writeTemplate(w, res.Template, format)
}

type mergeRequest struct {
	Old *template.Template `json:"old"`
	New *template.Template `json:"new"`
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req mergeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, ferrors.Wrap(ferrors.ErrCodeInvalidTemplate, err, "decode merge request"))
		return
	}
	if req.Old == nil || req.New == nil {
		writeError(w, ferrors.New(ferrors.ErrCodeInvalidInput, `merge request needs both "old" and "new"`))
		return
	}

	merged := s.Runner.Merge(r.Context(), req.Old, req.New)
	writeTemplate(w, merged, pipeline.FormatJSON)
}

type lookupResponse struct {
	Scope         string `json:"scope"`
	Path          string `json:"path"`
	ValType       string `json:"val_type,omitempty"`
	Role          string `json:"role,omitempty"`
	ArrayOK       bool   `json:"array_ok"`
	LinkedToArray bool   `json:"linked_to_array"`
	NoTemplating  bool   `json:"no_templating"`
	Group         bool   `json:"group"`
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	scope := chi.URLParam(r, "scope")
	path := chi.URLParam(r, "*")
	if path == "" {
		writeError(w, ferrors.New(ferrors.ErrCodeInvalidPath, "attribute path is required"))
		return
	}

	info, err := s.Runner.Schema.Lookup(scope, path)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lookupResponse{
		Scope:         scope,
		Path:          path,
		ValType:       info.ValType,
		Role:          info.Role,
		ArrayOK:       info.ArrayOK,
		LinkedToArray: info.LinkedToArray,
		NoTemplating:  info.NoTemplating,
		Group:         info.IsGroup(),
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, errNoStore())
		return
	}
	entries, err := s.Store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	type item struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		UpdatedAt string `json:"updated_at"`
	}
	items := make([]item, 0, len(entries))
	for _, e := range entries {
		items = append(items, item{ID: e.ID, Name: e.Name, UpdatedAt: e.UpdatedAt.Format(time.RFC3339)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": items})
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, errNoStore())
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	t, err := template.Parse(body)
	if err != nil {
		writeError(w, ferrors.Wrap(ferrors.ErrCodeInvalidTemplate, err, "decode template"))
		return
	}
	entry, err := s.Store.Put(r.Context(), chi.URLParam(r, "name"), t, s.Runner.Schema.Hash())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, errNoStore())
		return
	}
	entry, err := s.Store.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, errNoStore())
		return
	}
	if err := s.Store.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ferrors.New(ferrors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "read request body")
	}
	if len(body) == 0 {
		return nil, ferrors.New(ferrors.ErrCodeInvalidInput, "request body is empty")
	}
	return body, nil
}

func writeTemplate(w http.ResponseWriter, t *template.Template, format string) {
	out, err := pipeline.Encode(t, format)
	if err != nil {
		writeError(w, ferrors.Wrap(ferrors.ErrCodeInternal, err, "encode template"))
		return
	}
	if format == pipeline.FormatYAML {
		w.Header().Set("Content-Type", "application/yaml")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func queryBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

func errNoStore() error {
	return ferrors.New(ferrors.ErrCodeUnavailable, "template library is not configured")
}
