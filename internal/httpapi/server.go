package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/arawak/annales/internal/catalog"
	"github.com/arawak/annales/internal/combo"
	"github.com/arawak/annales/internal/config"
	"github.com/arawak/annales/internal/docs"
	"github.com/arawak/annales/internal/filter"
	"github.com/arawak/annales/internal/metrics"
	"github.com/arawak/annales/internal/session"
	"github.com/arawak/annales/internal/swaggerui"
	"github.com/arawak/annales/internal/tags"
)

// Generator produces exercise combinations covering a set of tags.
type Generator interface {
	Generate(ctx context.Context, req combo.Request) (*combo.Response, error)
}

// Pinger reports whether a backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the router serves. Generator, APIKeys and DB
// are optional.
type Deps struct {
	Catalog   *catalog.Catalog
	Docs      *docs.Resolver
	Generator Generator
	APIKeys   *APIKeyStore
	Denylist  []string
	DB        Pinger
}

type Server struct {
	cfg       *config.Config
	catalog   *catalog.Catalog
	docs      *docs.Resolver
	generator Generator
	apiKeys   *APIKeyStore
	db        Pinger
	vocab     map[tags.Mode][]tags.Entry
	facets    catalog.Facets
	logger    *slog.Logger
}

var (
	openapiOnce sync.Once
	openapiData []byte
	openapiErr  error
)

func loadOpenAPI() ([]byte, error) {
	openapiOnce.Do(func() {
		openapiData, openapiErr = os.ReadFile(filepath.Clean("openapi.yaml"))
	})
	return openapiData, openapiErr
}

func NewRouter(cfg *config.Config, deps Deps, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	cat := deps.Catalog
	if cat == nil {
		cat = catalog.New(nil)
	}
	s := &Server{
		cfg:       cfg,
		catalog:   cat,
		docs:      deps.Docs,
		generator: deps.Generator,
		apiKeys:   deps.APIKeys,
		db:        deps.DB,
		vocab:     make(map[tags.Mode][]tags.Entry, 2),
		facets:    cat.Facets(),
		logger:    logger,
	}
	// The catalog never changes after startup, so both vocabularies are
	// ranked once.
	for _, mode := range []tags.Mode{tags.Filtered, tags.Unfiltered} {
		curator := tags.New(tags.Options{Mode: mode, Denylist: deps.Denylist})
		s.vocab[mode] = curator.RankEntries(cat.Exercises())
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(loggingMiddleware(logger))

	if len(cfg.CORSAllowedOrigins) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Accept", "X-Api-Key"},
			AllowCredentials: true,
		})
		r.Use(c.Handler)
	}

	r.Get("/healthz", s.GetHealthz)
	r.Get("/readyz", s.GetReadyz)
	r.Get(cfg.OpenAPIPath, s.serveOpenAPI)
	r.Mount(cfg.SwaggerUIPath, swaggerui.Handler(cfg.OpenAPIPath, cfg.SwaggerUIPath))
	r.Handle("/metrics", metrics.Handler())

	wrapper := ServerInterfaceWrapper{Handler: s, ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
	}}

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware())
		r.Use(s.requirePermissions(PermCanSearch))
		r.Get("/api/exercises", wrapper.ListExercises)
		r.Get("/api/exercises/{index}", wrapper.GetExercise)
		r.Get("/api/exercises/{index}/subject", wrapper.GetExerciseSubject)
		r.Get("/api/exercises/{index}/corrections/{n}", wrapper.GetExerciseCorrection)
		r.Get("/api/tags", wrapper.ListTags)
		r.Get("/api/facets", wrapper.GetFacets)
		r.Get("/data/exercises.json", s.GetCatalog)
		r.Get(docs.PublicPrefix+"*", s.GetDocument)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware())
		r.Use(s.requirePermissions(PermCanGenerate))
		r.Post("/api/generate", wrapper.GenerateCombo)
	})

	return r
}

func (s *Server) serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	data, err := loadOpenAPI()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "unable to load openapi.yaml", map[string]any{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) GetHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Health{Status: Ok})
}

func (s *Server) GetReadyz(w http.ResponseWriter, r *http.Request) {
	if s.catalog.Len() == 0 {
		writeError(w, http.StatusServiceUnavailable, "not_ready", "catalog is empty", nil)
		return
	}
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "not_ready", "database unreachable", map[string]any{"error": err.Error()})
			return
		}
	}
	if s.docs != nil {
		if err := s.docs.IsReadable(); err != nil {
			writeError(w, http.StatusServiceUnavailable, "not_ready", "document mirror not readable", map[string]any{"error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, Health{Status: Ok})
}

func (s *Server) ListExercises(w http.ResponseWriter, r *http.Request, params ListExercisesParams) {
	limit := derefInt(params.Limit, s.cfg.DisplayLimit)
	if limit <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "limit must be positive", nil)
		return
	}

	ctrl := session.New()
	ctrl.TextQuery = getStringPtr(params.Q)
	ctrl.Year = getStringPtr(params.Year)
	ctrl.Session = getStringPtr(params.Session)
	ctrl.Points = getStringPtr(params.Points)
	ctrl.Strict = derefBool(params.Strict, false)
	ctrl.Select(derefStringSlice(params.Tag)...)
	spec := ctrl.Spec()

	start := time.Now()
	res := filter.Apply(s.catalog.Exercises(), spec, limit)
	metrics.ObserveFilter(res.Count, time.Since(start))
	s.logger.Debug("filter", "query", spec.TextQuery, "tags", ctrl.Selected(), "strict", spec.StrictTagsOnly, "count", res.Count)

	resp := ExerciseList{Count: res.Count, Limit: limit, Items: make([]ExerciseItem, 0, len(res.Items))}
	for _, m := range res.Items {
		resp.Items = append(resp.Items, toExerciseItem(m.Index, m.Exercise, m.VisibleTopics))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) GetExercise(w http.ResponseWriter, _ *http.Request, index int) {
	ex, ok := s.catalog.At(index)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "exercise not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toExerciseItem(index, &ex, ex.Topics))
}

func (s *Server) GetExerciseSubject(w http.ResponseWriter, r *http.Request, index int) {
	ex, ok := s.catalog.At(index)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "exercise not found", nil)
		return
	}
	s.redirectToDocument(w, r, ex.LocalSubjectFile, ex.PDFSubjectURL)
}

func (s *Server) GetExerciseCorrection(w http.ResponseWriter, r *http.Request, index int, n int) {
	ex, ok := s.catalog.At(index)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "exercise not found", nil)
		return
	}
	corrections := ex.SelectableCorrections()
	if n < 1 || n > len(corrections) {
		writeError(w, http.StatusNotFound, "not_found", "correction not found", nil)
		return
	}
	c := corrections[n-1]
	s.redirectToDocument(w, r, c.LocalFile, c.URL)
}

func (s *Server) redirectToDocument(w http.ResponseWriter, r *http.Request, localFile, fallbackURL string) {
	if s.docs == nil {
		writeError(w, http.StatusNotFound, "not_found", docs.ErrUnresolved.Error(), nil)
		return
	}
	loc, err := s.docs.Resolve(localFile, fallbackURL)
	if err != nil {
		metrics.ObserveResolution(metrics.ResolutionMiss)
		writeError(w, http.StatusNotFound, "not_found", "Fichier introuvable (local) et aucun lien de secours.", nil)
		return
	}
	if loc.Local {
		metrics.ObserveResolution(metrics.ResolutionLocal)
	} else {
		metrics.ObserveResolution(metrics.ResolutionFallback)
	}
	http.Redirect(w, r, loc.URL, http.StatusFound)
}

func (s *Server) ListTags(w http.ResponseWriter, _ *http.Request, params ListTagsParams) {
	mode, ok := tags.ParseMode(getStringPtr(params.Mode))
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", "mode must be filtered or unfiltered", nil)
		return
	}
	limit := s.cfg.BrowseTagLimit
	if mode == tags.Unfiltered {
		limit = s.cfg.PickerTagLimit
	}

	var ctrl session.Controller
	ctrl.Select(derefStringSlice(params.Tag)...)
	ctrl.SetTagQuery(getStringPtr(params.Q))
	ctrl.SetShowAllTags(derefBool(params.All, false))
	page := ctrl.TagPage(s.vocab[mode], limit)

	items := make([]TagItem, 0, len(page.Items))
	for _, e := range page.Items {
		items = append(items, TagItem{Entry: e, Selected: ctrl.IsSelected(e.Tag)})
	}
	writeJSON(w, http.StatusOK, TagList{Mode: mode.String(), Items: items, Hidden: page.Hidden})
}

func (s *Server) GetFacets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.facets)
}

func (s *Server) GenerateCombo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestBytes)
	var payload GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		metrics.ObserveGenerate(metrics.OutcomeInvalid)
		writeJSON(w, http.StatusBadRequest, combo.ErrorBody{Error: "Requête JSON invalide."})
		return
	}

	k, err := combo.ParseK(payload.KText())
	if err != nil {
		metrics.ObserveGenerate(metrics.OutcomeInvalid)
		writeJSON(w, http.StatusBadRequest, combo.ErrorBody{Error: "Nombre d'exercices invalide."})
		return
	}
	req := combo.BuildRequest(payload.Tags, k, derefBool(payload.AvoidSameSubject, true), derefBool(payload.OnlySelectedTopics, false))
	if err := req.Validate(); err != nil {
		metrics.ObserveGenerate(metrics.OutcomeInvalid)
		msg := "Requête invalide."
		if errors.Is(err, combo.ErrNoTags) {
			msg = "Sélectionne au moins un tag."
		}
		writeJSON(w, http.StatusBadRequest, combo.ErrorBody{Error: msg})
		return
	}

	if s.generator == nil {
		metrics.ObserveGenerate(metrics.OutcomeFailed)
		writeError(w, http.StatusServiceUnavailable, "not_configured", combo.ErrNotConfigured.Error(), nil)
		return
	}

	resp, err := s.generator.Generate(r.Context(), req)
	if err != nil {
		var rejected *combo.RejectedError
		switch {
		case errors.As(err, &rejected):
			metrics.ObserveGenerate(metrics.OutcomeRejected)
			writeJSON(w, http.StatusBadRequest, combo.ErrorBody{Error: rejected.Message})
		case errors.Is(err, combo.ErrNotConfigured):
			metrics.ObserveGenerate(metrics.OutcomeFailed)
			writeError(w, http.StatusServiceUnavailable, "not_configured", err.Error(), nil)
		default:
			metrics.ObserveGenerate(metrics.OutcomeFailed)
			s.logger.Error("generate failed", "tags", req.Tags, "k", req.K, "error", err)
			writeError(w, http.StatusBadGateway, "generator_unavailable", "combo generator unavailable", map[string]any{"error": err.Error()})
		}
		return
	}

	metrics.ObserveGenerate(metrics.OutcomeOK)
	s.logger.Info("generate", "tags", req.Tags, "k", req.K, "count", resp.Count, "missing", len(resp.MissingTags))
	writeJSON(w, http.StatusOK, toGenerateResponse(resp))
}

func (s *Server) GetCatalog(w http.ResponseWriter, _ *http.Request) {
	exercises := s.catalog.Exercises()
	if exercises == nil {
		exercises = []catalog.Exercise{}
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	if s.docs == nil {
		writeError(w, http.StatusNotFound, "not_found", "document not found", nil)
		return
	}
	rel := docs.Relative(chi.URLParam(r, "*"))
	file, info, err := s.docs.Open(rel)
	if err != nil {
		status := http.StatusNotFound
		if !errors.Is(err, docs.ErrNotFound) && !errors.Is(err, docs.ErrOutsideDir) {
			status = http.StatusInternalServerError
			s.logger.Error("open document", "path", rel, "error", err)
		}
		writeError(w, status, "not_found", "document not found", nil)
		return
	}
	defer file.Close()

	etag := fmt.Sprintf("\"%x-%x\"", info.ModTime().Unix(), info.Size())
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	mimeType := mime.TypeByExtension(strings.ToLower(path.Ext(rel)))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, file)
}

func toExerciseItem(index int, ex *catalog.Exercise, visible []string) ExerciseItem {
	item := ExerciseItem{
		Exercise:      *ex,
		Index:         index,
		Title:         ex.Title(),
		VisibleTopics: visible,
		SubjectHref:   subjectHref(index),
		Corrections:   []CorrectionLink{},
	}
	if item.VisibleTopics == nil {
		item.VisibleTopics = []string{}
	}
	for i, c := range ex.SelectableCorrections() {
		item.Corrections = append(item.Corrections, CorrectionLink{
			N:     i + 1,
			Label: catalog.CorrectionLabel(c, i),
			Href:  correctionHref(index, i+1),
		})
	}
	return item
}

func toGenerateResponse(resp *combo.Response) GenerateResponse {
	out := GenerateResponse{
		RequestedTags: nonNil(resp.RequestedTags),
		CoveredTags:   nonNil(resp.CoveredTags),
		MissingTags:   nonNil(resp.MissingTags),
		Count:         resp.Count,
		Summary:       resp.Summary(),
		Exercises:     make([]GeneratedItem, 0, len(resp.Exercises)),
	}
	for i := range resp.Exercises {
		g := &resp.Exercises[i]
		out.Exercises = append(out.Exercises, GeneratedItem{
			GeneratedExercise: *g,
			Title:             g.Title(),
			DisplayTopics:     nonNil(g.DisplayTopics()),
		})
	}
	return out
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	e := Error{Code: code, Message: message}
	if details != nil {
		e.Details = &details
	}
	writeJSON(w, status, e)
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "duration", time.Since(start).String())
		})
	}
}

func getStringPtr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefStringSlice(v *[]string) []string {
	if v == nil {
		return nil
	}
	return *v
}

func derefInt(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func derefBool(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
