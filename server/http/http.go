// Package http exposes the memory engine to agents that keep a local
// daemon running instead of shelling out to the CLI per call.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/w-h-a/brainx/inject"
	"github.com/w-h-a/brainx/memory"
	"github.com/w-h-a/brainx/memory/providers/store"
	"github.com/w-h-a/brainx/server"
)

type httpServer struct {
	options server.Options
	manager *memory.Manager
	budgets inject.Options
	srv     *http.Server
}

func (s *httpServer) Run() error {
	slog.Info("http server listening", "address", s.options.Address)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *httpServer) Stop() error {
	return s.srv.Shutdown(s.options.Context)
}

func (s *httpServer) handleAdd(w http.ResponseWriter, r *http.Request) {
	var rec store.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	stored, err := s.manager.StoreMemory(r.Context(), rec)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": stored.Id})
}

func (s *httpServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	opts, err := searchOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	results, err := s.manager.Search(r.Context(), query, opts...)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if results == nil {
		results = []store.ScoredRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "results": results})
}

func (s *httpServer) handleInject(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if len(query) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("q is required"))
		return
	}

	var opts []memory.InjectOption
	params := r.URL.Query()
	if v := params.Get("limit"); len(v) > 0 {
		limit, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		opts = append(opts, memory.WithInjectLimit(limit))
	}
	if v := params.Get("min-importance"); len(v) > 0 {
		min, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		opts = append(opts, memory.WithInjectMinImportance(min))
	}
	if v := params.Get("tier"); len(v) > 0 {
		opts = append(opts, memory.WithInjectTier(v))
	}
	if v := params.Get("context"); len(v) > 0 {
		opts = append(opts, memory.WithInjectContextFilter(v))
	}

	results, err := s.manager.SearchForInjection(r.Context(), query, opts...)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	block := inject.Format(
		results,
		inject.WithMaxCharsPerItem(s.budgets.MaxCharsPerItem),
		inject.WithMaxLinesPerItem(s.budgets.MaxLinesPerItem),
	)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(block))
}

func (s *httpServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Health(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func searchOptions(r *http.Request) ([]memory.SearchOption, error) {
	var opts []memory.SearchOption

	params := r.URL.Query()
	if v := params.Get("limit"); len(v) > 0 {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		opts = append(opts, memory.WithLimit(limit))
	}
	if v := params.Get("min-similarity"); len(v) > 0 {
		min, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, err
		}
		opts = append(opts, memory.WithMinSimilarity(min))
	}
	if v := params.Get("min-importance"); len(v) > 0 {
		min, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		opts = append(opts, memory.WithMinImportance(min))
	}
	if v := params.Get("tier"); len(v) > 0 {
		opts = append(opts, memory.WithTier(v))
	}
	if v := params.Get("context"); len(v) > 0 {
		opts = append(opts, memory.WithContextFilter(v))
	}

	return opts, nil
}

func statusFor(err error) int {
	var validation *memory.ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest
	}

	var provider *memory.ProviderError
	if errors.As(err, &provider) {
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	slog.Error("request failed", "status", status, "error", err)
	writeJSON(w, status, map[string]any{"ok": false, "error": err.Error()})
}

func NewServer(manager *memory.Manager, budgets inject.Options, opts ...server.Option) *httpServer {
	options := server.NewOptions(opts...)

	s := &httpServer{
		options: options,
		manager: manager,
		budgets: budgets,
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/v1/memories", s.handleAdd).Methods(http.MethodPost)
	router.HandleFunc("/v1/memories/search", s.handleSearch).Methods(http.MethodGet)
	router.HandleFunc("/v1/inject", s.handleInject).Methods(http.MethodGet)

	if ms, ok := MiddlewareFrom(options.Context); ok {
		for _, m := range ms {
			router.Use(m)
		}
	}

	s.srv = &http.Server{
		Addr:    options.Address,
		Handler: router,
	}

	return s
}
