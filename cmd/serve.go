package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sustainly/esg-cli/internal/model"
	"github.com/sustainly/esg-cli/internal/predict"
	"github.com/sustainly/esg-cli/internal/scoring"
	"github.com/sustainly/esg-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scoring and alerts HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		calendar, err := loadCalendar(ctx)
		if err != nil {
			return err
		}

		api := &apiServer{
			store:  st,
			engine: newEngine(st, cat),
			gen:    predict.NewGenerator(st, calendar),
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.routes(),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

type apiServer struct {
	store  store.Store
	engine *scoring.Engine
	gen    *predict.Generator
}

func (s *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/score", s.handleScore)
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/history", s.handleHistory)
			r.Get("/alerts", s.handleListAlerts)
			r.Post("/alerts/generate", s.handleGenerateAlerts)
			r.Post("/alerts/{alertID}/resolve", s.handleResolveAlert)
		})
	})

	return r
}

type scoreRequest struct {
	UserID   string         `json:"user_id"`
	Industry string         `json:"industry"`
	Save     bool           `json:"save"`
	Answers  []model.Answer `json:"answers"`
}

type scoreResponse struct {
	Result   model.FlatScore `json:"result"`
	Warnings []string        `json:"warnings,omitempty"`
}

func (s *apiServer) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	result, warnings, err := s.engine.Compute(r.Context(), req.UserID, req.Industry, req.Answers, req.Save)
	if err != nil {
		var incomplete *scoring.IncompleteAssessmentError
		if errors.As(err, &incomplete) {
			writeError(w, http.StatusUnprocessableEntity, incomplete.Error())
			return
		}
		zap.L().Error("score request failed", zap.String("user_id", req.UserID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "scoring failed")
		return
	}

	writeJSON(w, http.StatusOK, scoreResponse{Result: result.Flatten(), Warnings: warnings})
}

func (s *apiServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	limit := 10
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := s.store.ReadHistory(r.Context(), userID, limit)
	if err != nil {
		zap.L().Error("history request failed", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "history read failed")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *apiServer) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	alerts, err := s.store.ListActiveAlerts(r.Context(), userID, time.Now().UTC())
	if err != nil {
		zap.L().Error("alert list failed", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "alert list failed")
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *apiServer) handleGenerateAlerts(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	industry := r.URL.Query().Get("industry")

	alerts, err := s.gen.Generate(r.Context(), userID, industry)
	if err != nil {
		zap.L().Error("alert generation failed", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "alert generation failed")
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *apiServer) handleResolveAlert(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	alertID, err := uuid.Parse(chi.URLParam(r, "alertID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid alert id")
		return
	}

	if err := s.store.ResolveAlert(r.Context(), userID, alertID, time.Now().UTC()); err != nil {
		zap.L().Error("alert resolve failed", zap.String("alert_id", alertID.String()), zap.Error(err))
		writeError(w, http.StatusNotFound, "alert not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
