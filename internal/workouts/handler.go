package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/mlukic/planka/internal/auth"
	"github.com/mlukic/planka/internal/telemetry/metrics"
	"github.com/mlukic/planka/internal/telemetry/tracing"
	"github.com/mlukic/planka/pkg"
)

const defaultHistoryLimit = 10

//go:generate mockgen -source=$GOFILE -destination=workouts_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	Insert(ctx context.Context, cw CompletedWorkout) (*CompletedWorkout, bool, error)
	List(ctx context.Context, accountID, limit int) ([]CompletedWorkout, error)
	Delete(ctx context.Context, id, accountID int) error
}

type Handler struct {
	repo           workoutsRepo
	metricsManager *metrics.Manager
}

func NewHandler(repo workoutsRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	workoutsSubrouter := mainRouter.PathPrefix("/workouts").Subrouter()
	workoutsSubrouter.
		HandleFunc("", handler.handleComplete).
		Methods("POST", "OPTIONS").Name("complete-workout")
	workoutsSubrouter.
		HandleFunc("/history", handler.handleHistory).
		Methods("GET", "OPTIONS").Name("workouts-history")
	workoutsSubrouter.
		HandleFunc("/{id}", handler.handleDelete).
		Methods("DELETE", "OPTIONS").Name("delete-workout")
}

func (handler *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "workoutsHandler.complete")
	defer span.End()

	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var cw CompletedWorkout
	if err := json.NewDecoder(r.Body).Decode(&cw); err != nil {
		log.Errorf("complete workout, decode: %s", err)
		http.Error(w, "invalid workout json", http.StatusBadRequest)
		return
	}

	if err := cw.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	for _, ex := range cw.Workout.Exercises {
		if len(ex.Sets) == 0 {
			log.Warnf("account %d logged workout [%s] with empty sets for [%s]",
				session.AccountID, cw.Workout.Name, ex.Name)
		}
	}

	cw.AccountID = session.AccountID

	stored, created, err := handler.repo.Insert(ctx, cw)
	if err != nil {
		log.Errorf("complete workout for account %d: %s", session.AccountID, err)
		http.Error(w, "store workout failed", http.StatusInternalServerError)
		return
	}

	resp, err := json.Marshal(stored)
	if err != nil {
		log.Errorf("complete workout, marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if !created {
		// idempotent replay, nothing new was stored
		log.Debugf("account %d replayed workout completion [%s]", session.AccountID, stored.IdempotencyKey)
		pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
		return
	}

	handler.metricsManager.CounterCompletedWorkouts.Inc()
	log.Debugf("account %d completed workout [%s] on %s", session.AccountID, stored.Workout.Name, stored.Date)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, resp, http.StatusCreated)
}

func (handler *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "workoutsHandler.history")
	defer span.End()

	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	limit := defaultHistoryLimit
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed < 1 {
			http.Error(w, "invalid limit param", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	workouts, err := handler.repo.List(ctx, session.AccountID, limit)
	if err != nil {
		log.Errorf("workouts history for account %d: %s", session.AccountID, err)
		http.Error(w, "get workouts failed", http.StatusInternalServerError)
		return
	}

	resp, err := json.Marshal(workouts)
	if err != nil {
		log.Errorf("workouts history, marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}

func (handler *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "workoutsHandler.delete")
	defer span.End()

	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "invalid workout id", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, id, session.AccountID); err != nil {
		switch {
		case errors.Is(err, ErrWorkoutNotFound):
			http.Error(w, "workout not found", http.StatusNotFound)
		case errors.Is(err, ErrNotOwner):
			http.Error(w, "no can do", http.StatusForbidden)
		default:
			log.Errorf("delete workout %d for account %d: %s", id, session.AccountID, err)
			http.Error(w, "delete workout failed", http.StatusInternalServerError)
		}
		return
	}

	log.Debugf("account %d deleted workout %d", session.AccountID, id)
	pkg.WriteTextResponseOK(w, "deleted:"+vars["id"])
}
