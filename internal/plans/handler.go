package plans

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/mlukic/planka/internal/auth"
	"github.com/mlukic/planka/internal/telemetry/metrics"
	"github.com/mlukic/planka/internal/telemetry/tracing"
	"github.com/mlukic/planka/pkg"
)

type plansRepo interface {
	GetActive(ctx context.Context, accountID int) (*Plan, error)
	InsertAsActive(ctx context.Context, plan Plan) (*Plan, error)
}

type Handler struct {
	repo           plansRepo
	resolver       *Resolver
	metricsManager *metrics.Manager
}

func NewHandler(
	repo plansRepo,
	resolver *Resolver,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		repo:           repo,
		resolver:       resolver,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.
		HandleFunc("/plan", handler.handleGetPlan).
		Methods("GET", "OPTIONS").Name("get-plan")
	mainRouter.
		HandleFunc("/plan/today", handler.handleToday).
		Methods("GET", "OPTIONS").Name("plan-today")
	mainRouter.
		HandleFunc("/plan", handler.handleUpload).
		Methods("POST", "OPTIONS").Name("upload-plan")
}

type effectivePlanResponse struct {
	Source Source `json:"source"`
	Plan   *Plan  `json:"plan"`
}

func (handler *Handler) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "plansHandler.get")
	defer span.End()

	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	plan, source := handler.resolver.Effective(ctx, session.AccountID)

	resp, err := json.Marshal(effectivePlanResponse{Source: source, Plan: plan})
	if err != nil {
		log.Errorf("get plan, marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}

func (handler *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "plansHandler.today")
	defer span.End()

	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	resolved := handler.resolver.Today(ctx, session.AccountID)

	resp, err := json.Marshal(resolved)
	if err != nil {
		log.Errorf("plan today, marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}

func (handler *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "plansHandler.upload")
	defer span.End()

	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var plan Plan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		log.Errorf("upload plan, decode: %s", err)
		http.Error(w, "invalid plan json", http.StatusBadRequest)
		return
	}

	if err := NormalizeAndValidate(&plan); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// whatever the payload claims, the plan belongs to the caller
	plan.AccountID = &session.AccountID

	stored, err := handler.repo.InsertAsActive(ctx, plan)
	if err != nil {
		log.Errorf("upload plan for account %d: %s", session.AccountID, err)
		http.Error(w, "store plan failed", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterPlanUploads.Inc()
	log.Debugf("account %d activated plan [%s]", session.AccountID, stored.Name)

	resp, err := json.Marshal(stored)
	if err != nil {
		log.Errorf("upload plan, marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, resp, http.StatusCreated)
}
