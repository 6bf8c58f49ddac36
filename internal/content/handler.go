package content

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/TretaGroup/tretaweb/internal/auth"
	"github.com/TretaGroup/tretaweb/internal/instrumentation"
	"github.com/TretaGroup/tretaweb/internal/telemetry/tracing"
	"github.com/TretaGroup/tretaweb/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

type updateSectionRequest struct {
	SectionName string          `json:"sectionName"`
	Data        json.RawMessage `json:"data"`
}

type Handler struct {
	store *Store
	instr *instrumentation.Instrumentation
}

func NewHandler(store *Store, instr *instrumentation.Instrumentation) *Handler {
	return &Handler{
		store: store,
		instr: instr,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	apiRouter := mainRouter.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/update-section", handler.handleUpdateSection).Methods("POST", "OPTIONS").Name("update-section")
	apiRouter.HandleFunc("/sections/{name}", handler.handleGetSection).Methods("GET", "OPTIONS").Name("get-section")
}

func (handler *Handler) handleUpdateSection(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "contentHandler.updateSection")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		span.SetStatus(codes.Error, "no-claims")
		http.Error(w, "no authentication token provided", http.StatusUnauthorized)
		return
	}

	if !claims.Role.Authorized(auth.EditorRoles...) {
		log.Tracef("[forbidden] section update attempt by: %s", claims.Username)
		span.SetStatus(codes.Error, "role-forbidden")
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var updateReq updateSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		log.Errorf("update section, unmarshal json params: %s", err)
		http.Error(w, "update section failed", http.StatusBadRequest)
		return
	}

	if updateReq.SectionName == "" {
		http.Error(w, "error, sectionName empty", http.StatusBadRequest)
		return
	}
	if len(updateReq.Data) == 0 {
		http.Error(w, "error, data empty", http.StatusBadRequest)
		return
	}

	if err := handler.store.Save(ctx, updateReq.SectionName, updateReq.Data); err != nil {
		switch {
		case errors.Is(err, ErrInvalidSection):
			span.SetStatus(codes.Error, "invalid-section")
			http.Error(w, "error, invalid section name", http.StatusBadRequest)
		case errors.Is(err, ErrPathViolation):
			span.SetStatus(codes.Error, "path-violation")
			http.Error(w, "error, invalid path", http.StatusBadRequest)
		default:
			log.Errorf("update section [%s] failed: %s", updateReq.SectionName, err)
			span.SetStatus(codes.Error, "write-failure")
			http.Error(w, "update section failed", http.StatusInternalServerError)
		}
		return
	}

	handler.instr.CounterSectionUpdates.WithLabelValues(updateReq.SectionName).Inc()
	log.Tracef("section [%s] updated by [%s]", updateReq.SectionName, claims.Username)
	span.SetStatus(codes.Ok, "ok")

	pkg.WriteJSONResponseOK(w, `{"success":true}`)
}

func (handler *Handler) handleGetSection(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "contentHandler.getSection")
	defer span.End()

	vars := mux.Vars(r)
	sectionName := vars["name"]

	doc, err := handler.store.Get(ctx, sectionName)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidSection):
			span.SetStatus(codes.Error, "invalid-section")
			http.Error(w, "error, invalid section name", http.StatusBadRequest)
		case errors.Is(err, ErrSectionNotFound):
			span.SetStatus(codes.Error, "not-found")
			http.Error(w, "section not found", http.StatusNotFound)
		default:
			log.Errorf("get section [%s] failed: %s", sectionName, err)
			span.SetStatus(codes.Error, "read-failure")
			http.Error(w, "get section failed", http.StatusInternalServerError)
		}
		return
	}

	span.SetStatus(codes.Ok, "ok")
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, doc)
}
