package handler

import (
	"net/http"
	"strings"

	"github.com/amalthea/finance-api/internal/domain"
	"github.com/amalthea/finance-api/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type SequenceHandler struct {
	sequenceService *service.SequenceService
	logger          *zap.Logger
}

func NewSequenceHandler(sequenceService *service.SequenceService, logger *zap.Logger) *SequenceHandler {
	return &SequenceHandler{
		sequenceService: sequenceService,
		logger:          logger,
	}
}

func docTypeParam(r *http.Request) domain.DocType {
	return domain.DocType(strings.ToUpper(chi.URLParam(r, "docType")))
}

// Allocate godoc
// @Summary Allocate a document number
// @Description Hands out the next number for the doc type in the caller's organization.
// @Description When the store is unavailable a provisional number is returned instead of an error.
// @Tags Sequences
// @Produce json
// @Param docType path string true "Doc type" Enums(SO, PO, INV, BILL)
// @Success 200 {object} domain.AllocatedNumber
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sequences/{docType}/allocate [post]
func (h *SequenceHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	number, err := h.sequenceService.Allocate(r.Context(), actor.OrgID, docTypeParam(r))
	if err != nil {
		handleError(w, h.logger, "failed to allocate number", err)
		return
	}
	respondJSON(w, http.StatusOK, number)
}

// List godoc
// @Summary List sequences
// @Description Returns every sequence the caller's organization has used.
// @Tags Sequences
// @Produce json
// @Success 200 {array} domain.SequenceDTO
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sequences [get]
func (h *SequenceHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	sequences, err := h.sequenceService.List(r.Context(), actor.OrgID)
	if err != nil {
		handleError(w, h.logger, "failed to list sequences", err)
		return
	}
	respondJSON(w, http.StatusOK, sequences)
}

// Peek godoc
// @Summary Get sequence state
// @Description Returns the next value of a sequence without allocating it.
// @Tags Sequences
// @Produce json
// @Param docType path string true "Doc type" Enums(SO, PO, INV, BILL)
// @Success 200 {object} domain.SequenceDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sequences/{docType} [get]
func (h *SequenceHandler) Peek(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	seq, err := h.sequenceService.Peek(r.Context(), actor.OrgID, docTypeParam(r))
	if err != nil {
		handleError(w, h.logger, "failed to read sequence", err)
		return
	}
	respondJSON(w, http.StatusOK, seq)
}

// Initialize godoc
// @Summary Raise a sequence
// @Description Sets the next value of a sequence after a data import. The value is never lowered.
// @Tags Sequences
// @Accept json
// @Produce json
// @Param docType path string true "Doc type" Enums(SO, PO, INV, BILL)
// @Param request body domain.InitializeSequenceRequest true "Next value"
// @Success 200 {object} domain.SequenceDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sequences/{docType} [put]
func (h *SequenceHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req domain.InitializeSequenceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	seq, err := h.sequenceService.Initialize(r.Context(), actor.OrgID, docTypeParam(r), req.NextValue)
	if err != nil {
		handleError(w, h.logger, "failed to initialize sequence", err)
		return
	}
	respondJSON(w, http.StatusOK, seq)
}
