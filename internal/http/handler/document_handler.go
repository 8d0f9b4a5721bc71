package handler

import (
	"net/http"

	"github.com/amalthea/finance-api/internal/domain"
	"github.com/amalthea/finance-api/internal/mapper"
	"github.com/amalthea/finance-api/internal/repository"
	"github.com/amalthea/finance-api/internal/service"
	"go.uber.org/zap"
)

// DocumentHandler serves every document kind; the kind comes from the URL
type DocumentHandler struct {
	documentService  *service.DocumentService
	lifecycleService *service.LifecycleService
	logger           *zap.Logger
}

func NewDocumentHandler(documentService *service.DocumentService, lifecycleService *service.LifecycleService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService:  documentService,
		lifecycleService: lifecycleService,
		logger:           logger,
	}
}

// List godoc
// @Summary List documents
// @Tags Documents
// @Produce json
// @Param kind path string true "Document kind" Enums(sales-orders, purchase-orders, customer-invoices, vendor-bills, expenses, timesheets)
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param projectId query string false "Filter by project" format(uuid)
// @Param ownerId query string false "Filter by owner" format(uuid)
// @Param status query string false "Filter by status"
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, status)
// @Param sortOrder query string false "Sort order" Enums(asc, desc) default(desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.DocumentDTO}
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{kind} [get]
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	kind, ok := parseKindParam(w, r)
	if !ok {
		return
	}

	filters := &repository.DocumentFilters{Status: r.URL.Query().Get("status")}
	var err error
	if filters.ProjectID, err = optionalUUIDQuery(r, "projectId"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filters.OwnerID, err = optionalUUIDQuery(r, "ownerId"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	sort := repository.DefaultSortConfig()
	if sortBy := r.URL.Query().Get("sortBy"); sortBy != "" {
		sort.Field = sortBy
	}
	sort.Order = repository.ParseSortOrder(r.URL.Query().Get("sortOrder"))

	page, pageSize := parsePagination(r)
	result, err := h.documentService.List(r.Context(), kind, actor, filters, sort, page, pageSize)
	if err != nil {
		handleError(w, h.logger, "failed to list documents", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create a document
// @Description Creates a document in its initial status. Orders, invoices and bills get a number from the organization's sequence.
// @Tags Documents
// @Accept json
// @Produce json
// @Param kind path string true "Document kind"
// @Param request body domain.CreateDocumentRequest true "Document data"
// @Success 201 {object} domain.DocumentDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{kind} [post]
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	kind, ok := parseKindParam(w, r)
	if !ok {
		return
	}

	var req domain.CreateDocumentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	doc, err := h.documentService.Create(r.Context(), kind, actor, &req)
	if err != nil {
		handleError(w, h.logger, "failed to create document", err)
		return
	}

	w.Header().Set("Location", "/api/v1/documents/"+kind.Slug()+"/"+doc.ID.String())
	respondJSON(w, http.StatusCreated, doc)
}

// GetByID godoc
// @Summary Get a document
// @Tags Documents
// @Produce json
// @Param kind path string true "Document kind"
// @Param id path string true "Document ID" format(uuid)
// @Success 200 {object} domain.DocumentDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{kind}/{id} [get]
func (h *DocumentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	kind, ok := parseKindParam(w, r)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(w, r, "id", "document")
	if !ok {
		return
	}

	doc, err := h.documentService.Get(r.Context(), kind, id, actor)
	if err != nil {
		handleError(w, h.logger, "failed to get document", err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// GetState godoc
// @Summary Get the lifecycle state of a document
// @Tags Documents
// @Produce json
// @Param kind path string true "Document kind"
// @Param id path string true "Document ID" format(uuid)
// @Success 200 {object} domain.DocumentStateDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{kind}/{id}/state [get]
func (h *DocumentHandler) GetState(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	kind, ok := parseKindParam(w, r)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(w, r, "id", "document")
	if !ok {
		return
	}

	state, err := h.lifecycleService.GetState(r.Context(), kind, id, actor)
	if err != nil {
		handleError(w, h.logger, "failed to get document state", err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToDocumentStateDTO(state))
}

// Update godoc
// @Summary Edit a document
// @Description Only the owner may edit, and only while the document is in its initial or rejected status.
// @Tags Documents
// @Accept json
// @Produce json
// @Param kind path string true "Document kind"
// @Param id path string true "Document ID" format(uuid)
// @Param request body domain.UpdateDocumentRequest true "Fields to change"
// @Success 200 {object} domain.DocumentDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{kind}/{id} [put]
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	kind, ok := parseKindParam(w, r)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(w, r, "id", "document")
	if !ok {
		return
	}

	var req domain.UpdateDocumentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	doc, err := h.documentService.Edit(r.Context(), kind, id, actor, &req)
	if err != nil {
		handleError(w, h.logger, "failed to edit document", err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// Transition godoc
// @Summary Change document status
// @Description Moves a document along its lifecycle. A reason is required when rejecting.
// @Tags Documents
// @Accept json
// @Produce json
// @Param kind path string true "Document kind"
// @Param id path string true "Document ID" format(uuid)
// @Param request body domain.TransitionRequest true "Target status"
// @Success 200 {object} domain.DocumentStateDTO
// @Failure 400 {object} domain.APIError "Missing reason or invalid body"
// @Failure 403 {object} domain.APIError "Actor may not take this transition"
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Transition not allowed from the current status"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{kind}/{id}/transitions [post]
func (h *DocumentHandler) Transition(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	kind, ok := parseKindParam(w, r)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(w, r, "id", "document")
	if !ok {
		return
	}

	var req domain.TransitionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	state, err := h.lifecycleService.Transition(r.Context(), service.TransitionCommand{
		Kind:       kind,
		DocumentID: id,
		To:         req.To,
		Actor:      actor,
		Reason:     req.Reason,
	})
	if err != nil {
		handleError(w, h.logger, "failed to transition document", err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToDocumentStateDTO(state))
}

// AllowedTransitions godoc
// @Summary List transitions available to the caller
// @Tags Documents
// @Produce json
// @Param kind path string true "Document kind"
// @Param id path string true "Document ID" format(uuid)
// @Success 200 {array} domain.AllowedTransitionDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{kind}/{id}/transitions [get]
func (h *DocumentHandler) AllowedTransitions(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	kind, ok := parseKindParam(w, r)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(w, r, "id", "document")
	if !ok {
		return
	}

	allowed, err := h.lifecycleService.AllowedTransitions(r.Context(), kind, id, actor)
	if err != nil {
		handleError(w, h.logger, "failed to list allowed transitions", err)
		return
	}
	respondJSON(w, http.StatusOK, allowed)
}

// History godoc
// @Summary Status history of a document
// @Tags Documents
// @Produce json
// @Param kind path string true "Document kind"
// @Param id path string true "Document ID" format(uuid)
// @Success 200 {array} domain.StatusHistoryDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{kind}/{id}/history [get]
func (h *DocumentHandler) History(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	kind, ok := parseKindParam(w, r)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(w, r, "id", "document")
	if !ok {
		return
	}

	history, err := h.lifecycleService.History(r.Context(), kind, id, actor)
	if err != nil {
		handleError(w, h.logger, "failed to get status history", err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// BulkTransition godoc
// @Summary Change status of many documents
// @Description Each document is transitioned independently; failures are reported per id.
// @Tags Documents
// @Accept json
// @Produce json
// @Param kind path string true "Document kind"
// @Param request body domain.BulkTransitionRequest true "Ids and target status"
// @Success 200 {object} domain.BulkTransitionResult
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{kind}/bulk-transitions [post]
func (h *DocumentHandler) BulkTransition(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	kind, ok := parseKindParam(w, r)
	if !ok {
		return
	}

	var req domain.BulkTransitionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.lifecycleService.BulkTransition(r.Context(), kind, req.IDs, req.To, actor, req.Reason)
	if err != nil && result == nil {
		handleError(w, h.logger, "failed to bulk transition documents", err)
		return
	}
	if err != nil {
		h.logger.Warn("bulk transition interrupted",
			zap.Int("succeeded", len(result.Succeeded)),
			zap.Int("failed", len(result.Failed)),
			zap.Error(err))
	}
	respondJSON(w, http.StatusOK, result)
}

// Stats godoc
// @Summary Count and amount per status
// @Tags Documents
// @Produce json
// @Param kind path string true "Document kind"
// @Param projectId query string false "Restrict to a project" format(uuid)
// @Success 200 {array} domain.StatusStatDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{kind}/stats [get]
func (h *DocumentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	kind, ok := parseKindParam(w, r)
	if !ok {
		return
	}
	projectID, err := optionalUUIDQuery(r, "projectId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := h.documentService.StatusStats(r.Context(), kind, actor.OrgID, projectID)
	if err != nil {
		handleError(w, h.logger, "failed to compute status stats", err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// AddExpenseToInvoice godoc
// @Summary Bill an expense on an invoice
// @Description Adds an approved, billable, not yet invoiced expense as a line of a draft invoice of the same project.
// @Tags Expenses
// @Accept json
// @Produce json
// @Param id path string true "Expense ID" format(uuid)
// @Param request body domain.AddExpenseToInvoiceRequest true "Target invoice"
// @Success 200 {object} domain.DocumentDTO "Updated invoice"
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /expenses/{id}/invoice [post]
func (h *DocumentHandler) AddExpenseToInvoice(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	expenseID, ok := parseUUIDParam(w, r, "id", "expense")
	if !ok {
		return
	}

	var req domain.AddExpenseToInvoiceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	invoice, err := h.documentService.AddExpenseToInvoice(r.Context(), expenseID, req.InvoiceID, actor)
	if err != nil {
		handleError(w, h.logger, "failed to add expense to invoice", err)
		return
	}
	respondJSON(w, http.StatusOK, invoice)
}
