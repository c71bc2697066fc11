package invoice

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
	"github.com/MrJamesThe3rd/invoicetracker/internal/http/respond"
	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
)

type Handler struct {
	svc *invoice.Service
	now func() time.Time
}

func NewHandler(svc *invoice.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/stats", h.stats)
	r.Get("/overdue", h.overdue)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/transitions", h.transitions)
	r.Post("/{id}/transition", h.transition)
	r.Post("/{id}/approve", h.simple((*invoice.Service).Approve))
	r.Post("/{id}/reject", h.simple((*invoice.Service).Reject))
	r.Post("/{id}/reopen", h.simple((*invoice.Service).Reopen))
	r.Post("/{id}/assign", h.assign)
	r.Post("/{id}/send-to-finance", h.sendToFinance)
	r.Post("/{id}/mark-paid", h.markPaid)
	r.Put("/{id}/finance-notes", h.notes((*invoice.Service).UpdateFinanceNotes))
	r.Put("/{id}/supply-chain-notes", h.notes((*invoice.Service).UpdateSupplyChainNotes))
}

type createInvoiceRequest struct {
	InvoiceNumber string `json:"invoice_number"`
	Supplier      string `json:"supplier"`
	Amount        int64  `json:"amount"`
	Description   string `json:"description"`
	ReceivedDate  string `json:"received_date"`
	Department    string `json:"department"`
	AssignedTo    string `json:"assigned_to"`
	FileURL       string `json:"file_url"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	received, err := ParseDate(req.ReceivedDate)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := h.svc.Create(r.Context(), respond.Session(r), invoice.CreateParams{
		InvoiceNumber: req.InvoiceNumber,
		Supplier:      req.Supplier,
		Amount:        req.Amount,
		Description:   req.Description,
		ReceivedDate:  received,
		Department:    req.Department,
		AssignedTo:    req.AssignedTo,
		FileURL:       req.FileURL,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(inv, h.now()))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	invs, err := h.svc.List(r.Context(), respond.Session(r), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(invs, h.now()))
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	stats, err := h.svc.Stats(r.Context(), respond.Session(r), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toStatsResponse(stats))
}

func (h *Handler) overdue(w http.ResponseWriter, r *http.Request) {
	now := h.now()

	invs, err := h.svc.ListOverdue(r.Context(), respond.Session(r), now)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(invs, now))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	inv, err := h.svc.Get(r.Context(), respond.Session(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(inv, h.now()))
}

type updateInvoiceRequest struct {
	InvoiceNumber    *string `json:"invoice_number,omitempty"`
	Supplier         *string `json:"supplier,omitempty"`
	Amount           *int64  `json:"amount,omitempty"`
	Description      *string `json:"description,omitempty"`
	ReceivedDate     *string `json:"received_date,omitempty"`
	Department       *string `json:"department,omitempty"`
	AssignedTo       *string `json:"assigned_to,omitempty"`
	FileURL          *string `json:"file_url,omitempty"`
	FinanceNotes     *string `json:"finance_notes,omitempty"`
	SupplyChainNotes *string `json:"supply_chain_notes,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req updateInvoiceRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	params := invoice.UpdateParams{
		InvoiceNumber:    req.InvoiceNumber,
		Supplier:         req.Supplier,
		Amount:           req.Amount,
		Description:      req.Description,
		Department:       req.Department,
		AssignedTo:       req.AssignedTo,
		FileURL:          req.FileURL,
		FinanceNotes:     req.FinanceNotes,
		SupplyChainNotes: req.SupplyChainNotes,
	}

	if req.ReceivedDate != nil {
		d, err := ParseDate(*req.ReceivedDate)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		params.ReceivedDate = &d
	}

	inv, err := h.svc.Update(r.Context(), respond.Session(r), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(inv, h.now()))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), respond.Session(r), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) transitions(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	inv, err := h.svc.Get(r.Context(), respond.Session(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"status": inv.Status,
		"next":   invoice.NextStatuses(inv.Status),
	})
}

type transitionRequest struct {
	Status string `json:"status"`
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req transitionRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	to, err := invoice.ParseStatus(req.Status)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := h.svc.Transition(r.Context(), respond.Session(r), id, to)
	h.write(w, r, inv, err)
}

type workflowFunc func(*invoice.Service, context.Context, access.Session, uuid.UUID) (*invoice.Invoice, error)

func (h *Handler) simple(fn workflowFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		inv, err := fn(h.svc, r.Context(), respond.Session(r), id)
		h.write(w, r, inv, err)
	}
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type notesFunc func(*invoice.Service, context.Context, access.Session, uuid.UUID, string) (*invoice.Invoice, error)

func (h *Handler) notes(fn notesFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		var req notesRequest
		if !respond.Decode(w, r, &req) {
			return
		}

		inv, err := fn(h.svc, r.Context(), respond.Session(r), id, req.Notes)
		h.write(w, r, inv, err)
	}
}

func (h *Handler) sendToFinance(w http.ResponseWriter, r *http.Request) {
	h.notes((*invoice.Service).SendToFinance)(w, r)
}

type assignRequest struct {
	AssignedTo string `json:"assigned_to"`
	Notes      string `json:"notes"`
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req assignRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	inv, err := h.svc.AssignToSupplyChain(r.Context(), respond.Session(r), id, req.AssignedTo, req.Notes)
	h.write(w, r, inv, err)
}

type markPaidRequest struct {
	PaymentDate string `json:"payment_date"`
	Notes       string `json:"notes"`
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req markPaidRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	paid, err := ParseDate(req.PaymentDate)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := h.svc.MarkPaid(r.Context(), respond.Session(r), id, paid, req.Notes)
	h.write(w, r, inv, err)
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, inv *invoice.Invoice, err error) {
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(inv, h.now()))
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}

	return id, true
}

// ParseDate accepts YYYY-MM-DD. An empty string yields the zero time so the
// service can report the missing field.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", invoice.ErrInvalidInput, s)
	}

	return t, nil
}

// ParseFilter reads status, department, search, from and to query
// parameters.
func ParseFilter(r *http.Request) (invoice.ListFilter, error) {
	return FilterFromValues(r.URL.Query())
}

// FilterFromValues builds a list filter from the same keys ParseFilter reads.
func FilterFromValues(q url.Values) (invoice.ListFilter, error) {
	filter := invoice.ListFilter{Search: q.Get("search")}

	if s := q.Get("status"); s != "" {
		st, err := invoice.ParseStatus(s)
		if err != nil {
			return filter, err
		}

		filter.Status = &st
	}

	if s := q.Get("department"); s != "" {
		filter.Department = new(s)
	}

	if s := q.Get("from"); s != "" {
		t, err := ParseDate(s)
		if err != nil {
			return filter, err
		}

		filter.ReceivedFrom = &t
	}

	if s := q.Get("to"); s != "" {
		t, err := ParseDate(s)
		if err != nil {
			return filter, err
		}

		filter.ReceivedTo = &t
	}

	return filter, nil
}
