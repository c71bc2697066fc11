package extract

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicetracker/internal/extract"
	"github.com/MrJamesThe3rd/invoicetracker/internal/http/respond"
	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
	"github.com/MrJamesThe3rd/invoicetracker/internal/supplier"
)

type Handler struct {
	extractor   *extract.Extractor
	invoiceSvc  *invoice.Service
	supplierSvc *supplier.Service
	maxUpload   int64
}

func NewHandler(extractor *extract.Extractor, invoiceSvc *invoice.Service, supplierSvc *supplier.Service, maxUpload int64) *Handler {
	return &Handler{
		extractor:   extractor,
		invoiceSvc:  invoiceSvc,
		supplierSvc: supplierSvc,
		maxUpload:   maxUpload,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.extract)
}

type draftResponse struct {
	InvoiceNumber string        `json:"invoice_number"`
	Supplier      string        `json:"supplier"`
	Amount        int64         `json:"amount"`
	Description   string        `json:"description"`
	ReceivedDate  string        `json:"received_date,omitempty"`
	Raw           extract.Draft `json:"raw"`
	CreatedID     *uuid.UUID    `json:"created_id,omitempty"`
}

// extract reads an uploaded invoice image into draft fields. With
// create=true the draft is stored as a pending invoice.
func (h *Handler) extract(w http.ResponseWriter, r *http.Request) {
	if !respond.ParseUpload(w, r, h.maxUpload) {
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "image field is required")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "reading image: "+err.Error())
		return
	}

	sess := respond.Session(r)

	draft, err := h.extractor.Extract(r.Context(), sess, image)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	params := draft.Params()
	params.Department = r.FormValue("department")

	if params.Supplier, err = h.supplierSvc.Resolve(r.Context(), params.Supplier); err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := draftResponse{
		InvoiceNumber: params.InvoiceNumber,
		Supplier:      params.Supplier,
		Amount:        params.Amount,
		Description:   params.Description,
		Raw:           *draft,
	}

	if !params.ReceivedDate.IsZero() {
		resp.ReceivedDate = params.ReceivedDate.Format(time.DateOnly)
	}

	if r.FormValue("create") != "true" {
		respond.JSON(w, http.StatusOK, resp)
		return
	}

	inv, err := h.invoiceSvc.Create(r.Context(), sess, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp.CreatedID = &inv.ID
	respond.JSON(w, http.StatusCreated, resp)
}
