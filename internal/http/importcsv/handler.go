package importcsv

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
	"github.com/MrJamesThe3rd/invoicetracker/internal/http/respond"
	"github.com/MrJamesThe3rd/invoicetracker/internal/importer"
	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
	"github.com/MrJamesThe3rd/invoicetracker/internal/supplier"
)

type Handler struct {
	importSvc   *importer.Service
	invoiceSvc  *invoice.Service
	supplierSvc *supplier.Service
	maxUpload   int64
}

func NewHandler(importSvc *importer.Service, invoiceSvc *invoice.Service, supplierSvc *supplier.Service, maxUpload int64) *Handler {
	return &Handler{
		importSvc:   importSvc,
		invoiceSvc:  invoiceSvc,
		supplierSvc: supplierSvc,
		maxUpload:   maxUpload,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importFile)
	r.Post("/confirm", h.confirmImport)
}

type paramsDTO struct {
	InvoiceNumber string `json:"invoice_number"`
	Supplier      string `json:"supplier"`
	Amount        int64  `json:"amount"`
	Description   string `json:"description,omitempty"`
	ReceivedDate  string `json:"received_date"`
	Department    string `json:"department,omitempty"`
	AssignedTo    string `json:"assigned_to,omitempty"`
}

type rowErrorDTO struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type previewResponse struct {
	Invoices []paramsDTO   `json:"invoices"`
	Errors   []rowErrorDTO `json:"errors"`
}

type importSuccessResponse struct {
	Imported int      `json:"imported"`
	IDs      []string `json:"ids"`
}

// importFile parses an uploaded csv or xlsx file and returns the preview.
// With commit=true and no rejected rows the invoices are created at once.
func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	sess := respond.Session(r)
	if err := access.Authorize(sess, access.ActionCreateInvoice); err != nil {
		respond.Error(w, r, err)
		return
	}

	if !respond.ParseUpload(w, r, h.maxUpload) {
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	format := importer.Format(r.FormValue("format"))
	if format == "" {
		format = importer.FormatFromFilename(header.Filename)
	}

	res, err := h.importSvc.Import(format, file)
	if err != nil {
		respond.Message(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.supplierSvc.ResolveAll(r.Context(), res.Invoices); err != nil {
		respond.Error(w, r, err)
		return
	}

	if r.FormValue("commit") == "true" && len(res.Errors) == 0 {
		h.create(w, r, sess, res.Invoices)
		return
	}

	respond.JSON(w, http.StatusOK, toPreview(res))
}

type confirmRequest struct {
	Invoices []paramsDTO `json:"invoices"`
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	params := make([]invoice.CreateParams, 0, len(req.Invoices))

	for _, p := range req.Invoices {
		received, err := time.Parse(time.DateOnly, p.ReceivedDate)
		if err != nil {
			respond.Message(w, http.StatusBadRequest, "invalid received_date for "+p.InvoiceNumber)
			return
		}

		params = append(params, invoice.CreateParams{
			InvoiceNumber: p.InvoiceNumber,
			Supplier:      p.Supplier,
			Amount:        p.Amount,
			Description:   p.Description,
			ReceivedDate:  received,
			Department:    p.Department,
			AssignedTo:    p.AssignedTo,
		})
	}

	h.create(w, r, respond.Session(r), params)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, sess access.Session, params []invoice.CreateParams) {
	invs, err := h.invoiceSvc.CreateBatch(r.Context(), sess, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := importSuccessResponse{Imported: len(invs), IDs: make([]string, len(invs))}
	for i, inv := range invs {
		resp.IDs[i] = inv.ID.String()
	}

	respond.JSON(w, http.StatusCreated, resp)
}

func toPreview(res *importer.Result) previewResponse {
	resp := previewResponse{
		Invoices: make([]paramsDTO, 0, len(res.Invoices)),
		Errors:   make([]rowErrorDTO, 0, len(res.Errors)),
	}

	for _, p := range res.Invoices {
		resp.Invoices = append(resp.Invoices, paramsDTO{
			InvoiceNumber: p.InvoiceNumber,
			Supplier:      p.Supplier,
			Amount:        p.Amount,
			Description:   p.Description,
			ReceivedDate:  p.ReceivedDate.Format(time.DateOnly),
			Department:    p.Department,
			AssignedTo:    p.AssignedTo,
		})
	}

	for _, e := range res.Errors {
		resp.Errors = append(resp.Errors, rowErrorDTO{Row: e.Row, Error: e.Err.Error()})
	}

	return resp
}
