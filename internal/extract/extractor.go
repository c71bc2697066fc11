// Package extract reads invoice fields from a photo or scan of an invoice
// using a vision-capable chat model.
package extract

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
)

var (
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrNotConfigured    = errors.New("extraction is not configured")
	ErrNoResult         = errors.New("no extraction result")
)

var supportedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

const systemPrompt = "You read supplier invoices and return their fields as JSON. Respond with valid JSON only."

const userPrompt = `Extract these fields from the invoice image:
- invoice_number: the invoice number or reference as printed
- supplier: the name of the company that issued the invoice
- amount: the total amount payable, digits with a dot as decimal separator, no currency symbol
- received_date: the invoice date in YYYY-MM-DD format
- description: a one-line summary of what was invoiced
Use an empty string for any field you cannot read.`

// Draft is the model's reading of an invoice. It is not validated.
type Draft struct {
	InvoiceNumber string `json:"invoice_number"`
	Supplier      string `json:"supplier"`
	Amount        string `json:"amount"`
	ReceivedDate  string `json:"received_date"`
	Description   string `json:"description"`
}

// Params converts the draft to create params. Unreadable amount or date
// are left zero so validation reports them.
func (d Draft) Params() invoice.CreateParams {
	p := invoice.CreateParams{
		InvoiceNumber: strings.TrimSpace(d.InvoiceNumber),
		Supplier:      strings.TrimSpace(d.Supplier),
		Description:   strings.TrimSpace(d.Description),
	}

	if amount, err := invoice.ParseAmount(d.Amount); err == nil {
		p.Amount = amount
	}

	if date, err := time.Parse("2006-01-02", strings.TrimSpace(d.ReceivedDate)); err == nil {
		p.ReceivedDate = date
	}

	return p
}

type Extractor struct {
	client *openai.Client
	model  string
}

// NewExtractor returns nil when apiKey is empty; Extract on a nil
// extractor reports ErrNotConfigured.
func NewExtractor(apiKey, model, baseURL string) *Extractor {
	if apiKey == "" {
		return nil
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &Extractor{client: openai.NewClientWithConfig(cfg), model: model}
}

func (e *Extractor) Extract(ctx context.Context, sess access.Session, image []byte) (*Draft, error) {
	if err := access.Authorize(sess, access.ActionCreateInvoice); err != nil {
		return nil, err
	}

	if e == nil {
		return nil, ErrNotConfigured
	}

	contentType := http.DetectContentType(image)
	if !supportedTypes[contentType] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, contentType)
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		MaxTokens:   1024,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: userPrompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(image),
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vision request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrNoResult
	}

	var draft Draft
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &draft); err != nil {
		return nil, fmt.Errorf("decoding extraction: %w", err)
	}

	slog.InfoContext(ctx, "invoice extracted", "invoice_number", draft.InvoiceNumber, "supplier", draft.Supplier)

	return &draft, nil
}
