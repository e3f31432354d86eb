// Package recognize is the boundary to the external AI extraction service.
// It sends document page images to a vision model and returns loosely-typed
// field bags; a provider failure here is the one hard failure of an
// analysis pass, surfaced before the reconciliation engine runs.
package recognize

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/haolinpeng/claimflow/internal/domain/entity"
)

// DocumentType identifies what kind of document is being recognized; it
// selects the extraction prompt.
type DocumentType string

const (
	DocumentInvoice  DocumentType = "invoice"
	DocumentApproval DocumentType = "approval"
	DocumentTicket   DocumentType = "ticket"
	DocumentHotel    DocumentType = "hotel"
	DocumentTaxi     DocumentType = "taxi"
)

// Recognizer extracts structured fields from document images using a
// vision-capable chat model.
type Recognizer struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// NewRecognizer creates a new recognizer
func NewRecognizer(apiKey, model string, temperature float32, logger *zap.Logger) *Recognizer {
	return &Recognizer{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
		logger:      logger,
	}
}

// Recognize extracts fields from the given JPEG page images. The returned
// bag is never trusted as authoritative: field names, types, and formats
// vary, and the caller must pass everything through the reconcile
// normalization layer. Empty input yields an empty bag without calling the
// provider.
func (r *Recognizer) Recognize(ctx context.Context, images [][]byte, docType DocumentType) (entity.FieldBag, error) {
	if len(images) == 0 {
		return entity.FieldBag{}, nil
	}

	r.logger.Info("Recognizing document",
		zap.String("doc_type", string(docType)),
		zap.Int("image_count", len(images)))

	contentParts := []openai.ChatMessagePart{{
		Type: openai.ChatMessagePartTypeText,
		Text: promptFor(docType),
	}}
	for _, img := range images {
		contentParts = append(contentParts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(img)),
				Detail: openai.ImageURLDetailHigh,
			},
		})
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		MaxTokens:   4096,
		Temperature: r.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert in reading Chinese financial documents (发票, 审批单, 车票, 酒店账单, 出租车发票). Extract structured data accurately and always respond with valid JSON.",
			},
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: contentParts,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		r.logger.Error("Recognition call failed",
			zap.String("doc_type", string(docType)),
			zap.Error(err))
		return nil, fmt.Errorf("recognition failed for %s: %w", docType, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from recognition provider")
	}

	content := resp.Choices[0].Message.Content
	var bag entity.FieldBag
	if err := json.Unmarshal([]byte(content), &bag); err != nil {
		r.logger.Error("Failed to parse recognition result",
			zap.String("doc_type", string(docType)),
			zap.String("content", content),
			zap.Error(err))
		return nil, fmt.Errorf("failed to parse recognition result: %w", err)
	}

	r.logger.Debug("Document recognized",
		zap.String("doc_type", string(docType)),
		zap.Int("field_count", len(bag)))
	return bag, nil
}
