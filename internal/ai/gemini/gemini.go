package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiClient struct {
	Client     *genai.Client
	FlashModel *genai.GenerativeModel
	ProModel   *genai.GenerativeModel
}

func NewGenAIClient(ctx context.Context, apiKey, flashModelName, proModelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("genai client init failed: %w", err)
	}

	flash := client.GenerativeModel(flashModelName)
	flash.ResponseMIMEType = "application/json"

	return &GeminiClient{
		Client:     client,
		FlashModel: flash,
		ProModel:   client.GenerativeModel(proModelName),
	}, nil
}

// NewGenAIClients builds one client per API key. Keys that fail to initialise
// are logged and skipped.
func NewGenAIClients(ctx context.Context, apiKeys []string, flashModelName, proModelName string) []GeminiClient {
	clients := make([]GeminiClient, 0, len(apiKeys))
	for i, key := range apiKeys {
		client, err := NewGenAIClient(ctx, key, flashModelName, proModelName)
		if err != nil {
			slog.Error("failed to create gemini client", "key_index", i, "error", err)
			continue
		}
		clients = append(clients, *client)
	}
	return clients
}

func (g *GeminiClient) Close() error {
	return g.Client.Close()
}

// SendAIWithGeoJSON sends the plot GeoJSON inline with the prompt and decodes
// the JSON object the model answers with.
func (g *GeminiClient) SendAIWithGeoJSON(ctx context.Context, prompt string, geojson []byte) (map[string]any, error) {
	resp, err := g.FlashModel.GenerateContent(ctx,
		genai.Text(prompt),
		genai.Blob{
			MIMEType: "text/plain",
			Data:     geojson,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("no content returned from AI")
	}
	textPart, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("response part is not text, received %T", resp.Candidates[0].Content.Parts[0])
	}
	return ParseJSONResponse(string(textPart))
}

// ParseJSONResponse strips an optional markdown fence around the model output
// and decodes it as a JSON object.
func ParseJSONResponse(aiResponse string) (map[string]any, error) {
	aiResponse = strings.TrimSpace(aiResponse)
	if strings.HasPrefix(aiResponse, "```") {
		aiResponse = strings.TrimPrefix(aiResponse, "```json")
		aiResponse = strings.TrimPrefix(aiResponse, "```")
		aiResponse = strings.TrimSuffix(aiResponse, "```")
	}
	aiResponse = strings.TrimSpace(aiResponse)

	var resultMap map[string]any
	if err := json.Unmarshal([]byte(aiResponse), &resultMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal AI response to JSON: %w. \nRaw response was: %s", err, aiResponse)
	}
	return resultMap, nil
}

// SendAIWithGeoJSONAndRetry attempts the request with failover across every
// configured client.
func SendAIWithGeoJSONAndRetry(ctx context.Context, prompt string, geojson []byte, selector *GeminiClientSelector) (map[string]any, error) {
	var result map[string]any

	err := selector.TryAllClients(func(client *GeminiClient, clientIdx int) error {
		resp, err := client.SendAIWithGeoJSON(ctx, prompt, geojson)
		if err != nil {
			return err
		}
		result = resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
