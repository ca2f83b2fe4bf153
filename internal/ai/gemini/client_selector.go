package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// GeminiClientSelector hands out clients in round-robin order and fails over
// to the next API key when a request errors.
type GeminiClientSelector struct {
	clients      []GeminiClient
	currentIndex int
	mutex        sync.Mutex
}

func NewGeminiClientSelector(clients []GeminiClient) *GeminiClientSelector {
	return &GeminiClientSelector{clients: clients}
}

func (s *GeminiClientSelector) GetNextClient() (*GeminiClient, int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.clients) == 0 {
		return nil, -1
	}

	index := s.currentIndex
	s.currentIndex = (s.currentIndex + 1) % len(s.clients)
	return &s.clients[index], index
}

func (s *GeminiClientSelector) GetClientCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.clients)
}

// TryAllClients runs operation against each client at most once, stopping at
// the first success.
func (s *GeminiClientSelector) TryAllClients(operation func(*GeminiClient, int) error) error {
	clientCount := s.GetClientCount()
	if clientCount == 0 {
		return fmt.Errorf("no Gemini clients available")
	}

	var lastErr error
	for attempt := 0; attempt < clientCount; attempt++ {
		client, clientIdx := s.GetNextClient()

		err := operation(client, clientIdx)
		if err == nil {
			slog.Debug("Gemini API request succeeded", "client_index", clientIdx, "attempt", attempt+1)
			return nil
		}

		lastErr = err
		slog.Warn("Gemini API request failed, trying next client",
			"client_index", clientIdx,
			"attempt", attempt+1,
			"error", err)
	}

	slog.Error("All Gemini clients exhausted", "total_attempts", clientCount, "last_error", lastErr)
	return fmt.Errorf("all %d Gemini clients failed, last error: %w", clientCount, lastErr)
}

// CloseAll releases every underlying client.
func (s *GeminiClientSelector) CloseAll(_ context.Context) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for i := range s.clients {
		if s.clients[i].Client == nil {
			continue
		}
		if err := s.clients[i].Close(); err != nil {
			slog.Warn("failed to close gemini client", "client_index", i, "error", err)
		}
	}
}
