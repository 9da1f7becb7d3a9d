package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/lurker/pkg/embeddings"
	"github.com/papercomputeco/lurker/pkg/vector"
)

// tagsResponse is the response from Ollama's model listing API.
type tagsResponse struct {
	Models []struct {
		Name       string    `json:"name"`
		Size       int64     `json:"size"`
		ModifiedAt time.Time `json:"modified_at"`
	} `json:"models"`
}

// pullRequest is the request body for Ollama's model pull API.
type pullRequest struct {
	Model  string `json:"model"`
	Stream bool   `json:"stream"`
}

// pullProgress is a single NDJSON line from the streaming pull API.
type pullProgress struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// ListModels returns the models currently available on the Ollama server.
func (e *Embedder) ListModels(ctx context.Context) ([]embeddings.Model, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", e.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", vector.ErrConnection, err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", vector.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: ollama returned status %d: %s", vector.ErrConnection, resp.StatusCode, string(body))
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", vector.ErrConnection, err)
	}

	models := make([]embeddings.Model, 0, len(tags.Models))
	for _, m := range tags.Models {
		models = append(models, embeddings.Model{
			Name:       m.Name,
			Size:       m.Size,
			ModifiedAt: m.ModifiedAt,
		})
	}

	return models, nil
}

// EnsureModel checks that the configured model (or name, when non-empty) is
// available on the server, pulling it when absent. Returns true when a pull
// was performed.
func (e *Embedder) EnsureModel(ctx context.Context, name string) (bool, error) {
	if name == "" {
		name = e.model
	}

	models, err := e.ListModels(ctx)
	if err != nil {
		return false, err
	}

	for _, m := range models {
		if modelMatches(name, m.Name) {
			return false, nil
		}
	}

	if err := e.pull(ctx, name); err != nil {
		return false, err
	}

	return true, nil
}

// modelMatches reports whether available satisfies a request for name.
// "nomic-embed-text" is satisfied by "nomic-embed-text", by
// "nomic-embed-text:latest", and by any other "nomic-embed-text:<tag>".
func modelMatches(name, available string) bool {
	return available == name ||
		available == name+":latest" ||
		strings.HasPrefix(available, name+":")
}

// pull downloads a model via the streaming pull API, consuming progress
// lines until the server reports success or an error.
func (e *Embedder) pull(ctx context.Context, name string) error {
	reqBody := pullRequest{
		Model:  name,
		Stream: true,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("%w: marshaling pull request: %v", vector.ErrConnection, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/api/pull", bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("%w: creating pull request: %v", vector.ErrConnection, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.pullClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: sending pull request: %v", vector.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: ollama returned status %d: %s", vector.ErrConnection, resp.StatusCode, string(body))
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var progress pullProgress
		if err := json.Unmarshal(line, &progress); err != nil {
			return fmt.Errorf("%w: decoding pull progress: %v", vector.ErrConnection, err)
		}

		if progress.Error != "" {
			return fmt.Errorf("%w: pulling %s: %s", vector.ErrConnection, name, progress.Error)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: reading pull stream: %v", vector.ErrConnection, err)
	}

	return nil
}

// Ensure Embedder implements embeddings.ModelManager
var _ embeddings.ModelManager = (*Embedder)(nil)
