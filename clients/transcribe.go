package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dedsec995/sage/session"
)

// Transcriber converts an audio file into diarized utterances.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]session.Utterance, error)
}

type diarizedSeg struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
}

type transcribeResp struct {
	Segments []diarizedSeg `json:"segments"`
	Language string        `json:"language"`
}

// OpenAITranscriber calls the audio.transcriptions endpoint with a
// diarizing model.
type OpenAITranscriber struct {
	http   *HTTP
	url    string
	model  string
	apiKey string
}

func NewOpenAITranscriber(h *HTTP, url, model, apiKey string) *OpenAITranscriber {
	return &OpenAITranscriber{http: h, url: url, model: model, apiKey: apiKey}
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string) ([]session.Utterance, error) {
	fd, err := os.Open(audioPath)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	if err := w.WriteField("model", t.model); err != nil {
		return nil, err
	}
	if err := w.WriteField("response_format", "diarized_json"); err != nil {
		return nil, err
	}
	if err := w.WriteField("chunking_strategy", "auto"); err != nil {
		return nil, err
	}
	fw, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, err
	}
	if _, err = io.Copy(fw, fd); err != nil {
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url+"/audio/transcriptions", &b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.http.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("transcribe %s: %s", resp.Status, string(body))
	}

	var out transcribeResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("transcribe decode: %w", err)
	}

	utts := make([]session.Utterance, 0, len(out.Segments))
	for _, s := range out.Segments {
		utts = append(utts, session.Utterance{
			Start:   s.Start,
			End:     s.End,
			Speaker: s.Speaker,
			Text:    s.Text,
		})
	}
	return utts, nil
}
