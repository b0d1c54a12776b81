package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"grader-bot/api/internal/ocr"
	"grader-bot/api/internal/util"
)

type Engine struct {
	APIKey string
	Model  string
}

func New(apiKey, model string) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

const transcribeSystem = `You transcribe a PHOTO of handwritten math work.
Rules:
1) Transcribe EXACTLY what is written, one solution line per output line, in the original order.
2) Keep mathematical notation as written: ^ for powers, fractions as a/b, = signs as they appear.
3) Do not solve, correct, complete or reorder anything.
4) Mark unreadable fragments as [illegible].
Return STRICT JSON:
{
  "text": string,       // the transcription, lines separated by \n
  "confidence": number  // 0..1, your confidence in the transcription
}`

// Recognize asks Gemini for a verbatim transcription of the handwriting.
// Transient failures are retried up to 3 times with a short backoff.
func (e *Engine) Recognize(ctx context.Context, image []byte, opt ocr.Options) (ocr.Result, error) {
	if e.APIKey == "" {
		return ocr.Result{}, errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return ocr.Result{}, err
	}
	defer cl.Close()

	model := e.Model
	if opt.Model != "" {
		model = opt.Model
	}
	m := cl.GenerativeModel(strings.TrimSpace(model))
	if m == nil {
		return ocr.Result{}, fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(transcribeSystem)},
	}

	parts := []genai.Part{
		genai.Text("Transcribe the handwritten work. JSON only."),
		&genai.Blob{MIMEType: util.SniffMimeHTTP(image), Data: image},
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		resp, err := m.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt) * 300 * time.Millisecond)
			continue
		}
		txt := util.StripCodeFences(strings.TrimSpace(firstText(resp)))
		if txt == "" {
			return ocr.Result{}, fmt.Errorf("gemini: empty response")
		}

		var r ocr.Result
		if err := json.Unmarshal([]byte(txt), &r); err != nil {
			// plain text instead of JSON still carries the transcription
			r = ocr.Result{Text: txt}
		}
		return r, nil
	}
	return ocr.Result{}, lastErr
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
