package yandex

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"grader-bot/api/internal/ocr"
	"grader-bot/api/internal/util"
)

// Engine recognizes handwriting via Yandex Vision OCR. The "handwritten"
// model is the default; it handles school notebooks well.
type Engine struct {
	iamc     *IamClient
	folderID string
	httpc    *http.Client
}

func New(oauthToken, folderID string) *Engine {
	return &Engine{
		iamc:     NewIamClient(oauthToken),
		folderID: folderID,
		httpc:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (e *Engine) Name() string     { return "yandex" }
func (e *Engine) GetModel() string { return "handwritten" }

type request struct {
	Content       string   `json:"content"`
	MimeType      string   `json:"mimeType,omitempty"`      // "JPEG" | "PNG" | "PDF"
	LanguageCodes []string `json:"languageCodes,omitempty"` // ["ru","en"]
	Model         string   `json:"model,omitempty"`
}

type textAnnotation struct {
	FullText string `json:"fullText,omitempty"`
	Blocks   []struct {
		Lines []struct {
			Text string `json:"text,omitempty"`
		} `json:"lines,omitempty"`
	} `json:"blocks,omitempty"`
}

type response struct {
	Result *struct {
		TextAnnotation *textAnnotation `json:"textAnnotation,omitempty"`
		Page           string          `json:"page,omitempty"`
	} `json:"result,omitempty"`
}

func (e *Engine) Recognize(ctx context.Context, image []byte, opt ocr.Options) (ocr.Result, error) {
	iamToken, err := e.iamc.Token(ctx)
	if err != nil {
		return ocr.Result{}, err
	}

	langs := opt.Langs
	if len(langs) == 0 {
		langs = []string{"ru", "en"}
	}
	model := opt.Model
	if model == "" {
		model = "handwritten"
	}
	payload, _ := json.Marshal(request{
		Content:       base64.StdEncoding.EncodeToString(image),
		MimeType:      util.SniffMimeForOCR(image),
		LanguageCodes: langs,
		Model:         model,
	})

	do := func(token string) (*http.Response, error) {
		req, _ := http.NewRequestWithContext(ctx, "POST",
			"https://ocr.api.cloud.yandex.net/ocr/v1/recognizeText",
			bytes.NewReader(payload),
		)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("x-folder-id", e.folderID)
		return e.httpc.Do(req)
	}

	resp, err := do(iamToken)
	if err != nil {
		return ocr.Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// one retry with a fresh token
		if iamToken, err = e.iamc.Refresh(ctx); err != nil {
			return ocr.Result{}, err
		}
		resp.Body.Close()
		if resp, err = do(iamToken); err != nil {
			return ocr.Result{}, err
		}
		defer resp.Body.Close()
	}
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(resp.Body)
		return ocr.Result{}, fmt.Errorf("yandex ocr %d: %s", resp.StatusCode, string(x))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ocr.Result{}, err
	}
	if out.Result == nil || out.Result.TextAnnotation == nil {
		return ocr.Result{}, nil
	}
	ta := out.Result.TextAnnotation
	if t := strings.TrimSpace(ta.FullText); t != "" {
		return ocr.Result{Text: t}, nil
	}
	// fallback: assemble from block lines
	var lines []string
	for _, b := range ta.Blocks {
		for _, l := range b.Lines {
			if s := strings.TrimSpace(l.Text); s != "" {
				lines = append(lines, s)
			}
		}
	}
	return ocr.Result{Text: strings.Join(lines, "\n")}, nil
}
