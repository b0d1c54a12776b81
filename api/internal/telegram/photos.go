package telegram

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"math"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"grader-bot/api/internal/grading"
	"grader-bot/api/internal/ocr"
	"grader-bot/api/internal/steps"
	"grader-bot/api/internal/util"
)

// cacheMaxAge bounds how old a cached grading run may be before the photo is
// re-recognized.
const cacheMaxAge = 14 * 24 * time.Hour

func (r *Router) acceptPhoto(msg tgbotapi.Message) {
	cid := msg.Chat.ID
	if getSolution(cid) == "" {
		r.send(cid, "Pick an answer key first: /solutions, then /use <name>.")
		return
	}

	ph := msg.Photo[len(msg.Photo)-1]
	file, err := r.Bot.GetFile(tgbotapi.FileConfig{FileID: ph.FileID})
	if err != nil {
		r.SendError(cid, err)
		return
	}
	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", r.Bot.Token, file.FilePath)
	imgBytes, err := download(url)
	if err != nil {
		r.SendError(cid, err)
		return
	}

	key := "chat:" + fmt.Sprint(cid)
	if msg.MediaGroupID != "" {
		key = "grp:" + msg.MediaGroupID
	}

	bi, _ := batches.LoadOrStore(key, &photoBatch{
		ChatID: cid, Key: key, MediaGroupID: msg.MediaGroupID, images: make([][]byte, 0, 4),
	})
	b := bi.(*photoBatch)

	b.mu.Lock()
	b.images = append(b.images, imgBytes)
	first := len(b.images) == 1
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(debounce, func() { r.processBatch(key) })
	b.mu.Unlock()

	if first {
		r.send(cid, r.PhotoAcceptedText())
	}
}

func (r *Router) processBatch(key string) {
	ctx := context.Background()
	bi, ok := batches.Load(key)
	if !ok {
		return
	}
	b := bi.(*photoBatch)

	b.mu.Lock()
	images := append([][]byte(nil), b.images...)
	chatID := b.ChatID
	mediaGroupID := b.MediaGroupID
	batches.Delete(key)
	b.mu.Unlock()

	if len(images) == 0 {
		return
	}

	merged, err := combineAsOne(images)
	if err != nil {
		r.SendError(chatID, fmt.Errorf("stitching pages: %w", err))
		return
	}

	r.gradePhoto(ctx, chatID, mediaGroupID, merged)
}

// gradePhoto runs the pipeline for one stitched submission photo:
// cache lookup, OCR, segmentation, grading, report.
func (r *Router) gradePhoto(ctx context.Context, chatID int64, mediaGroupID string, img []byte) {
	name := getSolution(chatID)
	gold, err := r.Solutions.Load(name)
	if err != nil {
		r.SendError(chatID, err)
		return
	}

	hash := util.SHA256Hex(img)
	if r.Results != nil {
		if row, err := r.Results.FindByHash(ctx, hash, name, cacheMaxAge); err == nil {
			r.SendReport(chatID, r.Feedback.Report(&row.Result, gold))
			return
		}
	}

	engine := r.EngManager.Get(chatID)
	ctx, cancel := context.WithTimeout(ctx, 90*time.Second)
	defer cancel()

	out, err := engine.Recognize(ctx, img, ocr.Options{})
	if err != nil {
		r.SendError(chatID, fmt.Errorf("recognition (%s): %w", engine.Name(), err))
		return
	}
	studentSteps := steps.ParseExpected(out.Text, len(gold.Steps))
	if len(studentSteps) == 0 {
		r.send(chatID, "I could not read any solution steps on the photo. Try a sharper picture.")
		return
	}

	res := r.Grader.Grade(studentSteps, gold)
	r.saveResult(ctx, chatID, mediaGroupID, hash, name, engine, res)
	r.SendReport(chatID, r.Feedback.Report(res, gold))
}

func (r *Router) saveResult(ctx context.Context, chatID int64, mediaGroupID, hash, solution string, engine ocr.Engine, res *grading.Result) {
	if r.Results == nil {
		return
	}
	if err := r.Results.Upsert(ctx, chatID, mediaGroupID, hash, solution, engine.Name(), engine.GetModel(), res); err != nil {
		log.Printf("result cache upsert: %v", err)
	}
}

// combineAsOne stacks the pages vertically on white, downscaling when the
// result exceeds maxPixels.
func combineAsOne(images [][]byte) ([]byte, error) {
	decoded := make([]image.Image, 0, len(images))
	widths := make([]int, 0, len(images))
	heights := make([]int, 0, len(images))

	for _, b := range images {
		img, _, err := image.Decode(bytes.NewReader(b))
		if err != nil {
			if try, err2 := tryDecodeStrict(b); err2 == nil {
				img = try
			} else {
				return nil, err
			}
		}
		decoded = append(decoded, img)
		bounds := img.Bounds()
		widths = append(widths, bounds.Dx())
		heights = append(heights, bounds.Dy())
	}

	maxW := 0
	sumH := 0
	for i := range decoded {
		if widths[i] > maxW {
			maxW = widths[i]
		}
		sumH += heights[i]
	}
	if maxW == 0 || sumH == 0 {
		return nil, fmt.Errorf("empty images")
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxW, sumH))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	y := 0
	for i, img := range decoded {
		w := widths[i]
		h := heights[i]
		x := (maxW - w) / 2
		rect := image.Rect(x, y, x+w, y+h)
		draw.Draw(dst, rect, img, img.Bounds().Min, draw.Over)
		y += h
	}

	totalPx := maxW * sumH
	final := image.Image(dst)
	if totalPx > maxPixels {
		scale := math.Sqrt(float64(maxPixels) / float64(totalPx))
		newW := int(float64(maxW)*scale + 0.5)
		newH := int(float64(sumH)*scale + 0.5)
		if newW < 1 {
			newW = 1
		}
		if newH < 1 {
			newH = 1
		}
		final = scaleDownNN(dst, newW, newH)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, final, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func tryDecodeStrict(b []byte) (image.Image, error) {
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8 {
		return jpeg.Decode(bytes.NewReader(b))
	}
	if len(b) >= 8 &&
		b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47 &&
		b[4] == 0x0D && b[5] == 0x0A && b[6] == 0x1A && b[7] == 0x0A {
		return png.Decode(bytes.NewReader(b))
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	return img, err
}

func scaleDownNN(src image.Image, newW, newH int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	sb := src.Bounds()
	srcW := sb.Dx()
	srcH := sb.Dy()
	for y := 0; y < newH; y++ {
		sy := sb.Min.Y + (y*srcH)/newH
		for x := 0; x < newW; x++ {
			sx := sb.Min.X + (x*srcW)/newW
			dst.Set(x, y, src.At(sx, sy))
		}
	}
	return dst
}

func download(url string) ([]byte, error) {
	resp, err := httpClient().Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(resp.Body)
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}
