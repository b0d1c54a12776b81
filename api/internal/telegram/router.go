// Package telegram drives the grading bot: teachers manage gold solutions,
// students send photos of their worked solutions and get a graded report.
package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"grader-bot/api/internal/feedback"
	"grader-bot/api/internal/grading"
	"grader-bot/api/internal/ocr"
	"grader-bot/api/internal/steps"
	"grader-bot/api/internal/store"
)

// Engines are the configured OCR backends; nil entries are not offered.
type Engines struct {
	Yandex ocr.Engine
	Gemini ocr.Engine
}

type Router struct {
	Bot        *tgbotapi.BotAPI
	EngManager *ocr.Manager
	Engines    Engines

	Solutions *store.SolutionStore
	Results   *store.ResultRepo // nil disables the grading cache
	Grader    *grading.Grader
	Feedback  *feedback.Builder
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	cid := upd.Message.Chat.ID

	if upd.Message.IsCommand() {
		r.handleCommand(upd)
		return
	}
	if len(upd.Message.Photo) > 0 {
		r.acceptPhoto(*upd.Message)
		return
	}
	// typed solution steps
	if t := strings.TrimSpace(upd.Message.Text); t != "" {
		r.gradeText(cid, t)
	}
}

func (r *Router) handleCommand(upd tgbotapi.Update) {
	cid := upd.Message.Chat.ID
	switch upd.Message.Command() {
	case "start":
		r.send(cid, "Send a photo of a worked math solution and I will grade it step by step.\n"+
			"Commands:\n/solutions - list answer keys\n/use <name> - pick the answer key\n/engine - OCR engine\n/health")
	case "health":
		r.send(cid, "✅ OK")
	case "engine":
		r.handleEngineCommand(cid, upd.Message.Text)
	case "solutions":
		r.listSolutions(cid)
	case "use":
		name := strings.TrimSpace(upd.Message.CommandArguments())
		if name == "" {
			r.send(cid, "Usage: /use <solution name>")
			return
		}
		if _, err := r.Solutions.Load(name); err != nil {
			r.send(cid, "Unknown solution: "+name+". See /solutions.")
			return
		}
		setSolution(cid, name)
		r.send(cid, "✅ Grading against: "+name)
	default:
		r.send(cid, "Unknown command")
	}
}

// handleEngineCommand switches the OCR engine for this chat.
//
//	/engine yandex
//	/engine gemini
func (r *Router) handleEngineCommand(chatID int64, cmd string) {
	args := strings.Fields(strings.TrimSpace(strings.TrimPrefix(cmd, "/engine")))
	if len(args) == 0 {
		cur := r.EngManager.Get(chatID)
		r.send(chatID, "Current engine: "+cur.Name()+" ("+cur.GetModel()+")\nUsage: /engine {yandex|gemini}")
		return
	}
	switch strings.ToLower(args[0]) {
	case "yandex":
		if r.Engines.Yandex == nil {
			r.send(chatID, "❌ Yandex OCR is not configured.")
			return
		}
		r.EngManager.Set(chatID, r.Engines.Yandex)
		r.send(chatID, "✅ Engine: yandex (handwritten).")
	case "gemini":
		if r.Engines.Gemini == nil {
			r.send(chatID, "❌ Gemini is not configured.")
			return
		}
		r.EngManager.Set(chatID, r.Engines.Gemini)
		r.send(chatID, "✅ Engine: gemini ("+r.Engines.Gemini.GetModel()+").")
	default:
		r.send(chatID, "Unknown engine. Available: yandex | gemini")
	}
}

func (r *Router) listSolutions(chatID int64) {
	infos, err := r.Solutions.List()
	if err != nil {
		r.SendError(chatID, err)
		return
	}
	if len(infos) == 0 {
		r.send(chatID, "No answer keys yet.")
		return
	}
	var b strings.Builder
	b.WriteString("Available answer keys:\n")
	for _, in := range infos {
		fmt.Fprintf(&b, "• %s (%d steps, %d points)\n", in.Name, in.StepCount, in.TotalPoints)
	}
	b.WriteString("\nPick one with /use <name>.")
	r.send(chatID, b.String())
}

// gradeText grades steps the student typed directly instead of photographing.
func (r *Router) gradeText(chatID int64, text string) {
	name := getSolution(chatID)
	if name == "" {
		r.send(chatID, "Pick an answer key first: /solutions, then /use <name>.")
		return
	}
	gold, err := r.Solutions.Load(name)
	if err != nil {
		r.SendError(chatID, err)
		return
	}
	studentSteps := steps.ParseExpected(text, len(gold.Steps))
	res := r.Grader.Grade(studentSteps, gold)
	r.SendReport(chatID, r.Feedback.Report(res, gold))
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	_, _ = r.Bot.Send(msg)
}

// SendReport chunks long reports under Telegram's 4096-char message limit.
func (r *Router) SendReport(chatID int64, text string) {
	for len(text) > 3900 {
		cut := strings.LastIndex(text[:3900], "\n")
		if cut <= 0 {
			cut = 3900
		}
		r.send(chatID, text[:cut])
		text = text[cut:]
	}
	if strings.TrimSpace(text) != "" {
		r.send(chatID, text)
	}
}

func (r *Router) SendError(chatID int64, err error) {
	r.send(chatID, fmt.Sprintf("Error: %v", err))
}

// PhotoAcceptedText is the first reply after a photo arrives.
func (r *Router) PhotoAcceptedText() string {
	return "Photo received. If the solution spans several photos, send them in a row and I will stitch the pages before grading."
}
