package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/f3rmion/suiwen/internal/annotate"
	"github.com/f3rmion/suiwen/internal/detail"
	"github.com/f3rmion/suiwen/internal/dict"
	"github.com/f3rmion/suiwen/internal/fileio"
	"github.com/f3rmion/suiwen/internal/hanzi"
	"github.com/f3rmion/suiwen/internal/pinyin"
	"github.com/f3rmion/suiwen/internal/practice"
	"github.com/f3rmion/suiwen/internal/stats"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the /api routes.
type Handler struct {
	dict      *dict.Dictionary
	store     *Store
	presenter *detail.Presenter
	maxUpload int64
	log       *zap.Logger
}

// NewHandler creates a handler. Speech is rendered as directives for the
// browser, so the presenter has no player.
func NewHandler(d *dict.Dictionary, store *Store, maxUpload int64, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		dict:      d,
		store:     store,
		presenter: detail.NewPresenter(d, nil, nil),
		maxUpload: maxUpload,
		log:       log,
	}
}

type sessionView struct {
	ID            string                 `json:"id"`
	Text          string                 `json:"text"`
	Tokens        []annotate.Interactive `json:"tokens"`
	Markup        string                 `json:"markup"`
	Selected      string                 `json:"selected,omitempty"`
	SelectedEntry *hanzi.DictionaryEntry `json:"selected_entry,omitempty"`
	Mastered      []string               `json:"mastered"`
	Vocab         []hanzi.VocabItem      `json:"vocab"`
	Progress      hanzi.Progress         `json:"progress"`
	History       []hanzi.PracticeRecord `json:"practice_history"`
}

func viewOf(e *Entry) sessionView {
	s := e.Session
	selected, _ := s.Selected()
	return sessionView{
		ID:            e.ID,
		Text:          s.Text(),
		Tokens:        annotate.Events(s.Tokens()),
		Markup:        s.Markup(),
		Selected:      selected,
		SelectedEntry: s.SelectedEntry(),
		Mastered:      s.Mastered(),
		Vocab:         s.Vocab(),
		Progress:      s.Progress(),
		History:       e.Practice.History(),
	}
}

// withEntry looks up the :id session and runs fn holding its lock. Errors
// returned by fn go to the error middleware.
func (h *Handler) withEntry(c *gin.Context, fn func(e *Entry) error) {
	e, err := h.store.Get(c.Param("id"))
	if err != nil {
		_ = c.Error(WrapError(err, CodeSessionNotFound, "session not found", http.StatusNotFound))
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := fn(e); err != nil {
		_ = c.Error(err)
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"entries":  h.dict.Size(),
		"sessions": h.store.Len(),
	})
}

// ListDictionary returns every entry, or those of one level with ?level=.
func (h *Handler) ListDictionary(c *gin.Context) {
	entries := h.dict.Entries()

	if raw := c.Query("level"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || !hanzi.Level(n).Valid() {
			_ = c.Error(NewAppError(CodeBadRequest, "level must be 1, 2 or 3", http.StatusBadRequest))
			return
		}
		filtered := entries[:0:0]
		for _, e := range entries {
			if e.Level == hanzi.Level(n) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

func (h *Handler) GetEntry(c *gin.Context) {
	char := c.Param("char")
	e := h.dict.Lookup(char)
	if e == nil {
		_ = c.Error(charNotFound(char))
		return
	}
	c.JSON(http.StatusOK, e)
}

type textRequest struct {
	Text string `json:"text"`
}

// Annotate marks a text without a session.
func (h *Handler) Annotate(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(badRequest(err))
		return
	}
	tokens := annotate.Annotate(req.Text, h.dict)
	c.JSON(http.StatusOK, gin.H{
		"tokens": annotate.Events(tokens),
		"markup": annotate.HTML(tokens),
	})
}

func (h *Handler) CreateSession(c *gin.Context) {
	e := h.store.Create()
	e.mu.Lock()
	defer e.mu.Unlock()
	c.JSON(http.StatusCreated, viewOf(e))
}

func (h *Handler) GetSession(c *gin.Context) {
	h.withEntry(c, func(e *Entry) error {
		c.JSON(http.StatusOK, viewOf(e))
		return nil
	})
}

func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.store.Delete(c.Param("id")); err != nil {
		_ = c.Error(WrapError(err, CodeSessionNotFound, "session not found", http.StatusNotFound))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SetText(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(badRequest(err))
		return
	}
	h.withEntry(c, func(e *Entry) error {
		e.Session.SetText(req.Text)
		c.JSON(http.StatusOK, viewOf(e))
		return nil
	})
}

type charRequest struct {
	Char string `json:"char"`
}

// Select selects a character. Characters outside the dictionary leave the
// selection alone and report selected false.
func (h *Handler) Select(c *gin.Context) {
	var req charRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(badRequest(err))
		return
	}
	h.withEntry(c, func(e *Entry) error {
		ok := e.Session.SelectCharacter(req.Char)
		c.JSON(http.StatusOK, gin.H{
			"selected": ok,
			"entry":    e.Session.SelectedEntry(),
		})
		return nil
	})
}

type eventRequest struct {
	Kind string `json:"kind" binding:"required"`
	Char string `json:"char" binding:"required"`
}

// Event dispatches a token event and returns the speech directive the
// browser should play.
func (h *Handler) Event(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(badRequest(err))
		return
	}
	kind, err := annotate.ParseEventKind(req.Kind)
	if err != nil {
		_ = c.Error(badRequest(err))
		return
	}
	h.withEntry(c, func(e *Entry) error {
		d, ok := h.presenter.Dispatch(e.Session, annotate.Event{Kind: kind, Glyph: req.Char})
		resp := gin.H{"handled": ok}
		if ok {
			resp["speech"] = d
		}
		if sel, has := e.Session.Selected(); has {
			resp["selected"] = sel
			resp["entry"] = e.Session.SelectedEntry()
		}
		c.JSON(http.StatusOK, resp)
		return nil
	})
}

func (h *Handler) ToggleMastered(c *gin.Context) {
	char := c.Param("char")
	if !h.dict.Has(char) {
		_ = c.Error(charNotFound(char))
		return
	}
	h.withEntry(c, func(e *Entry) error {
		mastered := e.Session.ToggleMastered(char)
		c.JSON(http.StatusOK, gin.H{
			"char":     char,
			"mastered": mastered,
			"progress": e.Session.Progress(),
		})
		return nil
	})
}

func (h *Handler) AddVocab(c *gin.Context) {
	char := c.Param("char")
	if !h.dict.Has(char) {
		_ = c.Error(charNotFound(char))
		return
	}
	h.withEntry(c, func(e *Entry) error {
		added := e.Session.AddToVocab(char)
		c.JSON(http.StatusOK, gin.H{"added": added, "vocab": e.Session.Vocab()})
		return nil
	})
}

func (h *Handler) RemoveVocab(c *gin.Context) {
	char := c.Param("char")
	h.withEntry(c, func(e *Entry) error {
		removed := e.Session.RemoveFromVocab(char)
		c.JSON(http.StatusOK, gin.H{"removed": removed, "vocab": e.Session.Vocab()})
		return nil
	})
}

func (h *Handler) ListVocab(c *gin.Context) {
	h.withEntry(c, func(e *Entry) error {
		items := e.Session.FilterVocab(c.Query("q"))
		c.JSON(http.StatusOK, gin.H{"vocab": items, "count": len(items)})
		return nil
	})
}

// Stats reports mastery, practice accuracy, the level spread of the text and
// achievements.
func (h *Handler) Stats(c *gin.Context) {
	h.withEntry(c, func(e *Entry) error {
		r := stats.Build(e.Session, e.Practice)
		c.JSON(http.StatusOK, gin.H{
			"progress":     r.Progress,
			"answered":     r.Answered,
			"correct":      r.Correct,
			"accuracy":     r.Accuracy,
			"levels":       r.Levels,
			"achievements": r.Achievements,
			"unlocked":     len(stats.Unlocked(r.Achievements)),
		})
		return nil
	})
}

type nextRequest struct {
	Mode string `json:"mode"`
}

// NextQuestion asks about a random dictionary character of the session text.
func (h *Handler) NextQuestion(c *gin.Context) {
	var req nextRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		_ = c.Error(badRequest(err))
		return
	}
	mode := hanzi.PracticeMode(req.Mode)
	if mode == "" {
		mode = hanzi.ModeQuiz
	}
	if !mode.Valid() {
		_ = c.Error(NewAppError(CodeBadRequest, fmt.Sprintf("unknown practice mode %q", req.Mode), http.StatusBadRequest))
		return
	}

	h.withEntry(c, func(e *Entry) error {
		q, err := e.Practice.NextQuestion(e.Session.Glyphs(), mode)
		if errors.Is(err, practice.ErrNoQuestion) {
			c.JSON(http.StatusOK, gin.H{"available": false, "message": err.Error()})
			return nil
		}
		if err != nil {
			return badRequest(err)
		}

		resp := gin.H{"available": true, "question": q}
		if mode == hanzi.ModeListen {
			if d, ok := h.presenter.Directive(detail.SpeakModeOnce, q.Char); ok {
				resp["speech"] = d
			}
		}
		c.JSON(http.StatusOK, resp)
		return nil
	})
}

type answerRequest struct {
	Answer   string `json:"answer"`
	Numbered bool   `json:"numbered"` // Convert "xue2" style input to tone marks
}

// Answer checks an answer against the pending question.
func (h *Handler) Answer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(badRequest(err))
		return
	}

	h.withEntry(c, func(e *Entry) error {
		q, ok := e.Practice.Current()
		if !ok {
			return NewAppError(CodeNoPendingQuestion, "no question is waiting for an answer", http.StatusConflict)
		}

		answer := req.Answer
		if req.Numbered && q.Mode == hanzi.ModeWrite {
			answer = pinyin.FromNumbered(answer)
		}
		expected := e.Practice.Expected(q)
		correct := e.Practice.Answer(q, answer)
		right, total := e.Practice.Score()

		c.JSON(http.StatusOK, gin.H{
			"correct":  correct,
			"expected": expected,
			"answer":   answer,
			"entry":    h.dict.Lookup(q.Char),
			"score":    gin.H{"correct": right, "total": total},
			"accuracy": e.Practice.Accuracy(),
			"history":  e.Practice.History(),
		})
		return nil
	})
}

// multipartOverhead is the room left for form boundaries and part headers on
// top of the upload limit.
const multipartOverhead = 4 << 10

func errTooLarge() *AppError {
	return NewAppError(CodeImportFailed, "file too large", http.StatusRequestEntityTooLarge)
}

// Import replaces the session text with the text of an uploaded file. A
// failed import leaves the text unchanged.
func (h *Handler) Import(c *gin.Context) {
	if h.maxUpload > 0 {
		limit := h.maxUpload + multipartOverhead
		if c.Request.ContentLength > limit {
			_ = c.Error(errTooLarge())
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			_ = c.Error(errTooLarge())
			return
		}
		_ = c.Error(badRequest(err))
		return
	}
	if !fileio.Supported(fh.Filename) {
		_ = c.Error(WrapError(fileio.ErrUnsupportedFormat, CodeUnsupportedFormat,
			"supported formats: .txt, .docx, .xlsx", http.StatusBadRequest))
		return
	}
	if h.maxUpload > 0 && fh.Size > h.maxUpload {
		_ = c.Error(errTooLarge())
		return
	}

	f, err := fh.Open()
	if err != nil {
		_ = c.Error(WrapError(err, CodeImportFailed, "reading upload failed", http.StatusBadRequest))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		_ = c.Error(WrapError(err, CodeImportFailed, "reading upload failed", http.StatusBadRequest))
		return
	}

	text, err := fileio.Read(fh.Filename, data)
	if err != nil {
		_ = c.Error(WrapError(err, CodeImportFailed, "could not read "+fh.Filename, http.StatusBadRequest))
		return
	}

	h.withEntry(c, func(e *Entry) error {
		e.Session.SetText(text)
		h.log.Info("text imported",
			zap.String("session_id", e.ID),
			zap.String("file", fh.Filename),
			zap.Int("runes", len([]rune(text))),
		)
		c.JSON(http.StatusOK, viewOf(e))
		return nil
	})
}

// Export downloads the session text, or its learning data with format=json.
func (h *Handler) Export(c *gin.Context) {
	format, err := fileio.ParseFormat(c.DefaultQuery("format", string(fileio.FormatTxt)))
	if err != nil {
		_ = c.Error(WrapError(err, CodeUnsupportedFormat, err.Error(), http.StatusBadRequest))
		return
	}

	h.withEntry(c, func(e *Entry) error {
		var (
			buf  bytes.Buffer
			name string
		)
		now := time.Now()

		if format == fileio.FormatJSON {
			if err := fileio.WriteSnapshot(&buf, e.Session.Snapshot(e.Practice.History())); err != nil {
				return err
			}
			name = fileio.DataFileName(now)
		} else {
			base := fileio.DefaultFileName(now)
			if err := fileio.Export(&buf, format, base, e.Session.Text()); err != nil {
				return err
			}
			name = base + format.Ext()
		}

		c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(name))
		c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
		return nil
	})
}

// Speech returns the directive for reading a character, the selected one
// when char is not given.
func (h *Handler) Speech(c *gin.Context) {
	mode, err := detail.ParseSpeechMode(c.Query("mode"))
	if err != nil {
		_ = c.Error(badRequest(err))
		return
	}

	h.withEntry(c, func(e *Entry) error {
		char := c.Query("char")
		if char == "" {
			sel, ok := e.Session.Selected()
			if !ok {
				return NewAppError(CodeBadRequest, "no character selected", http.StatusBadRequest)
			}
			char = sel
		}
		d, ok := h.presenter.Directive(mode, char)
		if !ok {
			return charNotFound(char)
		}
		c.JSON(http.StatusOK, d)
		return nil
	})
}
