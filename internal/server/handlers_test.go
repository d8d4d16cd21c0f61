package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/f3rmion/suiwen/internal/config"
	"github.com/f3rmion/suiwen/internal/dict"
	"github.com/f3rmion/suiwen/internal/fileio"
	"github.com/f3rmion/suiwen/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiClient struct {
	t *testing.T
	h http.Handler
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	d, err := dict.Builtin()
	require.NoError(t, err)

	cfg := config.Default().Server
	srv := New(d, cfg, "", nil)
	return &apiClient{t: t, h: srv.Handler()}
}

func (a *apiClient) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return serve(a.h, req)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (a *apiClient) newSession() string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/sessions", nil)
	require.Equal(a.t, http.StatusCreated, w.Code)
	return decode(a.t, w)["id"].(string)
}

func TestHealth(t *testing.T) {
	api := newAPI(t)
	w := api.do(http.MethodGet, "/api/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 11, body["entries"])
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestDictionaryRoutes(t *testing.T) {
	api := newAPI(t)

	w := api.do(http.MethodGet, "/api/dictionary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 11, decode(t, w)["count"])

	w = api.do(http.MethodGet, "/api/dictionary?level=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 1, body["count"])
	assert.Equal(t, "戏", body["entries"].([]any)[0].(map[string]any)["character"])

	w = api.do(http.MethodGet, "/api/dictionary?level=9", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/dictionary/学", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "xué", decode(t, w)["pinyin"])

	w = api.do(http.MethodGet, "/api/dictionary/龙", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeCharNotFound, decode(t, w)["code"])
}

func TestAnnotateRoute(t *testing.T) {
	api := newAPI(t)
	w := api.do(http.MethodPost, "/api/annotate", map[string]string{"text": "我学<京>"})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	tokens := body["tokens"].([]any)
	require.Len(t, tokens, 5)
	assert.Equal(t, "我", tokens[0].(map[string]any)["text"])
	assert.Len(t, tokens[1].(map[string]any)["events"], 2)
	assert.Equal(t,
		`我<span class="highlighted-char" data-char="学">学</span>&lt;<span class="highlighted-char" data-char="京">京</span>&gt;`,
		body["markup"])
}

func TestSessionLifecycle(t *testing.T) {
	api := newAPI(t)
	id := api.newSession()

	w := api.do(http.MethodGet, "/api/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, session.DefaultText, body["text"])
	assert.EqualValues(t, 11, body["progress"].(map[string]any)["in_text"])

	w = api.do(http.MethodPut, "/api/sessions/"+id+"/text", map[string]string{"text": "看戏"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["progress"].(map[string]any)["in_text"])

	w = api.do(http.MethodDelete, "/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodGet, "/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeSessionNotFound, decode(t, w)["code"])
}

func TestSelectAndEvents(t *testing.T) {
	api := newAPI(t)
	id := api.newSession()

	w := api.do(http.MethodPost, "/api/sessions/"+id+"/select", map[string]string{"char": "京"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["selected"])
	assert.Equal(t, "jīng", body["entry"].(map[string]any)["pinyin"])

	// Unknown characters keep the previous selection.
	w = api.do(http.MethodPost, "/api/sessions/"+id+"/select", map[string]string{"char": "我"})
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, false, body["selected"])
	assert.Equal(t, "京", body["entry"].(map[string]any)["character"])

	w = api.do(http.MethodPost, "/api/sessions/"+id+"/events", map[string]string{"kind": "char", "char": "戏"})
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, true, body["handled"])
	assert.Equal(t, "戏", body["selected"])
	speech := body["speech"].(map[string]any)
	assert.Equal(t, "戏", speech["text"])
	assert.Equal(t, "zh-CN", speech["lang"])
	assert.EqualValues(t, 1.0, speech["rate"])

	w = api.do(http.MethodPost, "/api/sessions/"+id+"/events", map[string]string{"kind": "audio-icon", "char": "学"})
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, true, body["handled"])
	assert.Equal(t, "戏", body["selected"], "audio icon does not change the selection")

	w = api.do(http.MethodPost, "/api/sessions/"+id+"/events", map[string]string{"kind": "hover", "char": "学"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMasteredAndVocab(t *testing.T) {
	api := newAPI(t)
	id := api.newSession()
	base := "/api/sessions/" + id

	w := api.do(http.MethodPost, base+"/mastered/学", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["mastered"])

	w = api.do(http.MethodPost, base+"/mastered/学", nil)
	assert.Equal(t, false, decode(t, w)["mastered"])

	w = api.do(http.MethodPost, base+"/mastered/龙", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPost, base+"/vocab/学", nil)
	assert.Equal(t, true, decode(t, w)["added"])
	w = api.do(http.MethodPost, base+"/vocab/学", nil)
	assert.Equal(t, false, decode(t, w)["added"])
	api.do(http.MethodPost, base+"/vocab/京", nil)

	w = api.do(http.MethodGet, base+"/vocab?q=京", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 1, body["count"])
	assert.Equal(t, "京", body["vocab"].([]any)[0].(map[string]any)["char"])

	w = api.do(http.MethodDelete, base+"/vocab/学", nil)
	assert.Equal(t, true, decode(t, w)["removed"])
	w = api.do(http.MethodGet, base+"/vocab", nil)
	assert.EqualValues(t, 1, decode(t, w)["count"])
}

func TestPractice(t *testing.T) {
	api := newAPI(t)
	id := api.newSession()
	base := "/api/sessions/" + id

	w := api.do(http.MethodPost, base+"/practice/answer", map[string]string{"answer": "学"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, CodeNoPendingQuestion, decode(t, w)["code"])

	w = api.do(http.MethodPost, base+"/practice/next", map[string]string{"mode": "quiz"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, true, body["available"])
	q := body["question"].(map[string]any)
	char := q["char"].(string)
	assert.Len(t, q["options"], 4)
	assert.Contains(t, q["options"], char)

	w = api.do(http.MethodPost, base+"/practice/answer", map[string]string{"answer": char})
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, true, body["correct"])
	assert.EqualValues(t, 1, body["score"].(map[string]any)["total"])
	assert.Len(t, body["history"], 1)

	w = api.do(http.MethodPost, base+"/practice/next", map[string]string{"mode": "dictation"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	api.do(http.MethodPut, base+"/text", map[string]string{"text": "hello"})
	w = api.do(http.MethodPost, base+"/practice/next", map[string]string{"mode": "write"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["available"])
}

func TestStats(t *testing.T) {
	api := newAPI(t)
	id := api.newSession()
	base := "/api/sessions/" + id

	w := api.do(http.MethodGet, base+"/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 11, body["progress"].(map[string]any)["total"])
	assert.EqualValues(t, 0, body["answered"])
	assert.EqualValues(t, 0, body["unlocked"])

	levels := body["levels"].([]any)
	require.Len(t, levels, 3)
	assert.Len(t, levels[0].(map[string]any)["chars"], 5)
	assert.Equal(t, []any{"戏"}, levels[2].(map[string]any)["chars"])

	for _, c := range []string{"学", "京", "剧", "很", "好"} {
		api.do(http.MethodPost, base+"/mastered/"+c, nil)
	}
	w = api.do(http.MethodPost, base+"/practice/next", map[string]string{"mode": "quiz"})
	char := decode(t, w)["question"].(map[string]any)["char"].(string)
	api.do(http.MethodPost, base+"/practice/answer", map[string]string{"answer": char})

	w = api.do(http.MethodGet, base+"/stats", nil)
	body = decode(t, w)
	assert.EqualValues(t, 5, body["progress"].(map[string]any)["mastered"])
	assert.EqualValues(t, 1, body["answered"])
	assert.EqualValues(t, 1, body["accuracy"])
	assert.EqualValues(t, 1, body["unlocked"])
	first := body["achievements"].([]any)[0].(map[string]any)
	assert.Equal(t, "beginner", first["id"])
	assert.Equal(t, true, first["unlocked"])

	w = api.do(http.MethodGet, "/api/sessions/missing/stats", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPracticeWriteNumbered(t *testing.T) {
	api := newAPI(t)
	id := api.newSession()
	base := "/api/sessions/" + id

	api.do(http.MethodPut, base+"/text", map[string]string{"text": "学"})
	w := api.do(http.MethodPost, base+"/practice/next", map[string]string{"mode": "write"})
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodPost, base+"/practice/answer", map[string]any{"answer": "xue2", "numbered": true})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["correct"])
	assert.Equal(t, "xué", body["answer"])
	assert.Equal(t, "xué", body["expected"])
}

func TestPracticeListenSpeech(t *testing.T) {
	api := newAPI(t)
	id := api.newSession()

	w := api.do(http.MethodPost, "/api/sessions/"+id+"/practice/next", map[string]string{"mode": "listen"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	char := body["question"].(map[string]any)["char"]
	assert.Equal(t, char, body["speech"].(map[string]any)["text"])
}

func upload(t *testing.T, h http.Handler, path, name string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return serve(h, req)
}

func TestImport(t *testing.T) {
	api := newAPI(t)
	id := api.newSession()
	path := "/api/sessions/" + id + "/import"

	w := upload(t, api.h, path, "lesson.txt", []byte("\ufeff老师好"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "老师好", decode(t, w)["text"])

	w = upload(t, api.h, path, "lesson.pdf", []byte("%PDF"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeUnsupportedFormat, decode(t, w)["code"])

	w = upload(t, api.h, path, "lesson.docx", []byte("not a zip"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeImportFailed, decode(t, w)["code"])

	w = api.do(http.MethodGet, "/api/sessions/"+id, nil)
	assert.Equal(t, "老师好", decode(t, w)["text"], "failed imports keep the text")
}

func TestImportSizeLimit(t *testing.T) {
	d, err := dict.Builtin()
	require.NoError(t, err)
	cfg := config.Default().Server
	cfg.MaxUploadBytes = 64
	api := &apiClient{t: t, h: New(d, cfg, "", nil).Handler()}
	id := api.newSession()
	path := "/api/sessions/" + id + "/import"

	w := upload(t, api.h, path, "small.txt", []byte("老师好"))
	require.Equal(t, http.StatusOK, w.Code)

	// Declared body length over the limit is refused before parsing.
	w = upload(t, api.h, path, "big.txt", bytes.Repeat([]byte("学"), 4<<10))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, CodeImportFailed, decode(t, w)["code"])

	// Within the framing allowance, the part size is checked.
	w = upload(t, api.h, path, "medium.txt", bytes.Repeat([]byte("a"), 1<<10))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = api.do(http.MethodGet, "/api/sessions/"+id, nil)
	assert.Equal(t, "老师好", decode(t, w)["text"])
}

func TestExport(t *testing.T) {
	api := newAPI(t)
	id := api.newSession()
	base := "/api/sessions/" + id

	w := api.do(http.MethodGet, base+"/export?format=txt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, session.DefaultText, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "filename*=UTF-8''")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".txt")

	w = api.do(http.MethodGet, base+"/export?format=doc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<p>我学京剧。京剧很好看。我跟老师学唱戏。</p>")

	api.do(http.MethodPost, base+"/mastered/戏", nil)
	w = api.do(http.MethodGet, base+"/export?format=json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap, err := fileio.ReadSnapshot(strings.NewReader(w.Body.String()))
	require.NoError(t, err)
	assert.Equal(t, []string{"戏"}, snap.Mastered)
	assert.WithinDuration(t, time.Now(), snap.ExportDate, time.Minute)

	w = api.do(http.MethodGet, base+"/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeUnsupportedFormat, decode(t, w)["code"])
}

func TestSpeechDirective(t *testing.T) {
	api := newAPI(t)
	id := api.newSession()
	base := "/api/sessions/" + id

	w := api.do(http.MethodGet, base+"/speech?mode=slow&char=学", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "学", body["text"])
	assert.EqualValues(t, 0.7, body["rate"])

	w = api.do(http.MethodGet, base+"/speech?mode=repeat&char=学", nil)
	body = decode(t, w)
	assert.Equal(t, true, body["repeat"])
	assert.EqualValues(t, 1000, body["pause_ms"])

	w = api.do(http.MethodGet, base+"/speech", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, base+"/speech?char=龙", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodGet, base+"/speech?mode=whisper&char=学", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
