package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/net/html/charset"

	"github.com/pwnholic/taskcard/internal/exports"
	"github.com/pwnholic/taskcard/internal/form"
	"github.com/pwnholic/taskcard/internal/render"
	"github.com/pwnholic/taskcard/internal/task"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type app struct {
	handler  http.Handler
	ws       *Workspace
	pipeline *exports.Pipeline
	mu       sync.Mutex
	saved    []string
}

func newApp(t *testing.T, sink exports.Sink) *app {
	t.Helper()

	a := &app{}
	if sink == nil {
		sink = exports.SinkFunc(func(_ context.Context, art exports.Artifact) error {
			a.mu.Lock()
			a.saved = append(a.saved, art.Name)
			a.mu.Unlock()
			return nil
		})
	}
	a.ws = NewWorkspace(form.New(form.WithDelay(0)), render.NewCard())
	a.pipeline = exports.NewPipeline(sink, exports.WithSettleDelay(0))
	a.handler = New(NewHandlers(a.ws, a.pipeline))
	return a
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body err=%v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)
	return rr
}

func doForm(t *testing.T, h http.Handler, path string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)
	return rr
}

func doGet(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func parsePage(t *testing.T, rr *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()

	bodyReader, err := charset.NewReader(rr.Body, rr.Header().Get("Content-Type"))
	if err != nil {
		t.Fatalf("charset.NewReader err=%v", err)
	}
	doc, err := goquery.NewDocumentFromReader(bodyReader)
	if err != nil {
		t.Fatalf("goquery.NewDocumentFromReader err=%v", err)
	}
	return doc
}

func submit(t *testing.T, a *app, phone string, job task.JobType, price string) {
	t.Helper()

	rr := doJSON(t, a.handler, http.MethodPost, "/tasks", map[string]any{
		"phoneNumber": phone,
		"jobType":     job,
		"priceInput":  price,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("POST /tasks status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestHealth(t *testing.T) {
	a := newApp(t, nil)
	rr := doGet(t, a.handler, "/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /health status=%d", rr.Code)
	}
}

func TestIndex_Empty(t *testing.T) {
	a := newApp(t, nil)
	rr := doGet(t, a.handler, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET / status=%d", rr.Code)
	}

	doc := parsePage(t, rr)
	if doc.Find("#input form").Length() != 1 {
		t.Fatalf("form not rendered")
	}
	if doc.Find("#result").Length() != 0 {
		t.Fatalf("result rendered before any submission")
	}
	opts := doc.Find("#jobType option")
	if opts.Length() != 4 {
		t.Fatalf("job options=%d, want 4", opts.Length())
	}
	if v, _ := doc.Find("#jobType option[selected]").Attr("value"); v != string(task.JobSingle) {
		t.Fatalf("selected job=%q, want %s", v, task.JobSingle)
	}
}

func TestSubmit_JSON(t *testing.T) {
	a := newApp(t, nil)
	rr := doJSON(t, a.handler, http.MethodPost, "/tasks", map[string]any{
		"phoneNumber": "081234",
		"jobType":     "TRIPLE",
		"priceInput":  "50000",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("POST /tasks status=%d body=%s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Task task.TaskData `json:"task"`
		View cardView      `json:"view"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode err=%v", err)
	}
	if resp.Task.PhoneNumber != "081234" || resp.Task.JobType != task.JobTriple || resp.Task.ProductPrice != 50000 {
		t.Fatalf("task=%+v", resp.Task)
	}
	if resp.View.Total != "Rp 150.000" || resp.View.ProductCount != 3 {
		t.Fatalf("view=%+v", resp.View)
	}

	rr = doJSON(t, a.handler, http.MethodGet, "/tasks/current", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /tasks/current status=%d", rr.Code)
	}
	if !a.ws.Card.Mounted() {
		t.Fatalf("card not mounted after submit")
	}
}

func TestSubmit_FormRendersCard(t *testing.T) {
	a := newApp(t, nil)
	rr := doForm(t, a.handler, "/tasks", url.Values{
		"phoneNumber": {"08123456789"},
		"jobType":     {"PENTA"},
		"priceInput":  {"20000"},
	})
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/" {
		t.Fatalf("POST /tasks status=%d location=%q", rr.Code, rr.Header().Get("Location"))
	}

	doc := parsePage(t, doGet(t, a.handler, "/"))
	checks := map[string]string{
		"#phone": "08123456789",
		"#job":   "1 Pesanan - 5 Produk",
		"#count": "5",
		"#price": "Rp 20.000",
		"#total": "Rp 100.000",
	}
	for sel, want := range checks {
		if got := strings.TrimSpace(doc.Find(sel).Text()); got != want {
			t.Fatalf("%s=%q, want %q", sel, got, want)
		}
	}
	if doc.Find("#download-image").Length() != 1 || doc.Find("#download-pdf").Length() != 1 {
		t.Fatalf("download links missing")
	}
}

func TestSubmit_Invalid(t *testing.T) {
	a := newApp(t, nil)
	submit(t, a, "0811", task.JobQuad, "100")

	for _, body := range []map[string]any{
		{"phoneNumber": "", "jobType": "SINGLE", "priceInput": "5"},
		{"phoneNumber": "0899", "jobType": "SINGLE", "priceInput": ""},
		{"phoneNumber": "0899", "jobType": "SINGLE", "priceInput": "abc"},
		{"phoneNumber": "0899", "jobType": "HEXA", "priceInput": "5"},
	} {
		rr := doJSON(t, a.handler, http.MethodPost, "/tasks", body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("POST /tasks %v status=%d, want 400", body, rr.Code)
		}
	}

	cur, ok := a.ws.Form.Current()
	if !ok || cur.PhoneNumber != "0811" {
		t.Fatalf("Current()=(%+v, %v), want the earlier record", cur, ok)
	}
}

func TestSubmit_InvalidFormShowsError(t *testing.T) {
	a := newApp(t, nil)
	rr := doForm(t, a.handler, "/tasks", url.Values{"phoneNumber": {""}, "priceInput": {"5"}})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("POST /tasks status=%d, want 400", rr.Code)
	}
	doc := parsePage(t, rr)
	if doc.Find("#error").Length() != 1 {
		t.Fatalf("error message not rendered")
	}
}

func TestExport_NoTask(t *testing.T) {
	a := newApp(t, nil)
	for _, path := range []string{"/exports/image", "/exports/document"} {
		rr := doJSON(t, a.handler, http.MethodGet, path, nil)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("GET %s status=%d, want 404", path, rr.Code)
		}
	}
	if len(a.saved) != 0 {
		t.Fatalf("sink received %v without a task", a.saved)
	}
}

func TestExportImage(t *testing.T) {
	a := newApp(t, nil)
	submit(t, a, "0812", task.JobSingle, "10000")

	rr := doGet(t, a.handler, "/exports/image")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /exports/image status=%d body=%s", rr.Code, rr.Body.String())
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != `attachment; filename="GUCCI_DESKTOP_TASK_0812.png"` {
		t.Fatalf("Content-Disposition=%q", cd)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("Content-Type=%q", ct)
	}
	img, err := png.Decode(rr.Body)
	if err != nil {
		t.Fatalf("png.Decode err=%v", err)
	}
	if b := img.Bounds(); b.Dx() != 2880 || b.Dy() != 1800 {
		t.Fatalf("bounds=%v, want 2880x1800", b)
	}
	if got := a.ws.Card.Style(); got != render.DefaultStyle {
		t.Fatalf("card style=%+v after export, want %+v", got, render.DefaultStyle)
	}
	if len(a.saved) != 1 || a.saved[0] != "GUCCI_DESKTOP_TASK_0812.png" {
		t.Fatalf("sink received %v", a.saved)
	}
}

func TestExportDocument(t *testing.T) {
	a := newApp(t, nil)
	submit(t, a, "0812", task.JobQuad, "10000")

	rr := doGet(t, a.handler, "/exports/document")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /exports/document status=%d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != `attachment; filename="GUCCI_DESKTOP_PDF_0812.pdf"` {
		t.Fatalf("Content-Disposition=%q", cd)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF-")) {
		t.Fatalf("body is not a PDF")
	}
}

func TestExport_SinkFailure(t *testing.T) {
	sink := exports.SinkFunc(func(context.Context, exports.Artifact) error {
		return errors.New("disk full")
	})
	a := newApp(t, sink)
	submit(t, a, "0812", task.JobSingle, "10000")

	rr := doJSON(t, a.handler, http.MethodGet, "/exports/image", nil)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("GET /exports/image status=%d, want 502", rr.Code)
	}
	if got := a.ws.Card.Style(); got != render.DefaultStyle {
		t.Fatalf("card style=%+v after failed export, want %+v", got, render.DefaultStyle)
	}
}

func TestExport_Overlap(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	sink := exports.SinkFunc(func(context.Context, exports.Artifact) error {
		once.Do(func() { close(entered) })
		<-release
		return nil
	})
	a := newApp(t, sink)
	submit(t, a, "0812", task.JobSingle, "10000")

	done := make(chan int, 1)
	go func() {
		done <- doGet(t, a.handler, "/exports/image").Code
	}()
	<-entered

	if rr := doJSON(t, a.handler, http.MethodGet, "/exports/document", nil); rr.Code != http.StatusConflict {
		t.Fatalf("overlapping export status=%d, want 409", rr.Code)
	}
	if rr := doJSON(t, a.handler, http.MethodPost, "/tasks/reset", nil); rr.Code != http.StatusConflict {
		t.Fatalf("reset during export status=%d, want 409", rr.Code)
	}

	close(release)
	if code := <-done; code != http.StatusOK {
		t.Fatalf("first export status=%d", code)
	}
	if got := a.ws.Card.Style(); got != render.DefaultStyle {
		t.Fatalf("card style=%+v, want %+v", got, render.DefaultStyle)
	}
}

func TestReset(t *testing.T) {
	a := newApp(t, nil)
	submit(t, a, "0812", task.JobSingle, "10000")

	rr := doJSON(t, a.handler, http.MethodPost, "/tasks/reset", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("POST /tasks/reset status=%d", rr.Code)
	}
	if rr := doJSON(t, a.handler, http.MethodGet, "/tasks/current", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("GET /tasks/current after reset status=%d, want 404", rr.Code)
	}
	if a.ws.Card.Mounted() {
		t.Fatalf("card still mounted after reset")
	}
}

func TestReset_WhileRegionHeld(t *testing.T) {
	a := newApp(t, nil)
	submit(t, a, "0812", task.JobSingle, "10000")

	release, err := a.pipeline.Hold(a.ws.Card)
	if err != nil {
		t.Fatalf("Hold() err=%v", err)
	}
	if rr := doJSON(t, a.handler, http.MethodPost, "/tasks/reset", nil); rr.Code != http.StatusConflict {
		t.Fatalf("reset while held status=%d, want 409", rr.Code)
	}
	if !a.ws.Card.Mounted() {
		t.Fatalf("card unmounted by rejected reset")
	}
	release()

	if rr := doJSON(t, a.handler, http.MethodPost, "/tasks/reset", nil); rr.Code != http.StatusNoContent {
		t.Fatalf("reset after release status=%d, want 204", rr.Code)
	}
	if a.pipeline.Busy(a.ws.Card) {
		t.Fatalf("region still held after reset")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{form.ErrMissingField, http.StatusBadRequest},
		{ErrNoTask, http.StatusNotFound},
		{fmt.Errorf("%w: %w", exports.ErrCapture, render.ErrNotMounted), http.StatusNotFound},
		{exports.ErrExportInProgress, http.StatusConflict},
		{form.ErrBusy, http.StatusConflict},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{exports.ErrSave, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Fatalf("statusFor(%v)=%d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRequestID(t *testing.T) {
	a := newApp(t, nil)

	rr := doGet(t, a.handler, "/health")
	if _, err := uuid.Parse(rr.Header().Get(requestIDHeader)); err != nil {
		t.Fatalf("X-Request-ID=%q is not a uuid", rr.Header().Get(requestIDHeader))
	}

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, id)
	rr = httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	if got := rr.Header().Get(requestIDHeader); got != id {
		t.Fatalf("X-Request-ID=%q, want echoed %q", got, id)
	}
}
