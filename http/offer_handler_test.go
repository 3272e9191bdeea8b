package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"salon-offers/domain"
	"salon-offers/repository"
	"salon-offers/service"
)

const sampleCSV = "customer_name,last_service,visits,days_since_last_visit\n" +
	"Asha,Haircut,1,5\n" +
	"Ravi,Facial,2,25\n" +
	"Meera,Manicure,6,10\n"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	offers := service.NewOfferService(
		repository.NewCustomerCSVReader(nil),
		service.NewMessageComposer(service.NewFallbackOnlyAIService(nil), nil),
		nil,
	)
	limiter := NewRateLimiter(100, time.Minute)
	t.Cleanup(limiter.Stop)

	return NewRouter(
		NewOfferHandler(offers, false, 1<<20, nil),
		NewHealthHandler(false, "none", nil),
		limiter,
		nil,
	)
}

func uploadRequest(t *testing.T, field, filename, content, accept string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/generate_offers", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return req
}

func TestGenerateOffersHandler_JSON(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "file", "customers.csv", sampleCSV, "application/json"))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}

	var results []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 offers, got %d", len(results))
	}

	first := results[0]
	if first["customer_name"] != "Asha" || first["last_service"] != "Haircut" {
		t.Errorf("unexpected first offer: %v", first)
	}
	offer, _ := first["offer"].(string)
	if !strings.HasPrefix(offer, "Hi Asha! ") || !strings.Contains(offer, "20%") {
		t.Errorf("unexpected offer text: %q", offer)
	}
	if results[2]["offer_type"] != string(domain.OfferVIP) {
		t.Errorf("expected vip tier for Meera, got %v", results[2]["offer_type"])
	}
}

func TestGenerateOffersHandler_HTML(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "file", "customers.csv", sampleCSV,
		"text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Generated Offers") || !strings.Contains(body, "Meera") {
		t.Errorf("expected rendered offers in page")
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		t.Errorf("expected HTML content type, got %q", w.Header().Get("Content-Type"))
	}
}

func TestGenerateOffersHandler_InvalidExtension(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "file", "customers.xlsx", sampleCSV, "application/json"))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !strings.Contains(resp["error"], "Invalid file format") {
		t.Errorf("unexpected error message: %q", resp["error"])
	}
}

func TestGenerateOffersHandler_InvalidExtensionPlainText(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "file", "notes.txt", sampleCSV, "text/html"))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid file format. Please upload a CSV file.") {
		t.Errorf("unexpected body: %q", w.Body.String())
	}
}

func TestGenerateOffersHandler_MissingFile(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "", "", "", "application/json"))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No file part") {
		t.Errorf("unexpected body: %q", w.Body.String())
	}
}

func TestGenerateOffersHandler_EmptyFilename(t *testing.T) {
	router := newTestRouter(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(sampleCSV)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	if !strings.Contains(body.String(), `name="file"; filename=""`) {
		t.Fatalf("expected an empty filename in the part header, got %q", body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/generate_offers", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Error != "No selected file" {
		t.Errorf("expected %q, got %q", "No selected file", resp.Error)
	}
}

func TestGenerateOffersHandler_GetWithoutFile(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/generate_offers", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Error != "No file part" {
		t.Errorf("expected %q, got %q", "No file part", resp.Error)
	}
}

func TestGenerateOffersHandler_NotMultipart(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/generate_offers", strings.NewReader(sampleCSV))
	req.Header.Set("Content-Type", "text/csv")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestGenerateOffersHandler_BadCSV(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "file", "customers.csv", "name,service\nA,B\n", "application/json"))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Error processing file") {
		t.Errorf("unexpected body: %q", w.Body.String())
	}
}

func TestGenerateOffersHandler_TooLarge(t *testing.T) {
	router := newTestRouter(t)

	big := sampleCSV + strings.Repeat("Asha,Haircut,1,5\n", 80_000)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "file", "customers.csv", big, "application/json"))

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}

func TestGenerateOffersHandler_MethodNotAllowed(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/generate_offers", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"error":"Method not allowed"`) {
		t.Errorf("expected JSON error body, got %q", w.Body.String())
	}
}

func TestIndexHandler(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `name="file"`) {
		t.Errorf("expected upload form in page")
	}
}

func TestHealthHandler(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Status != "ok" || resp.AIEnabled {
		t.Errorf("unexpected health response: %+v", resp)
	}
}
