package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tbourn/go-sales-api/internal/domain"
	"github.com/tbourn/go-sales-api/internal/http/middleware"
	"github.com/tbourn/go-sales-api/internal/services"
)

// ---------- stubs ----------

type stubCatalog struct {
	stores []domain.Store
	items  []domain.Item
	err    error
}

func (s stubCatalog) Stores(context.Context) ([]domain.Store, error) { return s.stores, s.err }
func (s stubCatalog) Items(context.Context) ([]domain.Item, error)   { return s.items, s.err }

type stubReport struct {
	items  []domain.ItemTop
	stores []domain.StoreTop
	err    error
}

func (s stubReport) TopItems(context.Context) ([]domain.ItemTop, error)   { return s.items, s.err }
func (s stubReport) TopStores(context.Context) ([]domain.StoreTop, error) { return s.stores, s.err }

type onceCall struct {
	clientID, key   string
	itemID, storeID int64
}

type stubSale struct {
	record     func(ctx context.Context, itemID, storeID int64) (*domain.Sale, error)
	recordOnce func(ctx context.Context, clientID, key string, itemID, storeID int64) (*domain.Sale, bool, error)

	onceCalls []onceCall
}

func (s *stubSale) Record(ctx context.Context, itemID, storeID int64) (*domain.Sale, error) {
	return s.record(ctx, itemID, storeID)
}

func (s *stubSale) RecordOnce(ctx context.Context, clientID, key string, itemID, storeID int64) (*domain.Sale, bool, error) {
	s.onceCalls = append(s.onceCalls, onceCall{clientID, key, itemID, storeID})
	return s.recordOnce(ctx, clientID, key, itemID, storeID)
}

// ---------- plumbing ----------

func newRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{Scope: services.SaleScope}, nil))
	r.GET("/stores/", h.ListStores)
	r.GET("/items/", h.ListItems)
	r.GET("/items/top/", h.TopItems)
	r.GET("/stores/top/", h.TopStores)
	r.POST("/sales/", h.CreateSale)
	return r
}

// salesOutcomes reads salesapi_sales_total{outcome} from the default registry.
func salesOutcomes(t *testing.T, outcome string) float64 {
	t.Helper()
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != "salesapi_sales_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "outcome" && lp.GetValue() == outcome {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func do(r http.Handler, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	var rdr *bytes.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return er
}

var fixedSale = &domain.Sale{
	ID:       7,
	SaleTime: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	ItemID:   10,
	StoreID:  1,
}

// ---------- catalog ----------

func TestListStoresAndItems_OK(t *testing.T) {
	h := New(stubCatalog{
		stores: []domain.Store{{ID: 1, Address: "12 Market St"}},
		items:  []domain.Item{{ID: 10, Name: "Apple", Price: 1.5}},
	}, stubReport{}, &stubSale{})
	r := newRouter(h)

	w := do(r, http.MethodGet, "/stores/", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stores status=%d", w.Code)
	}
	var stores []domain.Store
	if err := json.Unmarshal(w.Body.Bytes(), &stores); err != nil {
		t.Fatal(err)
	}
	if len(stores) != 1 || stores[0].Address != "12 Market St" {
		t.Fatalf("stores=%+v", stores)
	}

	w = do(r, http.MethodGet, "/items/", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("items status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"price":1.5`) {
		t.Fatalf("items body=%s", w.Body.String())
	}
}

func TestListStores_EmptyIsArray(t *testing.T) {
	h := New(stubCatalog{stores: []domain.Store{}, items: []domain.Item{}}, stubReport{}, &stubSale{})
	w := do(newRouter(h), http.MethodGet, "/stores/", "", nil)
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}
}

func TestCatalog_ServiceError500(t *testing.T) {
	h := New(stubCatalog{err: errors.New("db down")}, stubReport{}, &stubSale{})
	r := newRouter(h)
	for _, p := range []string{"/stores/", "/items/"} {
		w := do(r, http.MethodGet, p, "", nil)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("%s status=%d", p, w.Code)
		}
		er := decodeErr(t, w)
		if er.Code != ErrCodeListFailed || er.RequestID == "" {
			t.Fatalf("%s body=%+v", p, er)
		}
	}
}

// ---------- reports ----------

func TestTopItemsAndStores_OK(t *testing.T) {
	h := New(stubCatalog{}, stubReport{
		items:  []domain.ItemTop{{ID: 10, Name: "Apple", SalesAmount: 3}, {ID: 20, Name: "Bread", SalesAmount: 1}},
		stores: []domain.StoreTop{{ID: 2, Address: "B", Income: 9}},
	}, &stubSale{})
	r := newRouter(h)

	w := do(r, http.MethodGet, "/items/top/", "", nil)
	var items []domain.ItemTop
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil || w.Code != http.StatusOK {
		t.Fatalf("status=%d err=%v", w.Code, err)
	}
	if len(items) != 2 || items[0].SalesAmount != 3 {
		t.Fatalf("items=%+v", items)
	}
	if !strings.Contains(w.Body.String(), `"sales_amount":3`) {
		t.Fatalf("wire name missing: %s", w.Body.String())
	}

	w = do(r, http.MethodGet, "/stores/top/", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"income":9`) {
		t.Fatalf("stores top: %d %s", w.Code, w.Body.String())
	}
}

func TestTopReports_ServiceError500(t *testing.T) {
	h := New(stubCatalog{}, stubReport{err: errors.New("boom")}, &stubSale{})
	r := newRouter(h)
	for _, p := range []string{"/items/top/", "/stores/top/"} {
		w := do(r, http.MethodGet, p, "", nil)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("%s status=%d", p, w.Code)
		}
		if er := decodeErr(t, w); er.Code != ErrCodeReportFailed {
			t.Fatalf("%s code=%q", p, er.Code)
		}
	}
}

// ---------- sales ----------

func TestCreateSale_OK(t *testing.T) {
	svc := &stubSale{record: func(_ context.Context, itemID, storeID int64) (*domain.Sale, error) {
		if itemID != 10 || storeID != 1 {
			t.Fatalf("unexpected ids %d/%d", itemID, storeID)
		}
		return fixedSale, nil
	}}
	before := salesOutcomes(t, middleware.SaleCreated)

	w := do(newRouter(New(stubCatalog{}, stubReport{}, svc)), http.MethodPost, "/sales/", `{"item_id":10,"store_id":1}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got domain.Sale
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != 7 || got.ItemID != 10 || got.StoreID != 1 || !got.SaleTime.Equal(fixedSale.SaleTime) {
		t.Fatalf("sale=%+v", got)
	}
	if w.Header().Get(middleware.HeaderIdempotencyReplayed) != "" {
		t.Fatalf("replay header must be absent")
	}
	if after := salesOutcomes(t, middleware.SaleCreated); after != before+1 {
		t.Fatalf("created counter %v -> %v", before, after)
	}
}

func TestCreateSale_InvalidBodies(t *testing.T) {
	svc := &stubSale{record: func(context.Context, int64, int64) (*domain.Sale, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}}
	r := newRouter(New(stubCatalog{}, stubReport{}, svc))

	cases := map[string]string{
		"empty":          "",
		"not json":       "nope",
		"missing store":  `{"item_id":1}`,
		"zero item":      `{"item_id":0,"store_id":1}`,
		"negative store": `{"item_id":1,"store_id":-2}`,
		"string id":      `{"item_id":"1","store_id":1}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/sales/", body, nil)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status=%d", w.Code)
			}
			er := decodeErr(t, w)
			if er.Error != MsgInvalidData || er.Code != ErrCodeInvalidData {
				t.Fatalf("body=%+v", er)
			}
		})
	}
}

func TestCreateSale_ServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"item", services.ErrItemNotFound, http.StatusBadRequest, ErrCodeNoSuchItem, MsgNoSuchItem},
		{"store", services.ErrStoreNotFound, http.StatusBadRequest, ErrCodeNoSuchStore, MsgNoSuchStore},
		{"wrapped item", errors.Join(errors.New("tx"), services.ErrItemNotFound), http.StatusBadRequest, ErrCodeNoSuchItem, MsgNoSuchItem},
		{"invalid", services.ErrInvalidSale, http.StatusBadRequest, ErrCodeInvalidData, MsgInvalidData},
		{"db", errors.New("disk I/O error"), http.StatusInternalServerError, ErrCodeCreateFailed, "could not record sale"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubSale{record: func(context.Context, int64, int64) (*domain.Sale, error) { return nil, tc.err }}
			w := do(newRouter(New(stubCatalog{}, stubReport{}, svc)), http.MethodPost, "/sales/", `{"item_id":1,"store_id":1}`, nil)
			if w.Code != tc.status {
				t.Fatalf("status=%d want %d", w.Code, tc.status)
			}
			er := decodeErr(t, w)
			if er.Code != tc.code || er.Error != tc.message {
				t.Fatalf("body=%+v", er)
			}
		})
	}
}

func TestCreateSale_IdempotentReplay(t *testing.T) {
	calls := 0
	svc := &stubSale{recordOnce: func(context.Context, string, string, int64, int64) (*domain.Sale, bool, error) {
		calls++
		return fixedSale, calls > 1, nil
	}}
	r := newRouter(New(stubCatalog{}, stubReport{}, svc))
	hdr := map[string]string{
		middleware.HeaderIdempotencyKey: "sale-abc-1",
		middleware.HeaderClientID:       "till-4",
	}

	w1 := do(r, http.MethodPost, "/sales/", `{"item_id":10,"store_id":1}`, hdr)
	if w1.Code != http.StatusOK || w1.Header().Get(middleware.HeaderIdempotencyReplayed) != "" {
		t.Fatalf("first: %d replayed=%q", w1.Code, w1.Header().Get(middleware.HeaderIdempotencyReplayed))
	}

	before := salesOutcomes(t, middleware.SaleReplayed)
	w2 := do(r, http.MethodPost, "/sales/", `{"item_id":10,"store_id":1}`, hdr)
	if w2.Code != http.StatusOK || w2.Header().Get(middleware.HeaderIdempotencyReplayed) != "true" {
		t.Fatalf("second: %d replayed=%q", w2.Code, w2.Header().Get(middleware.HeaderIdempotencyReplayed))
	}
	if w1.Body.String() != w2.Body.String() {
		t.Fatalf("replayed body differs: %s vs %s", w1.Body.String(), w2.Body.String())
	}
	if after := salesOutcomes(t, middleware.SaleReplayed); after != before+1 {
		t.Fatalf("replayed counter %v -> %v", before, after)
	}

	if len(svc.onceCalls) != 2 {
		t.Fatalf("calls=%d", len(svc.onceCalls))
	}
	if c := svc.onceCalls[0]; c.clientID != "client:till-4" || c.key != "sale-abc-1" || c.itemID != 10 || c.storeID != 1 {
		t.Fatalf("unexpected call %+v", c)
	}
}

func TestCreateSale_BadIdempotencyKeyRejectedBeforeHandler(t *testing.T) {
	svc := &stubSale{}
	r := newRouter(New(stubCatalog{}, stubReport{}, svc))
	w := do(r, http.MethodPost, "/sales/", `{"item_id":10,"store_id":1}`,
		map[string]string{middleware.HeaderIdempotencyKey: "has spaces"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	if er := decodeErr(t, w); er.Code != "bad_idempotency_key" {
		t.Fatalf("code=%q", er.Code)
	}
	if len(svc.onceCalls) != 0 {
		t.Fatalf("service called")
	}
}
