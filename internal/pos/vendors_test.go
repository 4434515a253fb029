package pos

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"posbridge/internal/domain"
)

func squareServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/locations", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r, "sq-key")
		writeJSON(t, w, map[string]any{"locations": []map[string]any{
			{"id": "L1", "status": "ACTIVE"},
			{"id": "L2", "status": "INACTIVE"},
		}})
	})
	mux.HandleFunc("/v2/orders/search", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r, "sq-key")
		if r.Header.Get("Square-Version") == "" {
			t.Errorf("missing Square-Version header")
		}
		var req squareSearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode search: %v", err)
		}
		if len(req.LocationIDs) != 1 || req.LocationIDs[0] != "L1" {
			t.Errorf("unexpected locations %v", req.LocationIDs)
		}
		_, _ = w.Write([]byte(`{"orders":[
		  {"id":"sq-old","reference_id":"Table 7","state":"OPEN","created_at":"2024-01-01T09:00:00Z","updated_at":"2024-01-01T09:30:00Z",
		   "total_money":{"amount":1000,"currency":"USD"},"total_tax_money":{"amount":80,"currency":"USD"}},
		  {"id":"sq-new","ticket_name":"table 7 bar","state":"OPEN","created_at":"2024-01-01T10:00:00Z","updated_at":"2024-01-01T11:00:00.123Z",
		   "line_items":[{"uid":"li-1","name":"Latte","quantity":"2","base_price_money":{"amount":450,"currency":"USD"},
		     "modifiers":[{"uid":"mod-1","name":"Oat milk","base_price_money":{"amount":75,"currency":"USD"}}]}],
		   "total_money":{"amount":1227,"currency":"USD"},"total_tax_money":{"amount":102,"currency":"USD"},
		   "total_tip_money":{"amount":75,"currency":"USD"}},
		  {"id":"sq-other","reference_id":"Table 8","state":"OPEN","updated_at":"2024-01-01T12:00:00Z",
		   "total_money":{"amount":500,"currency":"USD"},"total_tax_money":{"amount":0,"currency":"USD"}}
		]}`))
	})
	return httptest.NewServer(mux)
}

func TestSquare_LatestOrderForTable(t *testing.T) {
	srv := squareServer(t)
	defer srv.Close()

	a, err := newTestFactory(t, srv, nil).NewAdapter(domain.ProviderSquare, map[string]string{"apiKey": "sq-key", "apiBaseUrl": srv.URL})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	r, err := a.GetReceiptForTable(context.Background(), "7", "rest-1")
	if err != nil {
		t.Fatalf("get receipt: %v", err)
	}
	if r.ID != "sq-new" {
		t.Fatalf("expected sq-new, got %s", r.ID)
	}
	if r.Total != 12.27 || r.Tax != 1.02 || r.Subtotal != 10.5 {
		t.Fatalf("unexpected totals %v %v %v", r.Subtotal, r.Tax, r.Total)
	}
	if r.Gratuity == nil || *r.Gratuity != 0.75 {
		t.Fatalf("unexpected gratuity %v", r.Gratuity)
	}
	if len(r.Items) != 1 || r.Items[0].Price != 4.5 || r.Items[0].Quantity != 2 || r.Items[0].Modifiers[0].Price != 0.75 {
		t.Fatalf("unexpected items %+v", r.Items)
	}
	if r.Status != domain.ReceiptStatusOpen || !r.TotalsConsistent() {
		t.Fatalf("unexpected receipt %+v", r)
	}
}

func TestSquare_NoOrderForTable(t *testing.T) {
	srv := squareServer(t)
	defer srv.Close()

	a, _ := newTestFactory(t, srv, nil).NewAdapter(domain.ProviderSquare, map[string]string{"apiKey": "sq-key", "apiBaseUrl": srv.URL})
	_, err := a.GetReceiptForTable(context.Background(), "99", "rest-1")
	var pe *domain.PosIntegrationError
	if !errors.As(err, &pe) || !strings.HasPrefix(err.Error(), "Failed to fetch receipt from Square: ") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestSquare_StateMapping(t *testing.T) {
	for state, want := range map[string]domain.ReceiptStatus{
		"COMPLETED": domain.ReceiptStatusPaid,
		"CANCELED":  domain.ReceiptStatusClosed,
		"OPEN":      domain.ReceiptStatusOpen,
	} {
		r, err := mapSquareOrder(squareOrder{State: state}, "1", "r")
		if err != nil || r.Status != want {
			t.Fatalf("%s -> %v (%v)", state, r, err)
		}
	}
}

const toastDefaultOrders = `[
		  {"guid":"o-1","createdDate":"2024-01-01T09:00:00.000+0000","modifiedDate":"2024-01-01T09:10:00.000+0000","table":{"guid":"tbl-5"},
		   "checks":[{"guid":"c-1","amount":10,"taxAmount":1,"totalAmount":11,"paymentStatus":"OPEN"}]},
		  {"guid":"o-2","createdDate":"2024-01-01T10:00:00.000+0000","modifiedDate":"2024-01-01T11:10:00.000+0000","table":{"guid":"tbl-5"},
		   "checks":[
		     {"guid":"c-void","voided":true,"amount":1,"taxAmount":0,"totalAmount":1},
		     {"guid":"c-2","amount":24.5,"taxAmount":1.96,"totalAmount":26.46,"paymentStatus":"OPEN",
		      "selections":[
		        {"guid":"s-1","displayName":"Pasta","receiptLinePrice":12.25,"quantity":2,"modifiers":[{"guid":"md-1","displayName":"Extra sauce","price":0}]},
		        {"guid":"s-2","displayName":"Voided wine","receiptLinePrice":9,"quantity":1,"voided":true}
		      ]}]},
		  {"guid":"o-3","voided":true,"modifiedDate":"2024-01-01T12:00:00.000+0000","table":{"guid":"tbl-5"},
		   "checks":[{"guid":"c-3","amount":1,"taxAmount":0,"totalAmount":1}]},
		  {"guid":"o-4","modifiedDate":"2024-01-01T12:30:00.000+0000","table":{"guid":"tbl-6"},
		   "checks":[{"guid":"c-4","amount":1,"taxAmount":0,"totalAmount":1}]}
		]`

// toastFake serves login, tables and ordersBulk; onOrders inspects the bulk query.
func toastFake(t *testing.T, orders string, onOrders func(url.Values)) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/authentication/v1/authentication/login", func(w http.ResponseWriter, r *http.Request) {
		var req toastLoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.ClientID != "cid" || req.ClientSecret != "secret" {
			http.Error(w, `{"message":"bad credentials"}`, http.StatusUnauthorized)
			return
		}
		writeJSON(t, w, map[string]any{"token": map[string]any{"accessToken": "tok"}})
	})
	mux.HandleFunc("/config/v2/tables", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r, "tok")
		if r.Header.Get("Toast-Restaurant-External-ID") != "rest-2" {
			t.Errorf("missing restaurant header")
		}
		writeJSON(t, w, []map[string]any{{"guid": "tbl-5", "name": "Table 5"}, {"guid": "tbl-6", "name": "6"}})
	})
	mux.HandleFunc("/orders/v2/ordersBulk", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r, "tok")
		if onOrders != nil {
			onOrders(r.URL.Query())
		}
		_, _ = w.Write([]byte(orders))
	})
	return httptest.NewServer(mux)
}

func toastServer(t *testing.T) *httptest.Server {
	t.Helper()
	return toastFake(t, toastDefaultOrders, func(q url.Values) {
		if q.Get("startDate") != "2023-12-31T13:00:00.000+0000" || q.Get("endDate") != "2024-01-01T13:00:00.000+0000" {
			t.Errorf("unexpected window %s .. %s", q.Get("startDate"), q.Get("endDate"))
		}
	})
}

func TestToast_LatestCheckForTable(t *testing.T) {
	srv := toastServer(t)
	defer srv.Close()

	a, err := newTestFactory(t, srv, nil).NewAdapter(domain.ProviderToast, map[string]string{"clientId": "cid", "clientSecret": "secret", "apiBaseUrl": srv.URL})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	r, err := a.GetReceiptForTable(context.Background(), "5", "rest-2")
	if err != nil {
		t.Fatalf("get receipt: %v", err)
	}
	if r.ID != "c-2" {
		t.Fatalf("expected c-2, got %s", r.ID)
	}
	if r.Subtotal != 24.5 || r.Tax != 1.96 || r.Total != 26.46 || r.Gratuity != nil {
		t.Fatalf("unexpected totals %+v", r)
	}
	if len(r.Items) != 1 || r.Items[0].Price != 12.25 || r.Items[0].Quantity != 2 || len(r.Items[0].Modifiers) != 1 {
		t.Fatalf("unexpected items %+v", r.Items)
	}
}

func TestToast_BadCredentials(t *testing.T) {
	srv := toastServer(t)
	defer srv.Close()

	a, _ := newTestFactory(t, srv, nil).NewAdapter(domain.ProviderToast, map[string]string{"clientId": "cid", "clientSecret": "wrong", "apiBaseUrl": srv.URL})
	_, err := a.GetReceiptForTable(context.Background(), "5", "rest-2")
	var pe *domain.PosIntegrationError
	if !errors.As(err, &pe) || !strings.Contains(err.Error(), "authenticate") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestToast_UnknownTable(t *testing.T) {
	srv := toastServer(t)
	defer srv.Close()

	a, _ := newTestFactory(t, srv, nil).NewAdapter(domain.ProviderToast, map[string]string{"clientId": "cid", "clientSecret": "secret", "apiBaseUrl": srv.URL})
	_, err := a.GetReceiptForTable(context.Background(), "42", "rest-2")
	if err == nil || !strings.Contains(err.Error(), "42") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestMicros_LatestCheckForTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/checks" {
			http.NotFound(w, r)
			return
		}
		requireBearer(t, r, "mk")
		q := r.URL.Query()
		if q.Get("locRef") != "loc-1" || q.Get("tableName") != "10" || q.Get("includeClosed") != "false" {
			t.Errorf("unexpected query %v", q)
		}
		_, _ = w.Write([]byte(`{"checks":[
		  {"header":{"checkRef":"chk-1","tableName":"10","status":"Open","openTime":"2024-01-01T09:00:00Z","lastUpdatedTime":"2024-01-01T09:05:00Z"},
		   "totals":{"subTotal":5,"taxTotal":0.5,"total":5.5}},
		  {"header":{"checkRef":"chk-2","tableName":"Table 10","status":"Paid","openTime":"2024-01-01T10:00:00Z","lastUpdatedTime":"2024-01-01T10:30:00Z"},
		   "menuItems":[{"lineNum":1,"menuItemId":"mi-9","name":"Steak","price":"28.00","quantity":1,
		     "condiments":[{"menuItemId":"cd-1","name":"Pepper sauce","price":"2.00"}]}],
		   "totals":{"subTotal":"30.00","taxTotal":"2.40","total":"37.40","tipTotal":"5.00"}}
		]}`))
	}))
	defer srv.Close()

	creds := map[string]string{"apiEndpoint": srv.URL + "/api/v1", "apiKey": "mk", "locationId": "loc-1"}
	a, err := newTestFactory(t, srv, nil).NewAdapter(domain.ProviderMicros, creds)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	r, err := a.GetReceiptForTable(context.Background(), "10", "rest-3")
	if err != nil {
		t.Fatalf("get receipt: %v", err)
	}
	if r.ID != "chk-2" || r.Status != domain.ReceiptStatusPaid {
		t.Fatalf("unexpected receipt %+v", r)
	}
	if r.Total != 37.4 || r.Gratuity == nil || *r.Gratuity != 5 || !r.TotalsConsistent() {
		t.Fatalf("unexpected totals %+v", r)
	}
	if r.Items[0].ID != "mi-9-1" || r.Items[0].Modifiers[0].Name != "Pepper sauce" {
		t.Fatalf("unexpected items %+v", r.Items)
	}
}

func TestMicros_RequiresEndpointURL(t *testing.T) {
	_, err := newTestFactory(t, nil, nil).NewAdapter(domain.ProviderMicros, map[string]string{"apiEndpoint": "not a url", "apiKey": "k", "locationId": "l"})
	var pe *domain.PosIntegrationError
	if !errors.As(err, &pe) || !strings.Contains(err.Error(), "apiEndpoint must be a valid URL") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestFoodics_OpenOrderForTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r, "fk")
		q := r.URL.Query()
		if q.Get("filter[business_id]") != "biz-1" || q.Get("filter[table_id]") != "5" || q.Get("filter[status]") != "opened" {
			t.Errorf("unexpected query %v", q)
		}
		_, _ = w.Write([]byte(`{"data":[
		  {"id":"f-1","status":"opened","subtotal_price":8,"total_taxes":1.2,"total_price":9.2,
		   "created_at":"2024-01-01 09:00:00","updated_at":"2024-01-01 09:30:00"},
		  {"id":"f-2","status":"opened","subtotal_price":15,"total_taxes":2.25,"total_price":17.25,
		   "created_at":"2024-01-01 10:00:00","updated_at":"2024-01-01 10:45:00",
		   "products":[{"id":"op-1","product":{"id":"p-1","name":"Shawarma"},"quantity":3,"unit_price":5,
		     "options":[{"id":"oo-1","modifier_option":{"id":"mo-1","name":"Garlic"},"unit_price":0}]}]}
		]}`))
	}))
	defer srv.Close()

	a, err := newTestFactory(t, srv, nil).NewAdapter(domain.ProviderFoodics, map[string]string{"apiKey": "fk", "businessId": "biz-1", "apiBaseUrl": srv.URL})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	r, err := a.GetReceiptForTable(context.Background(), "5", "rest-4")
	if err != nil {
		t.Fatalf("get receipt: %v", err)
	}
	if r.ID != "f-2" || r.Total != 17.25 || r.Items[0].Quantity != 3 || r.Items[0].Modifiers[0].Name != "Garlic" {
		t.Fatalf("unexpected receipt %+v", r)
	}
	if r.UpdatedAt.Hour() != 10 || r.UpdatedAt.Minute() != 45 {
		t.Fatalf("unexpected updatedAt %v", r.UpdatedAt)
	}
}

func TestFoodics_NoOpenOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	a, _ := newTestFactory(t, srv, nil).NewAdapter(domain.ProviderFoodics, map[string]string{"apiKey": "fk", "businessId": "biz-1", "apiBaseUrl": srv.URL})
	_, err := a.GetReceiptForTable(context.Background(), "5", "rest-4")
	var pe *domain.PosIntegrationError
	if !errors.As(err, &pe) || !strings.Contains(err.Error(), "Foodics") || !strings.Contains(err.Error(), "table 5") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestSquare_TableIDIsWholeToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"orders":[
		  {"id":"order-of-table-12","reference_id":"Table 12","state":"OPEN","updated_at":"2024-01-01T12:00:00Z",
		   "total_money":{"amount":500,"currency":"USD"},"total_tax_money":{"amount":0,"currency":"USD"}}
		]}`))
	}))
	defer srv.Close()

	a, _ := newTestFactory(t, srv, nil).NewAdapter(domain.ProviderSquare, map[string]string{"apiKey": "sq-key", "locationId": "L1", "apiBaseUrl": srv.URL})
	// table 1 must not pick up table 12's order
	if r, err := a.GetReceiptForTable(context.Background(), "1", "rest-1"); err == nil {
		t.Fatalf("table 1 got %s", r.ID)
	}
	r, err := a.GetReceiptForTable(context.Background(), "12", "rest-1")
	if err != nil || r.ID != "order-of-table-12" {
		t.Fatalf("table 12: %v %v", r, err)
	}
}

func TestMicros_TableIDIsWholeToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"checks":[
		  {"header":{"checkRef":"chk-10","tableName":"Table 10","lastUpdatedTime":"2024-01-01T10:30:00Z"},
		   "totals":{"subTotal":1,"taxTotal":0,"total":1}}
		]}`))
	}))
	defer srv.Close()

	creds := map[string]string{"apiEndpoint": srv.URL, "apiKey": "mk", "locationId": "loc-1"}
	a, _ := newTestFactory(t, srv, nil).NewAdapter(domain.ProviderMicros, creds)
	if r, err := a.GetReceiptForTable(context.Background(), "1", "rest-3"); err == nil {
		t.Fatalf("table 1 got %s", r.ID)
	}
}

func TestToast_SkipsPaidAndClosedChecks(t *testing.T) {
	const openAndPaid = `[
	  {"guid":"o-open","modifiedDate":"2024-01-01T12:00:00.000+0000","table":{"guid":"tbl-5"},
	   "checks":[{"guid":"open-check","amount":10,"taxAmount":1,"totalAmount":11,"paymentStatus":"OPEN"}]},
	  {"guid":"o-paid","modifiedDate":"2024-01-01T12:05:00.000+0000","table":{"guid":"tbl-5"},
	   "checks":[{"guid":"paid-check","amount":10,"taxAmount":1,"totalAmount":11,"paymentStatus":"PAID"}]},
	  {"guid":"o-closed","modifiedDate":"2024-01-01T12:10:00.000+0000","closedDate":"2024-01-01T12:10:00.000+0000","table":{"guid":"tbl-5"},
	   "checks":[{"guid":"closed-order-check","amount":10,"taxAmount":1,"totalAmount":11,"paymentStatus":"OPEN"}]}
	]`
	creds := func(base string) map[string]string {
		return map[string]string{"clientId": "cid", "clientSecret": "secret", "apiBaseUrl": base}
	}

	srv := toastFake(t, openAndPaid, nil)
	defer srv.Close()
	a, _ := newTestFactory(t, srv, nil).NewAdapter(domain.ProviderToast, creds(srv.URL))
	r, err := a.GetReceiptForTable(context.Background(), "5", "rest-2")
	if err != nil || r.ID != "open-check" || r.Status != domain.ReceiptStatusOpen {
		t.Fatalf("expected open-check, got %+v %v", r, err)
	}

	// only a paid check left
	paidOnly := toastFake(t, `[
	  {"guid":"o-paid","modifiedDate":"2024-01-01T12:05:00.000+0000","table":{"guid":"tbl-5"},
	   "checks":[{"guid":"paid-check","amount":10,"taxAmount":1,"totalAmount":11,"paymentStatus":"PAID"}]}
	]`, nil)
	defer paidOnly.Close()
	a, _ = newTestFactory(t, paidOnly, nil).NewAdapter(domain.ProviderToast, creds(paidOnly.URL))
	_, err = a.GetReceiptForTable(context.Background(), "5", "rest-2")
	var pe *domain.PosIntegrationError
	if !errors.As(err, &pe) || !strings.Contains(err.Error(), "no open check") {
		t.Fatalf("expected no open check error, got %v", err)
	}
}

func TestToast_EveningPacificUsesTrailingWindow(t *testing.T) {
	pacific := time.FixedZone("PST", -8*3600)
	evening := time.Date(2024, 1, 1, 19, 30, 0, 0, pacific)

	srv := toastFake(t, `[
	  {"guid":"o-dinner","modifiedDate":"2024-01-01T19:00:00.000-0800","table":{"guid":"tbl-5"},
	   "checks":[{"guid":"dinner-check","amount":40,"taxAmount":3.2,"totalAmount":43.2,"paymentStatus":"OPEN"}]}
	]`, func(q url.Values) {
		if q.Get("businessDate") != "" {
			t.Errorf("businessDate must not be sent, got %q", q.Get("businessDate"))
		}
		if q.Get("startDate") != "2024-01-01T03:30:00.000+0000" || q.Get("endDate") != "2024-01-02T03:30:00.000+0000" {
			t.Errorf("unexpected window %s .. %s", q.Get("startDate"), q.Get("endDate"))
		}
	})
	defer srv.Close()

	f := NewFactory(WithHTTPClient(srv.Client()), WithClock(func() time.Time { return evening }))
	a, _ := f.NewAdapter(domain.ProviderToast, map[string]string{"clientId": "cid", "clientSecret": "secret", "apiBaseUrl": srv.URL})
	r, err := a.GetReceiptForTable(context.Background(), "5", "rest-2")
	if err != nil || r.ID != "dinner-check" {
		t.Fatalf("expected dinner-check, got %+v %v", r, err)
	}
}

func TestFoodics_ThreeDecimalCurrency(t *testing.T) {
	var o foodicsOrder
	if err := json.Unmarshal([]byte(`{"id":"kw-1","status":"opened","subtotal_price":"1.250","total_taxes":"0.063","total_price":"1.313",
	  "products":[{"id":"op-1","product":{"name":"Karak"},"quantity":1,"unit_price":"1.250"}]}`), &o); err != nil {
		t.Fatal(err)
	}
	r, err := mapFoodicsOrder(o, "5", "rest-4")
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if r.Tax != 0.063 || r.Total != 1.313 || r.Items[0].Price != 1.25 || !r.TotalsConsistent() {
		t.Fatalf("fils lost: %+v", r)
	}
}
