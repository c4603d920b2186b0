package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GarageLink/GarageLink/internal/common/httpx"
	"github.com/GarageLink/GarageLink/internal/servicerec"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(httpx.New(httpx.Options{BaseURL: srv.URL})), srv
}

func TestListServicesToleratesEnvelopes(t *testing.T) {
	payloads := []string{
		`[{"id":1,"service_type":"balancing"}]`,
		`{"data":[{"id":1,"service_type":"balancing"}]}`,
		`{"results":[{"id":1,"service_type":"balancing"}]}`,
		`{"services":[{"id":1,"service_type":"balancing"}]}`,
	}
	for _, payload := range payloads {
		payload := payload
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(payload))
		})
		got, err := c.ListServices(context.Background())
		if err != nil {
			t.Fatalf("ListServices(%s): %v", payload, err)
		}
		if len(got) != 1 || got[0].Type != servicerec.TypeBalancing {
			t.Fatalf("unexpected records for %s: %#v", payload, got)
		}
	}
}

func TestCreateServiceStampsDate(t *testing.T) {
	var body CreateServiceInput
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		_, _ = w.Write([]byte(`{"id":9}`))
	})
	// 固定时钟，避免跨午夜抖动
	c.now = func() time.Time { return time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC) }

	rec, err := c.CreateService(context.Background(), CreateServiceInput{
		CustomerID:    1,
		VehicleID:     2,
		Type:          servicerec.TypeAlignment,
		Kilometer:     12000,
		NextKilometer: 17000,
	})
	if err != nil {
		t.Fatalf("CreateService: %v", err)
	}
	if rec.ID != 9 {
		t.Fatalf("unexpected record: %#v", rec)
	}
	if body.ServiceDate != "2025-06-01" {
		t.Fatalf("expected stamped date, got %q", body.ServiceDate)
	}
}

func TestCreateCustomerValidation(t *testing.T) {
	called := false
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	if _, err := c.CreateCustomer(context.Background(), CreateCustomerInput{Phone: "9876543210"}); err == nil {
		t.Fatalf("expected validation error for missing name")
	}
	if _, err := c.CreateCustomer(context.Background(), CreateCustomerInput{Name: "Ravi"}); err == nil {
		t.Fatalf("expected validation error for missing phone")
	}
	if called {
		t.Fatalf("validation failures must not hit the network")
	}
}

func TestCustomerVehiclesPath(t *testing.T) {
	var gotPath string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[{"id":1,"customer":42,"vehicle_number":"KA01AB1234"}]`))
	})

	vs, err := c.CustomerVehicles(context.Background(), 42)
	if err != nil {
		t.Fatalf("CustomerVehicles: %v", err)
	}
	if gotPath != "/customers/42/vehicles" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if len(vs) != 1 || vs[0].CustomerID != 42 {
		t.Fatalf("unexpected vehicles: %#v", vs)
	}
}

func TestProfileAuthorized(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := now.Add(-time.Hour)

	cases := []struct {
		name string
		p    Profile
		want bool
	}{
		{"subscription", Profile{SubscriptionActive: true}, true},
		{"open trial", Profile{TrialActive: true}, true},
		{"expired trial", Profile{TrialActive: true, TrialEndsAt: &end}, false},
		{"nothing", Profile{}, false},
	}
	for _, c := range cases {
		if got := c.p.Authorized(now); got != c.want {
			t.Fatalf("%s: Authorized = %v, want %v", c.name, got, c.want)
		}
	}
}
