package metrics

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCountersAppearInSnapshot(t *testing.T) {
	before := GetSnapshot()

	IncDelivered("push")
	IncFailed("email")
	IncSkipped("sms")
	IncGatewayAccept()
	IncGatewayReject()

	after := GetSnapshot()
	if after.Delivered != before.Delivered+1 {
		t.Errorf("delivered %d -> %d", before.Delivered, after.Delivered)
	}
	if after.Failed != before.Failed+1 {
		t.Errorf("failed %d -> %d", before.Failed, after.Failed)
	}
	if after.Skipped != before.Skipped+1 {
		t.Errorf("skipped %d -> %d", before.Skipped, after.Skipped)
	}
	if after.GatewayAccepts != before.GatewayAccepts+1 {
		t.Errorf("gateway accepts %d -> %d", before.GatewayAccepts, after.GatewayAccepts)
	}
	if after.GatewayRejects != before.GatewayRejects+1 {
		t.Errorf("gateway rejects %d -> %d", before.GatewayRejects, after.GatewayRejects)
	}
}

func TestSetLastDelivery(t *testing.T) {
	now := time.Now()
	SetLastDelivery(now)
	s := GetSnapshot()
	if s.LastDelivery != now.Unix() {
		t.Errorf("last delivery = %d, want %d", s.LastDelivery, now.Unix())
	}
	if s.LastDeliveryHuman == "" {
		t.Error("human timestamp missing")
	}
}

func TestJSONHandler(t *testing.T) {
	IncDelivered("email")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/status", nil)
	JSONHandler().ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type %q", ct)
	}
	var s StatsSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if s.Delivered < 1 {
		t.Errorf("delivered = %d", s.Delivered)
	}
}

func TestPromHandlerServes(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	PromHandler().ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Errorf("status = %d", rec.Code)
	}
}
