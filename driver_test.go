package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testDriverConfig(oldURL, newURL string) *Config {
	return &Config{
		Protocol:     HTTP1,
		RequestCount: 5,
		Timeout:      2 * time.Second,
		Environments: map[string]Environment{
			"dev": {
				OldURL:     oldURL,
				NewURL:     newURL,
				CustomerID: "cust-1",
				VentureID:  "vent-2",
			},
		},
		Endpoints: []EndpointSpec{
			{Name: "Health Check", Path: "/health-check"},
		},
	}
}

func testLogger(t *testing.T) *Logger {
	t.Helper()
	logger, err := NewLogger("", false)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return logger
}

func TestRunEnvironment(t *testing.T) {
	oldSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	}))
	defer oldSrv.Close()
	newSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Millisecond)
		w.Write([]byte("OK"))
	}))
	defer newSrv.Close()

	cfg := testDriverConfig(oldSrv.URL, newSrv.URL)
	tester := NewTester(cfg, "", testLogger(t))

	runs, err := tester.RunEnvironment(context.Background(), "dev")
	if err != nil {
		t.Fatalf("run environment: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}

	run := runs[0]
	if len(run.RawOld) != 5 || len(run.RawNew) != 5 {
		t.Errorf("raw sample counts = %d/%d, want 5/5", len(run.RawOld), len(run.RawNew))
	}
	if !run.Comparable {
		t.Fatal("expected comparable record")
	}
	if run.Old.SuccessCount != 5 || run.New.SuccessCount != 5 {
		t.Errorf("success counts = %d/%d, want 5/5", run.Old.SuccessCount, run.New.SuccessCount)
	}
	if run.Environment != "dev" || run.EndpointName != "Health Check" {
		t.Errorf("record keyed as (%s, %s)", run.Environment, run.EndpointName)
	}
	// 新侧多了5ms的人工延迟，差值应该为正
	if run.Delta.Mean <= 0 {
		t.Errorf("delta mean = %v, want positive", run.Delta.Mean)
	}
}

func TestRunEnvironmentUnknownName(t *testing.T) {
	cfg := testDriverConfig("https://old.example.com", "https://new.example.com")
	tester := NewTester(cfg, "", testLogger(t))

	if _, err := tester.RunEnvironment(context.Background(), "staging"); err == nil {
		t.Fatal("expected error for unknown environment")
	}
}

func TestDriverSendsAuthHeaderAndExpandsPath(t *testing.T) {
	check := func(t *testing.T, r *http.Request) {
		if r.URL.Path != "/v1/customer/cust-1/venture/vent-2/profile" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
	}
	oldSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		check(t, r)
		w.Write([]byte("{}"))
	}))
	defer oldSrv.Close()
	newSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		check(t, r)
		w.Write([]byte("{}"))
	}))
	defer newSrv.Close()

	cfg := testDriverConfig(oldSrv.URL, newSrv.URL)
	cfg.RequestCount = 2
	cfg.Endpoints = []EndpointSpec{{
		Name:         "Profile",
		Path:         "/v1/customer/{customer_id}/venture/{venture_id}/profile",
		AuthRequired: true,
	}}

	tester := NewTester(cfg, "tok-123", testLogger(t))
	runs, err := tester.RunEnvironment(context.Background(), "dev")
	if err != nil {
		t.Fatalf("run environment: %v", err)
	}
	if runs[0].Old.SuccessCount != 2 || runs[0].New.SuccessCount != 2 {
		t.Error("expected all requests to succeed")
	}
}

// 一侧完全不可达时，对比记录要标记为不可用而不是报 0ms 差值
func TestRunEnvironmentUnreachableSide(t *testing.T) {
	oldSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	}))
	defer oldSrv.Close()

	deadSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := deadSrv.URL
	deadSrv.Close()

	cfg := testDriverConfig(oldSrv.URL, deadURL)
	tester := NewTester(cfg, "", testLogger(t))

	runs, err := tester.RunEnvironment(context.Background(), "dev")
	if err != nil {
		t.Fatalf("run environment: %v", err)
	}

	run := runs[0]
	if run.Comparable {
		t.Fatal("record must not be comparable when the new side is unreachable")
	}
	if len(run.RawNew) != 5 {
		t.Errorf("unreachable side still must record %d samples, got %d", 5, len(run.RawNew))
	}
	if run.New.FailCount != 5 || run.New.SuccessCount != 0 {
		t.Errorf("new side counts = %d/%d, want 0/5", run.New.SuccessCount, run.New.FailCount)
	}
}
