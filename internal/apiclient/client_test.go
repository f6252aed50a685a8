package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"vidscribe/internal/api"
	"vidscribe/internal/apiclient"
	"vidscribe/internal/pipeline"
)

func TestNewEmptyBind(t *testing.T) {
	client, err := apiclient.New("", "")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if client != nil {
		t.Fatal("expected nil client for empty bind")
	}
	if _, err := client.Health(context.Background()); !apiclient.IsUnavailable(err) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestProcessVideoSendsCommandAndToken(t *testing.T) {
	var (
		gotAuth string
		gotCmd  pipeline.Command
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/process-video" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotCmd)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(api.NewProcessVideoResponse(gotCmd.VideoID))
	}))
	defer srv.Close()

	client, err := apiclient.New(srv.URL, "secret")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	resp, err := client.ProcessVideo(context.Background(), pipeline.Command{
		VideoID:        "v1",
		ProjectID:      "p1",
		SourceLocation: "gs://bucket/v1.mp4",
		Languages:      []string{"en"},
	})
	if err != nil {
		t.Fatalf("ProcessVideo error: %v", err)
	}
	if resp.VideoID != "v1" || resp.Status != api.StatusProcessingStarted {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotCmd.ProjectID != "p1" || gotCmd.SourceLocation != "gs://bucket/v1.mp4" {
		t.Fatalf("unexpected command: %+v", gotCmd)
	}
}

func TestErrorResponsesBecomeStatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "project not found"})
	}))
	defer srv.Close()

	client, _ := apiclient.New(srv.URL, "")
	_, err := client.Project(context.Background(), "missing")
	if !apiclient.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	var statusErr *apiclient.StatusError
	if !errors.As(err, &statusErr) || statusErr.Message != "project not found" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIsUnavailableOnRefusedConnection(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()

	client, _ := apiclient.New(addr, "")
	_, err = client.Health(context.Background())
	if !apiclient.IsUnavailable(err) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
