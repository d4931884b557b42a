package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func detectServer(t *testing.T, handler http.HandlerFunc) *REST {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewREST(srv.URL)
}

func TestRESTDetectPositive(t *testing.T) {
	var gotReq struct {
		Prompt string `json:"prompt"`
		Image  string `json:"image"`
	}
	client := detectServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/detect" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","message":"Face detected"}`))
	})

	verdict, err := client.Detect(context.Background(), []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if !verdict.FaceDetected() {
		t.Errorf("expected positive verdict, got %+v", verdict)
	}
	if gotReq.Prompt == "" {
		t.Error("request carried no prompt")
	}
	decoded, err := base64.StdEncoding.DecodeString(gotReq.Image)
	if err != nil || string(decoded) != "jpeg-bytes" {
		t.Errorf("request image not base64 of original bytes: %v %q", err, decoded)
	}
}

func TestRESTDetectNoFace(t *testing.T) {
	client := detectServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","message":"No face detected"}`))
	})

	verdict, err := client.Detect(context.Background(), []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if verdict.FaceDetected() {
		t.Error("expected negative verdict")
	}
	if verdict.Message != "No face detected" {
		t.Errorf("expected message passthrough, got %q", verdict.Message)
	}
}

func TestRESTDetectServerError(t *testing.T) {
	client := detectServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model melted", http.StatusInternalServerError)
	})

	if _, err := client.Detect(context.Background(), []byte("jpeg-bytes")); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestRESTDetectMalformedBody(t *testing.T) {
	client := detectServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`this is not json`))
	})

	if _, err := client.Detect(context.Background(), []byte("jpeg-bytes")); err == nil {
		t.Fatal("expected error on malformed body")
	}
}

func TestRESTDetectIncompleteBody(t *testing.T) {
	client := detectServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success"}`))
	})

	if _, err := client.Detect(context.Background(), []byte("jpeg-bytes")); err == nil {
		t.Fatal("expected error on verdict without message")
	}
}

func TestRESTDetectUnconfigured(t *testing.T) {
	client := NewREST("")
	if _, err := client.Detect(context.Background(), []byte("jpeg-bytes")); err == nil {
		t.Fatal("expected error without endpoint")
	}
}
