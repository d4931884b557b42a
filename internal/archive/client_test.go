package archive

import (
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
)

func TestMirror(t *testing.T) {
	const dataURI = "data:image/jpeg;base64,aGVsbG8="

	var gotPath string
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotForm = map[string]string{}
		for k, vs := range r.MultipartForm.Value {
			gotForm[k] = vs[0]
		}
		fmt.Fprint(w, `{"public_id":"kiosk/abc","secure_url":"https://res.example/kiosk/abc.jpg","format":"jpg","bytes":5}`)
	}))
	defer srv.Close()

	c := New("democloud", "key123", "secret456", "kiosk")
	c.baseURL = srv.URL

	up, err := c.Mirror(context.Background(), dataURI)
	if err != nil {
		t.Fatalf("mirror: %v", err)
	}
	if up.SecureURL != "https://res.example/kiosk/abc.jpg" {
		t.Errorf("unexpected secure url %q", up.SecureURL)
	}
	if up.PublicID != "kiosk/abc" || up.Format != "jpg" || up.Bytes != 5 {
		t.Errorf("unexpected upload %+v", up)
	}

	if gotPath != "/v1_1/democloud/image/upload" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotForm["file"] != dataURI {
		t.Errorf("file field must carry the data URI, got %q", gotForm["file"])
	}
	if gotForm["api_key"] != "key123" {
		t.Errorf("unexpected api_key %q", gotForm["api_key"])
	}
	if gotForm["folder"] != "kiosk" {
		t.Errorf("unexpected folder %q", gotForm["folder"])
	}

	// recompute the signature the way Cloudinary verifies it
	pairs := []string{
		"folder=" + gotForm["folder"],
		"timestamp=" + gotForm["timestamp"],
	}
	sort.Strings(pairs)
	h := sha1.New()
	h.Write([]byte(strings.Join(pairs, "&") + "secret456"))
	want := fmt.Sprintf("%x", h.Sum(nil))
	if gotForm["signature"] != want {
		t.Errorf("signature mismatch: got %q want %q", gotForm["signature"], want)
	}
}

func TestMirrorUploadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Invalid signature"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New("democloud", "key123", "wrong", "")
	c.baseURL = srv.URL

	if _, err := c.Mirror(context.Background(), "data:image/jpeg;base64,aGVsbG8="); err == nil {
		t.Fatal("expected upload error")
	} else if !strings.Contains(err.Error(), "401") {
		t.Errorf("expected status in error, got %v", err)
	}
}
