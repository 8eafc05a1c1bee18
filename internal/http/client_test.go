package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/thumb.jpg", func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != DefaultUserAgent {
			http.Error(w, "bad agent "+ua, http.StatusBadRequest)
			return
		}
		w.Write([]byte("jpegbytes"))
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_DownloadFile(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient().WithHTTPClient(srv.Client())
	dest := filepath.Join(t.TempDir(), "thumb.jpg")

	var last int64
	err := client.DownloadFile(context.Background(), srv.URL+"/thumb.jpg", dest, func(written, total int64) {
		last = written
	})
	if err != nil {
		t.Fatalf("DownloadFile: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "jpegbytes" {
		t.Errorf("file = %q, %v", data, err)
	}
	if last != int64(len("jpegbytes")) {
		t.Errorf("last progress = %d", last)
	}
	if _, err := os.Stat(dest + ".part"); !os.IsNotExist(err) {
		t.Error(".part file left behind")
	}
}

func TestClient_DownloadFileFailureLeavesNothing(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient().WithHTTPClient(srv.Client())
	dest := filepath.Join(t.TempDir(), "thumb.jpg")

	err := client.DownloadFile(context.Background(), srv.URL+"/gone", dest, nil)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d", statusErr.StatusCode)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("destination created on failure")
	}
}
