package res

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadLocalFiles(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"doc.html":  "<p>hi</p>",
		"doc.json":  `{"type":"doc"}`,
		"style.css": "p { font-size: 12px; }",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	l := NewLoader(filepath.Join(dir, "doc.html"))
	tests := []struct {
		path string
		typ  ResourceType
	}{
		{path: "doc.html", typ: ResourceTypeHTML},
		{path: "doc.json", typ: ResourceTypeJSON},
		{path: "style.css", typ: ResourceTypeCSS},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r, err := l.Load(context.Background(), tt.path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if r.Type != tt.typ || r.GetString() != files[tt.path] {
				t.Fatalf("resource: got %v %q", r.Type, r.GetString())
			}
		})
	}

	if _, err := l.LoadDocument(context.Background(), "style.css"); !errors.Is(err, ErrUnexpectedType) {
		t.Fatalf("stylesheet as document: got %v, want %v", err, ErrUnexpectedType)
	}
	if _, err := l.LoadCSS(context.Background(), "doc.html"); !errors.Is(err, ErrUnexpectedType) {
		t.Fatalf("document as stylesheet: got %v, want %v", err, ErrUnexpectedType)
	}
}

func TestLoadUsesCacheAndSearchPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.css")
	if err := os.WriteFile(path, []byte("p {}"), 0o600); err != nil {
		t.Fatal(err)
	}

	l := NewLoader("")
	l.AddSearchPath(dir)
	r, err := l.LoadCSS(context.Background(), "missing/a.css")
	if err != nil {
		t.Fatalf("search path: %v", err)
	}
	if r.URL != path {
		t.Fatalf("url: got %q, want %q", r.URL, path)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if _, err := l.LoadCSS(context.Background(), "missing/a.css"); err != nil {
		t.Fatalf("cached resource should not be re-read: %v", err)
	}
	if _, err := l.Load(context.Background(), "nowhere.css"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestDataURLs(t *testing.T) {
	tests := []struct {
		url  string
		typ  ResourceType
		data string
	}{
		{url: "data:text/html,%3Cp%3Ehi%3C%2Fp%3E", typ: ResourceTypeHTML, data: "<p>hi</p>"},
		{url: "data:text/css;base64,cCB7fQ==", typ: ResourceTypeCSS, data: "p {}"},
		{url: "data:,plain", typ: ResourceTypeOther, data: "plain"},
	}
	l := NewLoader("")
	for _, tt := range tests {
		r, err := l.Load(context.Background(), tt.url)
		if err != nil {
			t.Fatalf("%s: %v", tt.url, err)
		}
		if r.Type != tt.typ || string(r.Data) != tt.data {
			t.Fatalf("%s: got %v %q, want %v %q", tt.url, r.Type, r.Data, tt.typ, tt.data)
		}
	}
	if _, err := l.Load(context.Background(), "data:text/css"); err == nil {
		t.Fatal("expected an error for a data URL without payload")
	}
}

func TestLoadRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/doc":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<p>remote</p>"))
		case "/theme.css":
			_, _ = w.Write([]byte("p {}"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := NewLoader(srv.URL + "/base/")
	l.SetClient(srv.Client())

	r, err := l.LoadDocument(context.Background(), srv.URL+"/doc")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if r.MimeType != "text/html" || r.GetString() != "<p>remote</p>" {
		t.Fatalf("resource: got %q %q", r.MimeType, r.GetString())
	}
	if _, err := l.LoadCSS(context.Background(), "/theme.css"); err != nil {
		t.Fatalf("relative css: %v", err)
	}
	if _, err := l.Load(context.Background(), srv.URL+"/missing"); err == nil {
		t.Fatal("expected an HTTP error")
	}
}
