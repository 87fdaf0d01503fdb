package translate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const frenchResponse = `[[["Hello ","Bonjour ",null,null,10],["world","le monde",null,null,10]],null,"fr",null,null,null,1,[],[["fr"],null,[1],["fr"]]]`

func TestTranslate(t *testing.T) {
	var got http.Header
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header
		q := r.URL.Query()
		query = map[string]string{"client": q.Get("client"), "sl": q.Get("sl"), "tl": q.Get("tl"), "q": q.Get("q")}
		_, _ = w.Write([]byte(frenchResponse))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, srv.Client())
	tr, err := c.Translate(context.Background(), "Bonjour le monde", "", "en")
	if err != nil {
		t.Fatal(err)
	}

	if tr.Text != "Hello world" {
		t.Errorf("Text = %q", tr.Text)
	}
	if tr.Original != "Bonjour le monde" {
		t.Errorf("Original = %q", tr.Original)
	}
	if tr.Source != "fr" || tr.Target != "en" {
		t.Errorf("Source/Target = %q/%q", tr.Source, tr.Target)
	}
	want := map[string]string{"client": "gtx", "sl": AutoDetect, "tl": "en", "q": "Bonjour le monde"}
	for k, v := range want {
		if query[k] != v {
			t.Errorf("query %s = %q, want %q", k, query[k], v)
		}
	}
	if got.Get("User-Agent") != userAgent {
		t.Errorf("User-Agent = %q", got.Get("User-Agent"))
	}
}

func TestTranslateStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0, srv.Client()).Translate(context.Background(), "hola", "es", "en")
	var serr *StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if serr.StatusCode() != http.StatusTooManyRequests {
		t.Errorf("StatusCode() = %d", serr.StatusCode())
	}
}

func TestTranslateEmptyText(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", 0, nil)
	if _, err := c.Translate(context.Background(), "  \n", "", "en"); !errors.Is(err, ErrEmptyText) {
		t.Errorf("err = %v, want ErrEmptyText", err)
	}
}

func TestTranslateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewClient("http://127.0.0.1:0", 1, nil)
	if _, err := c.Translate(ctx, "hola", "", "en"); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    Translation
		wantErr bool
	}{
		{
			name: "detected language",
			body: frenchResponse,
			want: Translation{Original: "Bonjour le monde", Text: "Hello world", Source: "fr"},
		},
		{
			name: "null language",
			body: `[[["Hi","Hi"]],null,null]`,
			want: Translation{Original: "Hi", Text: "Hi"},
		},
		{name: "not an array", body: `{"error":"nope"}`, wantErr: true},
		{name: "empty array", body: `[]`, wantErr: true},
		{name: "bad sentences", body: `["oops"]`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseResponse([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseResponse() = %+v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if *got != tt.want {
				t.Errorf("parseResponse() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}
