package iiif

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDimensionsFromImageServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/scan.tif/info.json" {
			fmt.Fprint(w, `{"width": 2400, "height": 3200}`)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewImageClient(server.URL, server.Client())
	width, height := client.Dimensions(context.Background(), "scan.tif")
	if width != 2400 || height != 3200 {
		t.Fatalf("dimensions = %dx%d", width, height)
	}
}

func TestDimensionsFallBackToDefault(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := NewImageClient(server.URL, server.Client())
	width, height := client.Dimensions(context.Background(), "missing.tif")
	if width != 1000 || height != 1000 {
		t.Fatalf("fallback dimensions = %dx%d", width, height)
	}

	unconfigured := NewImageClient("", nil)
	width, height = unconfigured.Dimensions(context.Background(), "any")
	if width != 1000 || height != 1000 {
		t.Fatalf("unconfigured dimensions = %dx%d", width, height)
	}
}

func TestPageCountProbesSequentially(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Meta pages [1] through [3] of book.tif resolve, nothing else does.
		for page := 1; page <= 3; page++ {
			if r.URL.Path == fmt.Sprintf("/book.tif[%d]/info.json", page) {
				fmt.Fprint(w, `{"width": 800, "height": 1200}`)
				return
			}
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewImageClient(server.URL, server.Client())
	if pages := client.PageCount(context.Background(), "book.tif"); pages != 4 {
		t.Fatalf("pages = %d", pages)
	}
}

func TestPageCountIsOneMoreThanResolvedMetaPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/spread.tif[1]/info.json" {
			fmt.Fprint(w, `{"width": 800, "height": 1200}`)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewImageClient(server.URL, server.Client())
	if pages := client.PageCount(context.Background(), "spread.tif"); pages != 2 {
		t.Fatalf("pages = %d", pages)
	}
}

func TestPageCountDefaultsToOne(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := NewImageClient(server.URL, server.Client())
	if pages := client.PageCount(context.Background(), "single.jpg"); pages != 1 {
		t.Fatalf("pages = %d", pages)
	}
}

func TestThumbnailHeight(t *testing.T) {
	cases := []struct {
		width, height, want int
	}{
		{2000, 3000, 300},
		{400, 300, 150},
		{1000, 1000, 200},
		{3, 2, 133},
		{0, 500, 200},
		{-10, 500, 200},
	}
	for _, tc := range cases {
		if got := ThumbnailHeight(tc.width, tc.height); got != tc.want {
			t.Errorf("ThumbnailHeight(%d, %d) = %d, want %d", tc.width, tc.height, got, tc.want)
		}
	}
}

func TestPageIdentifier(t *testing.T) {
	if got := PageIdentifier("book.tif", 4); got != "book.tif[4]" {
		t.Fatalf("PageIdentifier = %q", got)
	}
}
