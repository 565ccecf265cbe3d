package contact

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPayload() *Payload {
	return &Payload{
		Fixed:     validFixed(),
		Timestamp: time.Date(2024, 5, 1, 10, 30, 15, 120_000_000, time.UTC),
		Parts: []Part{
			{Key: "telegram", Value: "@artem_dev"},
			{Key: "cv", File: &Attachment{Filename: `my "cv".pdf`, ContentType: "application/pdf", Data: []byte("%PDF-1.7")}},
		},
	}
}

func TestWebhook_SendsMultipart(t *testing.T) {
	type received struct {
		method      string
		values      map[string][]string
		cvName      string
		cvType      string
		cvBody      string
		contentType string
	}
	got := make(chan received, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("cv")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		body, _ := io.ReadAll(file)

		got <- received{
			method:      r.Method,
			values:      r.MultipartForm.Value,
			cvName:      header.Filename,
			cvType:      header.Header.Get("Content-Type"),
			cvBody:      string(body),
			contentType: r.Header.Get("Content-Type"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, 5*time.Second)
	defer wh.Close()

	require.NoError(t, wh.Send(t.Context(), testPayload()))

	r := <-got
	assert.Equal(t, http.MethodPost, r.method)
	assert.Contains(t, r.contentType, "multipart/form-data; boundary=")
	assert.Equal(t, map[string][]string{
		"name":      {"Olena"},
		"email":     {"olena@example.com"},
		"message":   {"Hello, I would like to talk about a project."},
		"timestamp": {"2024-05-01T10:30:15.120Z"},
		"telegram":  {"@artem_dev"},
	}, r.values)
	assert.Equal(t, `my "cv".pdf`, r.cvName)
	assert.Equal(t, "application/pdf", r.cvType)
	assert.Equal(t, "%PDF-1.7", r.cvBody)
}

func TestWebhook_NonSuccessStatus(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", code)
		}))

		wh := NewWebhook(srv.URL, 5*time.Second)
		err := wh.Send(t.Context(), testPayload())
		wh.Close()
		srv.Close()

		var terr *TransportError
		require.ErrorAs(t, err, &terr, "status %d", code)
		assert.Equal(t, code, terr.StatusCode)
	}
}

func TestWebhook_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	wh := NewWebhook(url, time.Second)
	defer wh.Close()

	err := wh.Send(t.Context(), testPayload())

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Zero(t, terr.StatusCode)
	assert.Error(t, terr.Err)
}

func TestWebhook_NoEndpoint(t *testing.T) {
	wh := NewWebhook("", time.Second)
	defer wh.Close()

	err := wh.Send(t.Context(), testPayload())
	assert.ErrorIs(t, err, ErrNoEndpoint)
}
