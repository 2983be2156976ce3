package intent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestGeminiGenerate(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"shapeType\":"},{"text":"\"circle\"}"}]}}]}`))
	}))
	defer srv.Close()

	c := NewGeminiClient("secret", "test-model", WithEndpoint(srv.URL+"/models/"))
	out, err := c.Generate(context.Background(), "draw a circle")
	require.NoError(t, err)
	assert.Equal(t, `{"shapeType":"circle"}`, out)

	require.Len(t, got.Contents, 1)
	require.Len(t, got.Contents[0].Parts, 1)
	assert.Equal(t, "draw a circle", got.Contents[0].Parts[0].Text)
	assert.Equal(t, 0.3, got.GenerationConfig.Temperature)
	assert.Equal(t, 40, got.GenerationConfig.TopK)
	assert.Equal(t, 0.8, got.GenerationConfig.TopP)
	assert.Equal(t, 1024, got.GenerationConfig.MaxOutputTokens)
}

func TestGeminiErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	}))
	defer srv.Close()

	_, err := NewGeminiClient("bad", "", WithEndpoint(srv.URL)).Generate(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
	assert.Contains(t, err.Error(), "403")
}

func TestGeminiNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	_, err := NewGeminiClient("k", "", WithEndpoint(srv.URL)).Generate(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGeminiFeedsParser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Here: {\"shapeType\":\"polygon\",\"dimensions\":{\"width\":90,\"height\":90}}"}]}}]}`))
	}))
	defer srv.Close()

	p := NewParser(NewGeminiClient("k", "", WithEndpoint(srv.URL)))
	res, err := p.Parse(context.Background(), "a hexagon", "english")
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, res.Source)
	assert.Equal(t, "polygon", string(res.Intent.ShapeType))
	assert.Equal(t, 90.0, res.Intent.Width)
}

func TestGeminiTranscribe(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  C-A-T\n"}]}}]}`))
	}))
	defer srv.Close()

	c := NewGeminiClient("k", "", WithEndpoint(srv.URL))
	text, err := c.Transcribe(context.Background(), []byte("RIFF"), language.MustParse("kn-IN"))
	require.NoError(t, err)
	assert.Equal(t, "C-A-T", text)

	require.Len(t, got.Contents[0].Parts, 2)
	assert.Contains(t, got.Contents[0].Parts[0].Text, "kn-IN")
	blob := got.Contents[0].Parts[1].InlineData
	require.NotNil(t, blob)
	assert.Equal(t, "audio/wav", blob.MimeType)
	assert.Equal(t, "UklGRg==", blob.Data)
}
