package genimg

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testProduct() PreparedImage {
	return PreparedImage{DataURL: "data:image/png;base64,AAAA", OriginalWidth: 800, OriginalHeight: 600}
}

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(Options{
		APIKey:      "test-key",
		BaseURL:     srv.URL,
		Model:       "test-model",
		HTTPClient:  srv.Client(),
		Logger:      zerolog.Nop(),
		MaxAttempts: 3,
		BackoffBase: time.Millisecond,
	})
	return c, srv
}

func imageResponse(data string) string {
	return `{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"` + data + `"}}]}}]}`
}

func TestGenerateBackgroundRetriesTransient(t *testing.T) {
	var calls int
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"code":500,"message":"internal"}}`))
			return
		}
		w.Write([]byte(imageResponse("QUJD")))
	})

	url, err := c.GenerateBackground(context.Background(), BackgroundRequest{Product: testProduct(), Kind: BackgroundColor, Color: "#ff0000"})
	if err != nil {
		t.Fatalf("GenerateBackground: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	if url != "data:image/png;base64,QUJD" {
		t.Fatalf("url = %q", url)
	}
}

func TestGenerateBackgroundGivesUpAfterBudget(t *testing.T) {
	var calls int
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	})

	_, err := c.GenerateBackground(context.Background(), BackgroundRequest{Product: testProduct()})
	if err == nil {
		t.Fatalf("expected an error")
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	genErr, ok := AsGenerationError(err)
	if !ok || genErr.Reason != ReasonTransient {
		t.Fatalf("err = %v, want transient GenerationError", err)
	}
}

func TestGenerateBackgroundDoesNotRetryPolicyErrors(t *testing.T) {
	var calls int
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"invalid argument"}}`))
	})

	_, err := c.GenerateBackground(context.Background(), BackgroundRequest{Product: testProduct()})
	genErr, ok := AsGenerationError(err)
	if !ok || genErr.Reason != ReasonPolicy {
		t.Fatalf("err = %v, want policy GenerationError", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, policy errors must not be retried", calls)
	}
}

func TestGenerateBackgroundClassifiesRegionError(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"User location is not supported for the API use."}}`))
	})

	_, err := c.GenerateBackground(context.Background(), BackgroundRequest{Product: testProduct()})
	genErr, ok := AsGenerationError(err)
	if !ok || genErr.Reason != ReasonRegion {
		t.Fatalf("err = %v, want region GenerationError", err)
	}
}

func TestGenerateBackgroundSafetyBlock(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	})

	_, err := c.GenerateBackground(context.Background(), BackgroundRequest{Product: testProduct()})
	genErr, ok := AsGenerationError(err)
	if !ok || genErr.Reason != ReasonSafety {
		t.Fatalf("err = %v, want safety GenerationError", err)
	}
}

func TestGenerateBackgroundSafetyFinishReason(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"finishReason":"SAFETY","content":{"parts":[]}}]}`))
	})

	_, err := c.GenerateBackground(context.Background(), BackgroundRequest{Product: testProduct()})
	genErr, ok := AsGenerationError(err)
	if !ok || genErr.Reason != ReasonSafety {
		t.Fatalf("err = %v, want safety GenerationError", err)
	}
}

func TestGenerateBackgroundTextOnlyAnswer(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"I cannot generate that image."}]}}]}`))
	})

	_, err := c.GenerateBackground(context.Background(), BackgroundRequest{Product: testProduct()})
	genErr, ok := AsGenerationError(err)
	if !ok || genErr.Reason != ReasonMalformed {
		t.Fatalf("err = %v, want malformed GenerationError", err)
	}
	if !strings.Contains(genErr.Message, "cannot generate") {
		t.Fatalf("message = %q, should surface the model's text", genErr.Message)
	}
}

func TestGenerateModelShotSendsBothSources(t *testing.T) {
	var body string
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		body = string(buf)
		w.Write([]byte(imageResponse("QUJD")))
	})

	model := testProduct()
	_, err := c.GenerateModelShot(context.Background(), ModelShotRequest{
		Prompt:  "by the window",
		Product: testProduct(),
		Model:   &model,
	})
	if err != nil {
		t.Fatalf("GenerateModelShot: %v", err)
	}
	if got := strings.Count(body, `"inlineData"`); got != 2 {
		t.Fatalf("inline parts = %d, want 2", got)
	}
	if !strings.Contains(body, "by the window") {
		t.Fatalf("prompt missing from request body")
	}
}

func TestSuggestPromptReturnsText(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  on a rustic wooden shelf  "}]}}]}`))
	})

	text, err := c.SuggestPrompt(context.Background(), SuggestRequest{Product: testProduct(), Mode: "background"})
	if err != nil {
		t.Fatalf("SuggestPrompt: %v", err)
	}
	if text != "on a rustic wooden shelf" {
		t.Fatalf("text = %q", text)
	}
}

func TestSuggestPromptEmptyAnswer(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := c.SuggestPrompt(context.Background(), SuggestRequest{Product: testProduct(), Mode: "background"})
	genErr, ok := AsGenerationError(err)
	if !ok || genErr.Reason != ReasonMalformed {
		t.Fatalf("err = %v, want malformed GenerationError", err)
	}
}

func TestSplitDataURL(t *testing.T) {
	mime, data, err := splitDataURL("data:image/jpeg;base64,QUJD")
	if err != nil {
		t.Fatalf("splitDataURL: %v", err)
	}
	if mime != "image/jpeg" || data != "QUJD" {
		t.Fatalf("mime = %q, data = %q", mime, data)
	}
	for _, bad := range []string{"https://example.com/a.png", "data:image/png,plain", "data:image/png;base64,!!"} {
		if _, _, err := splitDataURL(bad); err == nil {
			t.Fatalf("splitDataURL(%q) should fail", bad)
		}
	}
}
