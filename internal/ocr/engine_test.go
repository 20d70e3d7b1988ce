package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"

	apperrors "github.com/Nimavk1313/Personal-Assistant/internal/errors"
	"github.com/Nimavk1313/Personal-Assistant/internal/screen"
)

func found(string) (string, error)    { return "/usr/bin/tesseract", nil }
func notFound(string) (string, error) { return "", errors.New("not found") }

func frameWithPNG(t *testing.T, w, h int) *screen.Frame {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return &screen.Frame{PNG: buf.Bytes(), Width: w, Height: h, CapturedAt: time.Now()}
}

func TestUnavailableEngine(t *testing.T) {
	e := New(Options{LookPath: notFound})
	if e.Available() {
		t.Error("engine should report unavailable")
	}

	_, err := e.Extract(context.Background(), frameWithPNG(t, 4, 4))
	if !apperrors.IsCode(err, apperrors.CodeExtractorUnavailable) {
		t.Errorf("expected ExtractorUnavailable, got %v", err)
	}
}

func TestExtract(t *testing.T) {
	var gotArgs []string
	e := New(Options{
		Languages: []string{"eng", "deu"},
		LookPath:  found,
		Run: func(ctx context.Context, binary string, args []string, stdin []byte) (string, error) {
			gotArgs = args
			if len(stdin) == 0 {
				t.Error("stdin should carry the frame PNG")
			}
			return "  Hello World \n", nil
		},
	})

	text, err := e.Extract(context.Background(), frameWithPNG(t, 4, 4))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "Hello World" {
		t.Errorf("text = %q, want trimmed output", text)
	}
	want := []string{"stdin", "stdout", "-l", "eng+deu"}
	for i, a := range want {
		if gotArgs[i] != a {
			t.Errorf("args = %v, want %v", gotArgs, want)
			break
		}
	}
}

func TestExtractTimeout(t *testing.T) {
	e := New(Options{
		LookPath: found,
		Run: func(ctx context.Context, binary string, args []string, stdin []byte) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := e.Extract(ctx, frameWithPNG(t, 4, 4))
	if !apperrors.IsCode(err, apperrors.CodeExtractorTimeout) {
		t.Errorf("expected ExtractorTimeout, got %v", err)
	}
}

func TestExtractFailure(t *testing.T) {
	e := New(Options{
		LookPath: found,
		Run: func(ctx context.Context, binary string, args []string, stdin []byte) (string, error) {
			return "", errors.New("bad image")
		},
	})

	_, err := e.Extract(context.Background(), frameWithPNG(t, 4, 4))
	if !apperrors.IsCode(err, apperrors.CodeExtractorUnavailable) {
		t.Errorf("expected ExtractorUnavailable, got %v", err)
	}
}

func TestEmptyFrame(t *testing.T) {
	e := New(Options{LookPath: found, Run: func(context.Context, string, []string, []byte) (string, error) {
		t.Fatal("run should not be called for empty frame")
		return "", nil
	}})

	_, err := e.Extract(context.Background(), nil)
	if !apperrors.IsCode(err, apperrors.CodeInvalidArgument) {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
}

func TestPreprocessDownscales(t *testing.T) {
	var gotInput []byte
	e := New(Options{
		MaxImageWidth: 32,
		LookPath:      found,
		Run: func(ctx context.Context, binary string, args []string, stdin []byte) (string, error) {
			gotInput = stdin
			return "", nil
		},
	})

	if _, err := e.Extract(context.Background(), frameWithPNG(t, 128, 64)); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(gotInput))
	if err != nil {
		t.Fatalf("decode preprocessed image: %v", err)
	}
	if cfg.Width != 32 {
		t.Errorf("preprocessed width = %d, want 32", cfg.Width)
	}

	// Small frames pass through untouched.
	small := frameWithPNG(t, 16, 16)
	if _, err := e.Extract(context.Background(), small); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !bytes.Equal(gotInput, small.PNG) {
		t.Error("small frame should not be re-encoded")
	}
}
