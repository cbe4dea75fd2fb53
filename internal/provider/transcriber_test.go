package provider

import (
	"context"
	"strings"
	"testing"
	"time"
)

type fakeTranscriptionOps struct {
	calls    int
	lastMIME string
	text     string
	err      error
}

func (f *fakeTranscriptionOps) Transcribe(_ context.Context, _ string, _ []byte, _, mimeType string) (string, error) {
	f.calls++
	f.lastMIME = mimeType
	return f.text, f.err
}

func TestNormalizeMIME(t *testing.T) {
	cases := map[string]string{
		"audio/webm;codecs=opus": "audio/webm",
		"audio/ogg; codecs=opus": "audio/ogg",
		"audio/wav":              "audio/wav",
		"":                       "audio/webm",
		"garbage":                "audio/webm",
	}
	for in, want := range cases {
		if got := NormalizeMIME(in); got != want {
			t.Errorf("NormalizeMIME(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTranscriber_StripsCodecBeforeDispatch(t *testing.T) {
	ops := &fakeTranscriptionOps{text: "hello"}
	tr := NewTranscriber(ops, newExec(t, "k0"), time.Second)
	out := tr.Transcribe(context.Background(), []byte{1, 2}, "hi", "audio/webm;codecs=opus")
	if out != "hello" {
		t.Fatalf("expected transcript, got %q", out)
	}
	if ops.lastMIME != "audio/webm" {
		t.Fatalf("expected normalized mime, got %q", ops.lastMIME)
	}
}

func TestTranscriber_PlaceholderOnNetworkFailure(t *testing.T) {
	ops := &fakeTranscriptionOps{err: errTransient}
	tr := NewTranscriber(ops, newExec(t, "k0"), time.Second)
	out := tr.Transcribe(context.Background(), []byte{1}, "hi", "audio/webm")
	if out == "" {
		t.Fatal("placeholder must be non-empty")
	}
	if !strings.Contains(out, "Hindi") {
		t.Fatalf("placeholder must embed the language hint, got %q", out)
	}
}

func TestTranscriber_PlaceholderOnExhaustion(t *testing.T) {
	ops := &fakeTranscriptionOps{err: errQuota}
	tr := NewTranscriber(ops, newExec(t, "k0", "k1"), time.Second)
	out := tr.Transcribe(context.Background(), []byte{1}, "ta", "audio/ogg")
	if !strings.Contains(out, "Tamil") {
		t.Fatalf("placeholder must embed the language hint, got %q", out)
	}
	if ops.calls != 2 {
		t.Fatalf("expected one attempt per key, got %d", ops.calls)
	}
}

func TestTranscriber_UnknownHintUsesCode(t *testing.T) {
	ops := &fakeTranscriptionOps{err: errPermanent}
	tr := NewTranscriber(ops, newExec(t, "k0"), time.Second)
	out := tr.Transcribe(context.Background(), []byte{1}, "zz", "audio/webm")
	if !strings.Contains(out, "zz") {
		t.Fatalf("placeholder must fall back to the raw code, got %q", out)
	}
}
