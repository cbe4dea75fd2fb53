package provider

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeTranslationOps struct {
	calls      int
	translated string
	detected   string
	err        error
}

func (f *fakeTranslationOps) Translate(_ context.Context, _, text, _, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.translated != "" {
		return f.translated, nil
	}
	return text, nil
}

func (f *fakeTranslationOps) DetectLanguage(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.detected, f.err
}

func TestTranslator_SameLanguageSkipsProvider(t *testing.T) {
	ops := &fakeTranslationOps{}
	tr := NewTranslator(ops, newExec(t, "k0"), "en", time.Second)
	out := tr.Translate(context.Background(), "Hello", "en", "en")
	if out != "Hello" {
		t.Fatalf("expected passthrough, got %q", out)
	}
	if ops.calls != 0 {
		t.Fatalf("same-language translation must not call the provider, got %d calls", ops.calls)
	}
}

func TestTranslator_TrimsResult(t *testing.T) {
	ops := &fakeTranslationOps{translated: "  नमस्ते \n"}
	tr := NewTranslator(ops, newExec(t, "k0"), "en", time.Second)
	out := tr.Translate(context.Background(), "Hello", "en", "hi")
	if out != "नमस्ते" {
		t.Fatalf("expected trimmed translation, got %q", out)
	}
}

func TestTranslator_DegradesToOriginalOnExhaustion(t *testing.T) {
	ops := &fakeTranslationOps{err: errQuota}
	tr := NewTranslator(ops, newExec(t, "k0", "k1", "k2"), "en", time.Second)
	out := tr.Translate(context.Background(), "Hello", "en", "hi")
	if out != "Hello" {
		t.Fatalf("expected original text back, got %q", out)
	}
	if ops.calls != 3 {
		t.Fatalf("expected one attempt per key, got %d", ops.calls)
	}
}

func TestTranslator_DegradesToOriginalOnPermanentError(t *testing.T) {
	ops := &fakeTranslationOps{err: errors.New("model rejected input")}
	tr := NewTranslator(ops, newExec(t, "k0"), "en", time.Second)
	if out := tr.Translate(context.Background(), "Hello", "en", "hi"); out != "Hello" {
		t.Fatalf("expected original text back, got %q", out)
	}
}

func TestTranslator_DetectConstrainedToSupportedSet(t *testing.T) {
	ops := &fakeTranslationOps{detected: "xx"}
	tr := NewTranslator(ops, newExec(t, "k0"), "hi", time.Second)
	if got := tr.DetectLanguage(context.Background(), "???"); got != "hi" {
		t.Fatalf("unknown code must fall back, got %q", got)
	}

	ops = &fakeTranslationOps{detected: " TA \n"}
	tr = NewTranslator(ops, newExec(t, "k0"), "hi", time.Second)
	if got := tr.DetectLanguage(context.Background(), "வணக்கம்"); got != "ta" {
		t.Fatalf("expected normalized ta, got %q", got)
	}
}

func TestTranslator_DetectFallbackOnError(t *testing.T) {
	ops := &fakeTranslationOps{err: errPermanent}
	tr := NewTranslator(ops, newExec(t, "k0"), "bn", time.Second)
	if got := tr.DetectLanguage(context.Background(), "hello"); got != "bn" {
		t.Fatalf("expected configured fallback bn, got %q", got)
	}
}
