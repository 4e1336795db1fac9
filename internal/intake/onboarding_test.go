package intake

import (
	"context"
	"strings"
	"testing"
)

func TestOnboardingSendsThreeStepsInOrder(t *testing.T) {
	transport := newFakeTransport()
	o := newTestOnboarder(transport)

	delivered := o.Run(context.Background(), testContact, "Maria")

	sent := transport.sentTexts()
	if len(sent) != 3 {
		t.Fatalf("expected 3 onboarding sends, got %d: %v", len(sent), sent)
	}
	if !strings.Contains(sent[0], "Olá Maria") {
		t.Errorf("greeting does not address contact by name: %q", sent[0])
	}
	if sent[1] != onboardingPresentation || sent[2] != onboardingExpectations {
		t.Errorf("steps out of order: %v", sent)
	}
	if len(delivered) != 3 {
		t.Errorf("delivered = %d texts, want 3", len(delivered))
	}
	for i := range sent {
		if delivered[i] != sent[i] {
			t.Errorf("delivered[%d] = %q, differs from sent %q", i, delivered[i], sent[i])
		}
	}
}

func TestOnboardingGreetingWithoutDisplayName(t *testing.T) {
	transport := newFakeTransport()
	o := newTestOnboarder(transport)

	o.Run(context.Background(), testContact, "")

	sent := transport.sentTexts()
	if len(sent) == 0 {
		t.Fatal("no onboarding messages sent")
	}
	if !strings.HasPrefix(sent[0], "Olá!") {
		t.Errorf("anonymous greeting = %q, want plain greeting", sent[0])
	}
}

func TestOnboardingContinuesPastFailedStep(t *testing.T) {
	transport := newFakeTransport()
	transport.failSends[onboardingPresentation] = true
	o := newTestOnboarder(transport)

	delivered := o.Run(context.Background(), testContact, "Maria")

	sent := transport.sentTexts()
	if len(sent) != 2 {
		t.Fatalf("expected the two surviving steps to be sent, got %v", sent)
	}
	if sent[1] != onboardingExpectations {
		t.Errorf("final step was not attempted after a failure: %v", sent)
	}
	for _, text := range delivered {
		if text == onboardingPresentation {
			t.Errorf("failed step reported as delivered")
		}
	}
	if len(delivered) != 2 {
		t.Errorf("delivered = %d texts, want 2", len(delivered))
	}
}
