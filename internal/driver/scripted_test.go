package driver

import (
	"context"
	"testing"
	"time"

	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/errors"
)

func TestScriptedDriver_DefaultSuccess(t *testing.T) {
	d := NewScriptedDriver()

	payload, err := d.Execute(context.Background(), Submission{Index: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.ResultURL != "scripted://result/0" {
		t.Errorf("unexpected result URL %q", payload.ResultURL)
	}
	if d.Calls(0) != 1 {
		t.Errorf("expected 1 call, got %d", d.Calls(0))
	}
}

func TestScriptedDriver_ScriptSequence(t *testing.T) {
	d := NewScriptedDriver()
	d.Script(3,
		Fail(errors.FailureTimeout),
		Fail(errors.FailureTimeout),
		Succeed("scripted://ok"),
	)

	ctx := context.Background()
	sub := Submission{Index: 3}

	for i := 0; i < 2; i++ {
		_, err := d.Execute(ctx, sub)
		if errors.KindOf(err) != errors.FailureTimeout {
			t.Fatalf("call %d: expected timeout, got %v", i, err)
		}
	}

	payload, err := d.Execute(ctx, sub)
	if err != nil {
		t.Fatalf("third call: unexpected error %v", err)
	}
	if payload.ResultURL != "scripted://ok" {
		t.Errorf("unexpected result URL %q", payload.ResultURL)
	}
	if d.Calls(3) != 3 {
		t.Errorf("expected 3 calls, got %d", d.Calls(3))
	}
}

func TestScriptedDriver_RepeatsLastOutcome(t *testing.T) {
	d := NewScriptedDriver()
	d.Script(0, Fail(errors.FailureTransient))

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, err := d.Execute(ctx, Submission{Index: 0})
		if errors.KindOf(err) != errors.FailureTransient {
			t.Fatalf("call %d: expected transient failure, got %v", i, err)
		}
	}
}

func TestScriptedDriver_IndependentIndexes(t *testing.T) {
	d := NewScriptedDriver()
	d.Script(0, Fail(errors.FailureRejected))

	if _, err := d.Execute(context.Background(), Submission{Index: 1}); err != nil {
		t.Errorf("index 1 should use the default success, got %v", err)
	}
	_, err := d.Execute(context.Background(), Submission{Index: 0})
	if errors.KindOf(err) != errors.FailureRejected {
		t.Errorf("index 0 should follow its script, got %v", err)
	}
}

func TestScriptedDriver_ContextCancellation(t *testing.T) {
	d := NewScriptedDriver()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Execute(ctx, Submission{Index: 0})
	if errors.KindOf(err) != errors.FailureTimeout {
		t.Errorf("expected timeout classification for cancelled context, got %v", err)
	}
}

func TestScriptedDriver_DelayRespectsContext(t *testing.T) {
	d := NewScriptedDriver()
	d.Delay = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := d.Execute(ctx, Submission{Index: 0})
	if errors.KindOf(err) != errors.FailureTimeout {
		t.Fatalf("expected timeout, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("Execute should return as soon as the context expires")
	}
}

func TestSharedFactory(t *testing.T) {
	d := NewScriptedDriver()
	factory := SharedFactory(d)

	for slot := 0; slot < 3; slot++ {
		got, err := factory(context.Background(), slot)
		if err != nil {
			t.Fatalf("slot %d: unexpected error %v", slot, err)
		}
		if got != SessionDriver(d) {
			t.Errorf("slot %d: expected the shared driver", slot)
		}
	}
}
