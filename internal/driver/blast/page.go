package blast

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/errors"
	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/primer"
)

// form is the page object for the Primer-BLAST submission form. Every
// method classifies its failures: a form element that cannot be found is a
// protocol error, interaction faults on a found element are transient.
type form struct {
	page *rod.Page
}

// field replaces the content of the input with the given ID.
func (f *form) field(ctx context.Context, id, value string) error {
	el, err := f.page.Context(ctx).Element("#" + id)
	if err != nil {
		return errors.NewDriverError(errors.FailureProtocol, "locate #"+id,
			fmt.Errorf("form element missing, page layout may have changed: %w", err))
	}
	if err := el.SelectAllText(); err != nil {
		return errors.NewDriverError(errors.FailureTransient, "clear #"+id, err)
	}
	if err := el.Input(value); err != nil {
		return errors.NewDriverError(errors.FailureTransient, "fill #"+id, err)
	}
	return nil
}

func (f *form) intField(ctx context.Context, id string, value int) error {
	return f.field(ctx, id, strconv.Itoa(value))
}

func (f *form) floatField(ctx context.Context, id string, value float64) error {
	return f.field(ctx, id, strconv.FormatFloat(value, 'f', -1, 64))
}

// clickID clicks the element with the given ID.
func (f *form) clickID(ctx context.Context, id string) error {
	el, err := f.page.Context(ctx).Element("#" + id)
	if err != nil {
		return errors.NewDriverError(errors.FailureProtocol, "locate #"+id,
			fmt.Errorf("form element missing, page layout may have changed: %w", err))
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return errors.NewDriverError(errors.FailureTransient, "click #"+id, err)
	}
	return nil
}

// clickLabel clicks a label located by XPath. Label options are cosmetic
// toggles, so a missing label is transient rather than fatal.
func (f *form) clickLabel(ctx context.Context, xpath string) error {
	el, err := f.page.Context(ctx).ElementX(xpath)
	if err != nil {
		return errors.NewDriverError(errors.FailureTransient, "locate "+xpath, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return errors.NewDriverError(errors.FailureTransient, "click "+xpath, err)
	}
	return nil
}

// selectDatabase picks the specificity-checking database by option value.
func (f *form) selectDatabase(ctx context.Context) error {
	js := fmt.Sprintf(`() => {
		const el = document.getElementById(%q);
		if (!el) return false;
		el.value = %q;
		el.dispatchEvent(new Event('change', { bubbles: true }));
		return true;
	}`, idDatabase, databaseValue)

	res, err := f.page.Context(ctx).Eval(js)
	if err != nil {
		return errors.NewDriverError(errors.FailureTransient, "select database", err)
	}
	if !res.Value.Bool() {
		return errors.NewDriverError(errors.FailureProtocol, "select database",
			fmt.Errorf("database select #%s missing, page layout may have changed", idDatabase))
	}
	return nil
}

// applyParams writes every user-tunable parameter into the form. Runs
// before each submission so parameter changes between batches take effect.
func (f *form) applyParams(ctx context.Context, p primer.Params) error {
	steps := []func() error{
		func() error { return f.intField(ctx, idPCRMin, p.PCRMin) },
		func() error { return f.intField(ctx, idPCRMax, p.PCRMax) },
		func() error { return f.floatField(ctx, idTmMin, p.TmMin) },
		func() error { return f.floatField(ctx, idTmOpt, p.TmOpt) },
		func() error { return f.floatField(ctx, idTmMax, p.TmMax) },
		func() error { return f.intField(ctx, idTmMaxDiff, p.TmMaxDiff) },
		func() error { return f.intField(ctx, idSizeMin, p.SizeMin) },
		func() error { return f.intField(ctx, idSizeOpt, p.SizeOpt) },
		func() error { return f.intField(ctx, idSizeMax, p.SizeMax) },
		func() error { return f.intField(ctx, idNumReturn, p.NumReturn) },
		func() error { return f.intField(ctx, idMaxEndGC, p.MaxEndGC) },
		func() error { return f.intField(ctx, idMaxPolyX, p.MaxPolyX) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// applyRange writes the primer placement windows for one target position.
func (f *form) applyRange(ctx context.Context, r primer.Range) error {
	fields := map[string]int{
		idForwardStart: r.ForwardStart,
		idForwardEnd:   r.ForwardEnd,
		idReverseStart: r.ReverseStart,
		idReverseEnd:   r.ReverseEnd,
	}
	for id, v := range fields {
		if err := f.intField(ctx, id, v); err != nil {
			return err
		}
	}
	return nil
}

// errorBanner returns the text of a form-level error message, if the page
// is showing one.
func (f *form) errorBanner(ctx context.Context) string {
	js := fmt.Sprintf(`() => {
		const el = document.querySelector(%q);
		return el ? el.textContent.trim() : "";
	}`, selErrorBanner)

	res, err := f.page.Context(ctx).Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}
