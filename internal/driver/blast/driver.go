// Package blast drives the real Primer-BLAST web form with a headless
// browser, implementing the session driver boundary. One Driver owns one
// browser and one form page; the orchestrator constructs one per worker
// slot via Factory.
package blast

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/driver"
	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/errors"
	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/logging"
)

// How long to wait for the results tab after a submission.
const submitWait = 15 * time.Second

// Config holds browser-level settings for the driver.
type Config struct {
	// URL of the Primer-BLAST form.
	URL string `mapstructure:"url"`

	// BrowserBin overrides the browser binary; empty uses the launcher's
	// auto-detected one.
	BrowserBin string `mapstructure:"browser_bin"`

	// Headless runs the browser without a window.
	Headless bool `mapstructure:"headless"`

	// PageLoadTimeout bounds the initial navigation.
	PageLoadTimeout time.Duration `mapstructure:"page_load_timeout"`
}

// DefaultConfig returns the standard browser settings.
func DefaultConfig() Config {
	return Config{
		URL:             PrimerBlastURL,
		Headless:        true,
		PageLoadTimeout: 30 * time.Second,
	}
}

// Driver is a session driver backed by one browser page. Not safe for
// concurrent use; the orchestrator serializes submissions per slot.
type Driver struct {
	cfg  Config
	log  *logging.Logger
	lch  *launcher.Launcher
	brw  *rod.Browser
	page *rod.Page
	form *form

	bootstrapped bool
}

// New launches a browser and opens the Primer-BLAST form.
func New(ctx context.Context, cfg Config, log *logging.Logger) (*Driver, error) {
	if cfg.URL == "" {
		cfg.URL = PrimerBlastURL
	}
	if log == nil {
		log = logging.NopLogger()
	}

	lch := launcher.New().Headless(cfg.Headless)
	if cfg.BrowserBin != "" {
		lch = lch.Bin(cfg.BrowserBin)
	}
	controlURL, err := lch.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	brw := rod.New().ControlURL(controlURL).Context(ctx)
	if err := brw.Connect(); err != nil {
		lch.Cleanup()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	page, err := brw.Page(proto.TargetCreateTarget{URL: cfg.URL})
	if err != nil {
		_ = brw.Close()
		lch.Cleanup()
		return nil, fmt.Errorf("open %s: %w", cfg.URL, err)
	}
	if err := page.Timeout(cfg.PageLoadTimeout).WaitLoad(); err != nil {
		_ = brw.Close()
		lch.Cleanup()
		return nil, fmt.Errorf("load %s: %w", cfg.URL, err)
	}

	log.Info("browser session ready", "url", cfg.URL, "headless", cfg.Headless)
	return &Driver{
		cfg:  cfg,
		log:  log,
		lch:  lch,
		brw:  brw,
		page: page,
		form: &form{page: page},
	}, nil
}

// Factory returns a driver.Factory constructing one browser session per
// worker slot.
func Factory(cfg Config, log *logging.Logger) driver.Factory {
	if log == nil {
		log = logging.NopLogger()
	}
	return func(ctx context.Context, slot int) (driver.SessionDriver, error) {
		return New(ctx, cfg, log.WithWorker(slot))
	}
}

// classify maps raw browser errors onto the failure taxonomy. Errors the
// form helpers already classified pass through.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var derr *errors.DriverError
	if errors.As(err, &derr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errors.NewDriverError(errors.FailureTimeout, op, err)
	}
	return errors.NewDriverError(errors.FailureTransient, op, err)
}

// bootstrap performs the one-time page setup: single-target mode, advanced
// parameters visible, specificity database, organism, SNP and result-window
// options.
func (d *Driver) bootstrap(ctx context.Context) error {
	if err := d.form.clickID(ctx, idOneTargetTab); err != nil {
		return err
	}
	if err := d.form.clickID(ctx, idAdvanced); err != nil {
		return err
	}
	if err := d.form.selectDatabase(ctx); err != nil {
		return err
	}
	if err := d.form.field(ctx, idOrganism, organismDefault); err != nil {
		return err
	}
	// Optional toggles: log and continue when unavailable.
	if err := d.form.clickLabel(ctx, xpathNoSNP); err != nil {
		d.log.Warn("could not set SNP handling option", "error", err)
	}
	if err := d.form.clickLabel(ctx, xpathNewWindow); err != nil {
		d.log.Warn("could not set new-window option", "error", err)
	}

	d.bootstrapped = true
	d.log.Info("form bootstrap complete")
	return nil
}

// Execute implements driver.SessionDriver: refresh the tunable parameters,
// fill the accession and primer ranges for this coordinate, submit, and
// wait for the results tab.
func (d *Driver) Execute(ctx context.Context, sub driver.Submission) (*driver.ResultPayload, error) {
	if !d.bootstrapped {
		if err := d.bootstrap(ctx); err != nil {
			return nil, classify("bootstrap", err)
		}
	}

	if err := d.form.applyParams(ctx, sub.Params); err != nil {
		return nil, classify("apply params", err)
	}
	if err := d.form.field(ctx, idSeqInput, sub.Accession); err != nil {
		return nil, classify("set accession", err)
	}
	if err := d.form.applyRange(ctx, sub.Params.RangeFor(sub.Coord.Pos)); err != nil {
		return nil, classify("apply range", err)
	}

	d.log.Debug("submitting", "accession", sub.Accession, "position", sub.Coord.Pos)

	submit, err := d.page.Context(ctx).Element(selSubmit)
	if err != nil {
		return nil, errors.NewDriverError(errors.FailureProtocol, "locate submit button",
			fmt.Errorf("form element missing, page layout may have changed: %w", err))
	}

	wait := d.page.Timeout(submitWait).WaitOpen()
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return nil, classify("submit", err)
	}

	resultPage, err := wait()
	if err != nil {
		// No results tab: either the form rejected the input in place or
		// the service stalled.
		if banner := d.form.errorBanner(ctx); banner != "" {
			return nil, errors.NewDriverError(errors.FailureRejected, "submit",
				fmt.Errorf("form rejected input: %s", banner))
		}
		return nil, classify("await results tab", err)
	}

	payload := &driver.ResultPayload{SubmittedAt: time.Now()}
	if info, ierr := resultPage.Info(); ierr == nil {
		payload.ResultURL = info.URL
		payload.JobKey = jobKeyFromURL(info.URL)
	}
	// Tabs accumulate fast across a batch; the URL is the durable record.
	if cerr := resultPage.Close(); cerr != nil {
		d.log.Warn("could not close results tab", "error", cerr)
	}

	d.log.Info("submission accepted", "accession", sub.Accession, "result_url", payload.ResultURL)
	return payload, nil
}

// jobKeyFromURL extracts the external job identifier from a results URL.
func jobKeyFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Query().Get("job_key")
}

// Close implements driver.SessionDriver.
func (d *Driver) Close() error {
	var err error
	if d.brw != nil {
		err = d.brw.Close()
		d.brw = nil
	}
	if d.lch != nil {
		d.lch.Cleanup()
		d.lch = nil
	}
	d.log.Info("browser session closed")
	return err
}
