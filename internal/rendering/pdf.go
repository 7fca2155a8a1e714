package rendering

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/jonathan/resume-enhancer/internal/types"
)

// DefaultPrintTimeout bounds a single HTML to PDF conversion
const DefaultPrintTimeout = 30 * time.Second

// PDFRenderer prints HTML documents to PDF with headless Chrome.
// A new browser is started for every document.
type PDFRenderer struct {
	// ExecPath overrides the Chrome binary. Empty means search the PATH.
	ExecPath string
	// NoSandbox disables the Chrome sandbox, needed when running as root in containers
	NoSandbox bool
	Timeout   time.Duration
}

// NewPDFRenderer returns a renderer with the default timeout
func NewPDFRenderer(execPath string, noSandbox bool) *PDFRenderer {
	return &PDFRenderer{ExecPath: execPath, NoSandbox: noSandbox, Timeout: DefaultPrintTimeout}
}

// RenderResume lays out m as HTML and prints it to PDF
func (r *PDFRenderer) RenderResume(ctx context.Context, m types.SectionMap, opts Options) ([]byte, error) {
	html, err := RenderHTML(m, opts)
	if err != nil {
		return nil, err
	}
	return r.PrintHTML(ctx, html)
}

// PrintHTML loads html into a blank page and prints it, backgrounds included
func (r *PDFRenderer) PrintHTML(ctx context.Context, html string) ([]byte, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}
	if r.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(r.ExecPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultPrintTimeout
	}
	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, &RenderError{Message: "failed to print PDF", Cause: err}
	}
	return pdf, nil
}
