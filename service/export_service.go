package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"watch-configurator/models"
)

// ExportService renders a printable sheet of a product's full asset catalog
// (every category with its selectable parts) and captures it to PDF or PNG
// with headless Chrome
type ExportService struct {
	catalogService *CatalogService
	compositor     *Compositor
	baseURL        string // Base URL for the render endpoint (e.g., "http://localhost:8080")
}

// NewExportService creates a new ExportService
func NewExportService(catalogService *CatalogService, compositor *Compositor, baseURL string) *ExportService {
	return &ExportService{
		catalogService: catalogService,
		compositor:     compositor,
		baseURL:        baseURL,
	}
}

// detectChromePath detects the path to Chrome/Chromium executable.
// Checks CHROME_PATH env var first, then common installation paths.
func detectChromePath() string {
	if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		if _, err := os.Stat(chromePath); err == nil {
			return chromePath
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sheetSection is one category's block on the printed sheet
type sheetSection struct {
	Category models.Category
	Assets   []sheetAsset
}

type sheetAsset struct {
	Label    string
	ImageURL string
}

// RenderSheetHTML renders the product sheet HTML template
func (s *ExportService) RenderSheetHTML(productKey string) (string, error) {
	catalog := s.catalogService.Current()
	product := catalog.Product(productKey)
	if product == nil {
		return "", fmt.Errorf("product %s not found", productKey)
	}

	categories := make([]models.Category, len(catalog.Categories))
	copy(categories, catalog.Categories)
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].SortOrder < categories[j].SortOrder
	})

	var sections []sheetSection
	for _, category := range categories {
		// The printed sheet goes through the same render-time guard as the
		// interactive grids
		assets := FilterForProduct(product.AssetsFor(category.Key), productKey)
		if len(assets) == 0 {
			continue
		}

		section := sheetSection{Category: category}
		for _, asset := range assets {
			imageURL, ok := s.compositor.DisplayableURL(asset)
			if !ok {
				continue
			}
			section.Assets = append(section.Assets, sheetAsset{
				Label:    asset.Label,
				ImageURL: imageURL,
			})
		}
		sections = append(sections, section)
	}

	templateData := struct {
		ProductKey  string
		DisplayName string
		Sections    []sheetSection
	}{
		ProductKey:  product.Key,
		DisplayName: product.DisplayName,
		Sections:    sections,
	}

	templatePath := filepath.Join("templates", "sheet.html")
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// newChromeContext builds an allocator + chromedp context, honoring a
// detected Chrome path (required in containers)
func newChromeContext(ctx context.Context) (context.Context, context.CancelFunc, context.CancelFunc) {
	chromePath := detectChromePath()
	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.NoSandbox)
	if chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	return chromedpCtx, chromedpCancel, allocCancel
}

// waitForImages waits for every <img> on the sheet to finish loading
// (success or error), bounded per image so a dead asset host cannot stall
// the capture
const waitForImagesJS = `
	(function() {
		return Promise.all([
			document.fonts.ready,
			Promise.all(Array.from(document.querySelectorAll('img')).map(img => {
				return new Promise((resolve) => {
					if (img.complete && img.naturalWidth > 0 && img.naturalHeight > 0) {
						resolve();
						return;
					}
					const timeout = setTimeout(() => resolve(), 5000);
					img.onload = () => { clearTimeout(timeout); resolve(); };
					img.onerror = () => { clearTimeout(timeout); resolve(); };
				});
			}))
		]);
	})();
`

// GeneratePDF captures the rendered sheet to a PDF
func (s *ExportService) GeneratePDF(ctx context.Context, productKey string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	chromedpCtx, chromedpCancel, allocCancel := newChromeContext(ctx)
	defer chromedpCancel()
	defer allocCancel()

	renderURL := fmt.Sprintf("%s/admin/export/render?product=%s", s.baseURL, productKey)
	log.Printf("📸 Capturing sheet PDF for %s (%s)", productKey, renderURL)

	var pdfBuf []byte
	err := chromedp.Run(chromedpCtx,
		chromedp.EmulateViewport(794, 5000), // 210mm at 96 DPI, tall enough for all pages
		chromedp.Navigate(renderURL),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(waitForImagesJS, nil),
		chromedp.Sleep(time.Second), // Final wait for layout
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27). // 210mm in inches
				WithPaperHeight(11.69).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	log.Printf("✓ Sheet PDF captured for %s (%d bytes)", productKey, len(pdfBuf))
	return pdfBuf, nil
}

// GeneratePNG captures the rendered sheet to PNG, one image per .page block.
// Returns a map of page number to PNG data.
func (s *ExportService) GeneratePNG(ctx context.Context, productKey string) (map[int][]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	chromedpCtx, chromedpCancel, allocCancel := newChromeContext(ctx)
	defer chromedpCancel()
	defer allocCancel()

	renderURL := fmt.Sprintf("%s/admin/export/render?product=%s", s.baseURL, productKey)
	log.Printf("📸 Capturing sheet PNG for %s (%s)", productKey, renderURL)

	var pageCountVal float64
	err := chromedp.Run(chromedpCtx,
		chromedp.EmulateViewport(794, 5000),
		chromedp.Navigate(renderURL),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(waitForImagesJS, nil),
		chromedp.Sleep(time.Second),
		chromedp.Evaluate(`document.querySelectorAll('.page').length`, &pageCountVal),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}

	pageCount := int(pageCountVal)
	if pageCount == 0 {
		return nil, fmt.Errorf("no pages found in sheet")
	}

	pngs := make(map[int][]byte, pageCount)
	for i := 1; i <= pageCount; i++ {
		selector := fmt.Sprintf("document.querySelectorAll('.page')[%d]", i-1)
		var shot []byte
		err := chromedp.Run(chromedpCtx,
			chromedp.Evaluate(selector+`.scrollIntoView()`, nil),
			chromedp.Sleep(300*time.Millisecond),
			chromedp.Screenshot(fmt.Sprintf(".page:nth-of-type(%d)", i), &shot, chromedp.NodeVisible),
		)
		if err != nil {
			log.Printf("⚠️  Could not capture sheet page %d for %s: %v", i, productKey, err)
			continue
		}
		pngs[i] = shot
	}

	if len(pngs) == 0 {
		return nil, fmt.Errorf("no sheet pages could be captured")
	}

	log.Printf("✓ Sheet PNG captured for %s (%d pages)", productKey, len(pngs))
	return pngs, nil
}
