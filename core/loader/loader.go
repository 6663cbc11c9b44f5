package loader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/siherrmann/urlrag/helper"
	"github.com/siherrmann/urlrag/model"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// LoadFunc loads the pages behind the urls, one document per url in input order
type LoadFunc func(ctx context.Context, urls []string) ([]*model.Document, error)

// FetchFunc returns the HTML of a page
type FetchFunc func(ctx context.Context, url string) (string, error)

// BrowserLoader creates a loader rendering every page in headless Chrome.
// A load starts one browser, each url is rendered in its own tab with the given timeout.
func BrowserLoader(timeout time.Duration, opts ...chromedp.ExecAllocatorOption) LoadFunc {
	return func(ctx context.Context, urls []string) ([]*model.Document, error) {
		if err := validateURLs(urls); err != nil {
			return nil, err
		}

		allocatorOptions := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.UserAgent(userAgent),
		)
		allocatorOptions = append(allocatorOptions, opts...)

		actx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions...)
		defer cancelAlloc()
		bctx, cancelBrowser := chromedp.NewContext(actx)
		defer cancelBrowser()

		// Starts the browser so every url gets a tab of the same browser
		err := chromedp.Run(bctx)
		if err != nil {
			return nil, helper.NewError("start browser", err)
		}

		return load(ctx, urls, func(ctx context.Context, url string) (string, error) {
			return renderHTML(bctx, url, timeout)
		})
	}
}

// HTMLLoader creates a loader extracting the documents from the HTML returned by fetch
func HTMLLoader(fetch FetchFunc) LoadFunc {
	return func(ctx context.Context, urls []string) ([]*model.Document, error) {
		if err := validateURLs(urls); err != nil {
			return nil, err
		}
		return load(ctx, urls, fetch)
	}
}

func load(ctx context.Context, urls []string, fetch FetchFunc) ([]*model.Document, error) {
	documents := make([]*model.Document, 0, len(urls))
	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		html, err := fetch(ctx, url)
		if err != nil {
			return nil, helper.NewError(fmt.Sprintf("fetch %s", url), err)
		}

		doc, err := ExtractDocument(html, url)
		if err != nil {
			return nil, helper.NewError(fmt.Sprintf("extract %s", url), err)
		}

		documents = append(documents, doc)
	}

	return documents, nil
}

func renderHTML(bctx context.Context, url string, timeout time.Duration) (string, error) {
	tctx, cancelTab := chromedp.NewContext(bctx)
	defer cancelTab()

	if timeout > 0 {
		var cancelTimeout context.CancelFunc
		tctx, cancelTimeout = context.WithTimeout(tctx, timeout)
		defer cancelTimeout()
	}

	var html string
	err := chromedp.Run(tctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	return html, err
}

func validateURLs(urls []string) error {
	if len(urls) == 0 {
		return fmt.Errorf("no urls given")
	}
	for i, url := range urls {
		if strings.TrimSpace(url) == "" {
			return fmt.Errorf("url %d is empty", i)
		}
	}
	return nil
}
