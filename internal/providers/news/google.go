// Package news adapts external news search services to core.NewsSource.
package news

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/inbucket/html2text"
	"github.com/mmcdole/gofeed"
	"github.com/sandevgo/scoutbot/internal/config"
	"github.com/sandevgo/scoutbot/internal/core"
	"github.com/sandevgo/scoutbot/pkg/log"
	"github.com/sandevgo/scoutbot/pkg/retry"
	"golang.org/x/time/rate"
)

const (
	maxFeedSize       = 4 << 20
	defaultMaxResults = 20
)

// Google searches Google News through its public RSS endpoints.
type Google struct {
	client     *http.Client
	retrier    *retry.Retrier
	limiter    *rate.Limiter
	baseURL    string
	language   string
	country    string
	maxResults int
}

var _ core.NewsSource = (*Google)(nil)

func NewGoogle(cfg *config.NewsConfig, retryCfg *retry.Config) *Google {
	if retryCfg == nil {
		retryCfg = retry.NewDefaultConfig()
	}

	limit := rate.Inf
	if cfg.RatePerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RatePerMinute))
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	return &Google{
		client:     &http.Client{Timeout: cfg.RequestTimeout},
		retrier:    retry.NewRetrier(retryCfg),
		limiter:    rate.NewLimiter(limit, 1),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		language:   cfg.Language,
		country:    cfg.Country,
		maxResults: maxResults,
	}
}

func (g *Google) TopNews(ctx context.Context) ([]core.Article, error) {
	return g.fetch(ctx, "/rss", g.locale())
}

func (g *Google) Search(ctx context.Context, query string) ([]core.Article, error) {
	params := g.locale()
	params.Set("q", query)
	return g.fetch(ctx, "/rss/search", params)
}

func (g *Google) locale() url.Values {
	params := url.Values{}
	params.Set("hl", g.language+"-"+g.country)
	params.Set("gl", g.country)
	params.Set("ceid", g.country+":"+g.language)
	return params
}

func (g *Google) fetch(ctx context.Context, path string, params url.Values) ([]core.Article, error) {
	endpoint := g.baseURL + path + "?" + params.Encode()

	var feed *gofeed.Feed
	err := g.retrier.Do(ctx, func() error {
		if err := g.limiter.Wait(ctx); err != nil {
			return retry.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("User-Agent", core.ScoutUserAgent)

		resp, err := g.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch feed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			statusErr := fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return statusErr
			}
			return retry.Permanent(statusErr)
		}

		feed, err = gofeed.NewParser().Parse(io.LimitReader(resp.Body, maxFeedSize))
		if err != nil {
			return retry.Permanent(fmt.Errorf("failed to parse feed: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	articles := make([]core.Article, 0, min(len(feed.Items), g.maxResults))
	for _, item := range feed.Items {
		if len(articles) >= g.maxResults {
			break
		}
		if item == nil || item.Link == "" {
			continue
		}
		articles = append(articles, toArticle(ctx, item))
	}

	log.FromCtx(ctx).Debug().
		Str("path", path).
		Str("query", params.Get("q")).
		Int("items", len(articles)).
		Msg("news feed fetched")

	return articles, nil
}

func toArticle(ctx context.Context, item *gofeed.Item) core.Article {
	title, publisher := splitPublisher(item.Title)
	if item.Author != nil && item.Author.Name != "" {
		publisher = item.Author.Name
	}

	description := item.Description
	if description != "" {
		text, err := html2text.FromString(description, html2text.Options{OmitLinks: true})
		if err != nil {
			log.FromCtx(ctx).Debug().Err(err).Str("url", item.Link).Msg("failed to flatten description")
		} else {
			description = text
		}
	}

	a := core.Article{
		Title:       title,
		Description: strings.TrimSpace(description),
		URL:         item.Link,
		Publisher:   publisher,
	}
	if item.PublishedParsed != nil {
		a.PublishedAt = *item.PublishedParsed
	}
	return a
}

// splitPublisher separates Google News' "Headline - Publisher" titles.
func splitPublisher(title string) (string, string) {
	title = strings.TrimSpace(title)
	i := strings.LastIndex(title, " - ")
	if i <= 0 {
		return title, ""
	}
	return strings.TrimSpace(title[:i]), strings.TrimSpace(title[i+3:])
}
