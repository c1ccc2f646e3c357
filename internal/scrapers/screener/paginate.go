package screener

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"screener-sync/internal/config"

	"go.opentelemetry.io/otel/attribute"
)

// Block is one scraped page of an account.
type Block struct {
	Page  int
	Table Table
}

// AccountResult holds every page scraped for an account, in page order.
type AccountResult struct {
	Blocks []Block
}

func (r AccountResult) Pages() int {
	return len(r.Blocks)
}

// Values flattens the result into sheet rows, every page becomes its header
// row, its data rows and one blank separator row.
func (r AccountResult) Values() [][]string {
	var out [][]string
	for _, b := range r.Blocks {
		out = append(out, b.Table.Header)
		out = append(out, b.Table.Rows...)
		out = append(out, make([]string, b.Table.Width()))
	}
	return out
}

// PageUrl substitutes the page number into a screen url template, both the
// `{page}` and the bare `{}` placeholder are accepted.
func PageUrl(template string, page int) string {
	n := strconv.Itoa(page)
	if strings.Contains(template, "{page}") {
		return strings.ReplaceAll(template, "{page}", n)
	}
	return strings.ReplaceAll(template, "{}", n)
}

// renamedColumnThreshold is the similarity above which a header is reported
// as a likely rename of an expected column.
const renamedColumnThreshold = 0.85

func (c Client) checkDownPercent(table Table, link string) {
	if table.Column(ColumnDownPercent) >= 0 {
		return
	}
	closest, ok := table.ClosestColumn(ColumnDownPercent, renamedColumnThreshold)
	if !ok {
		c.tel.ReportWarning(report_client_scrape, fmt.Errorf("no %q column, values keep their sign", ColumnDownPercent), link)
		return
	}
	c.tel.ReportWarning(
		report_client_scrape,
		fmt.Errorf("no %q column, closest header is %q", ColumnDownPercent, closest),
		link,
	)
}

// Scrape walks the pages of the account's screen until a page has no next
// page marker. A fetch or parse failure ends pagination early, the pages
// gathered before it are kept.
func (c Client) Scrape(ctx context.Context, session *Session, account config.Account) AccountResult {
	ctx, span := tracer.Start(ctx, "client:Scrape")
	defer span.End()

	var result AccountResult
	for page := 1; ; page++ {
		link := PageUrl(account.Url, page)

		res, err := c.Fetch(ctx, session, link)
		if err != nil {
			break
		}

		table, err := c.parser.Parse(res.Body, account.Classify)
		if err != nil {
			c.tel.ReportWarning(report_client_scrape, err, link, page)
			break
		}

		if page == 1 && account.Classify {
			c.checkDownPercent(table, link)
		}
		result.Blocks = append(result.Blocks, Block{Page: page, Table: table})
		c.tel.ReportInfo("page scraped", account.Username, page, len(table.Rows))

		if !res.Contains(c.site.NextPageMarker) {
			break
		}
		err = c.time.Sleep(ctx, c.pageDelay)
		if err != nil {
			c.tel.ReportWarning(report_client_scrape, err, link, page)
			break
		}
	}

	span.SetAttributes(attribute.Int("pages", result.Pages()))
	return result
}
