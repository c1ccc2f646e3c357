package screener

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Response is a successfully fetched page.
type Response struct {
	Url    string
	Status int
	Body   []byte
}

func (r Response) Contains(marker string) bool {
	return strings.Contains(string(r.Body), marker)
}

// Fetch GETs the url with the session, retrying non-2xx statuses and
// transport errors with a fixed delay. After the last failed attempt it
// returns a *FetchFailure.
func (c Client) Fetch(ctx context.Context, session *Session, link string) (Response, error) {
	ctx, span := tracer.Start(ctx, "client:Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("url", link))

	var lastErr error
	attempts := 0
	for attempts < c.retry.MaxAttempts {
		attempts++

		res, err := session.http.R().
			SetContext(ctx).
			Get(link)
		if err == nil && res.IsSuccess() {
			span.SetAttributes(attribute.Int("attempts", attempts))
			return Response{
				Url:    link,
				Status: res.StatusCode(),
				Body:   res.Body(),
			}, nil
		}
		if err == nil {
			err = fmt.Errorf("unexpected status: %s", res.Status())
		}
		lastErr = err

		if attempts == c.retry.MaxAttempts {
			break
		}
		c.tel.ReportWarning(
			report_client_fetch,
			fmt.Errorf("retry %d: %w", attempts, err),
			link,
			c.retry.Delay.String(),
		)
		err = c.time.Sleep(ctx, c.retry.Delay)
		if err != nil {
			lastErr = fmt.Errorf("%w (last error: %s)", err, lastErr.Error())
			break
		}
	}

	failure := &FetchFailure{Url: link, Attempts: attempts, Err: lastErr}
	c.tel.ReportBroken(report_client_fetch, failure)
	span.SetStatus(codes.Error, failure.Error())
	return Response{}, failure
}
