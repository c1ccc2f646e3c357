package trigger

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"screener-sync/internal/components/assert"
	"screener-sync/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
)

const report_client_fire = "client.fire"

// Client calls the post-processing web hook once a run is finished.
type Client struct {
	url  string
	http *resty.Client
	tel  telemetry.API
}

func NewClient(url string, timeout time.Duration, tel telemetry.API) Client {
	assert.NotEmptyStr(url)
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("trigger", tel)

	httpClient := resty.New()
	if timeout > 0 {
		httpClient.SetTimeout(timeout)
	}
	telemetry.InstrumentResty(httpClient, "trigger/http", tel)

	return Client{
		url:  url,
		http: httpClient,
		tel:  tel,
	}
}

// Fire sends a payload-less GET to the hook. Only a 200 counts as success,
// the status is returned either way.
func (c Client) Fire(ctx context.Context) (int, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(c.url)
	if err != nil {
		c.tel.ReportBroken(report_client_fire, err, c.url)
		return 0, err
	}
	if res.StatusCode() != http.StatusOK {
		err = fmt.Errorf("unexpected status: %s", res.Status())
		c.tel.ReportBroken(report_client_fire, err, c.url)
		return res.StatusCode(), err
	}
	c.tel.ReportInfo("trigger fired", res.StatusCode())
	return res.StatusCode(), nil
}
