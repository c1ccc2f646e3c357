// Package httpdump writes every http exchange of a resty client to an output
// as a plain text transcript. It is meant for debugging scrapers against the
// live site.
package httpdump

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

// Output receives one rendered exchange per call.
type Output interface {
	Write(id string, contents string)
}

// DirOutput writes each exchange to its own file in a directory.
type DirOutput struct {
	directory string
}

func NewDirOutput(dir string) (DirOutput, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return DirOutput{}, err
	}
	return DirOutput{directory: dir}, nil
}

func (o DirOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id+".txt"), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write http dump", "id", id, "err", err)
	}
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Attach dumps every response received by client to output, exchanges are
// named `<prefix>-<n>` in the order they complete.
func Attach(client *resty.Client, prefix string, output Output) {
	prefix = unsafeChars.ReplaceAllString(prefix, "_")
	var counter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		n := atomic.AddUint64(&counter, 1)
		output.Write(fmt.Sprintf("%s-%03d", prefix, n), FormatExchange(res))
		return nil
	})
}

func formatHeaders(headers http.Header) string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var lines []string
	for _, k := range keys {
		for _, v := range headers[k] {
			lines = append(lines, fmt.Sprintf("%s: %s", k, v))
		}
	}
	return strings.Join(lines, "\n")
}

func formatRequestBody(req *http.Request) string {
	if req == nil || req.GetBody == nil {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("failed to get request body: %s", err.Error())
	}
	// resty installs a GetBody that returns a nil reader for bodiless requests
	if body == nil {
		return ""
	}
	defer body.Close()
	readBody, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("failed to read request body: %s", err.Error())
	}
	return string(readBody)
}

// 1: request method
// 2: request url
// 3: request headers in ("Key: Value" format)
// 4: request body
// 5: response status
// 6: response url
// 7: response headers in ("Key: Value" format)
// 8: response body
const exchangeTemplate = `---- REQUEST ----

%s %s

%s

%s

---- RESPONSE ----

%s %s

%s

%s`

// FormatExchange renders the request and response of res.
func FormatExchange(res *resty.Response) string {
	var requestHeaders http.Header
	var rawRequest *http.Request
	if res.Request.RawRequest != nil {
		rawRequest = res.Request.RawRequest
		requestHeaders = rawRequest.Header
	}

	responseUrl := res.Request.URL
	if res.RawResponse != nil {
		if res.RawResponse.Request != nil {
			responseUrl = res.RawResponse.Request.URL.String()
		}
		location, err := res.RawResponse.Location()
		if err == nil {
			responseUrl = location.String()
		}
	}

	return fmt.Sprintf(
		exchangeTemplate,

		res.Request.Method, res.Request.URL,
		formatHeaders(requestHeaders),
		formatRequestBody(rawRequest),

		strconv.Itoa(res.StatusCode()), responseUrl,
		formatHeaders(res.Header()),
		res.String(),
	)
}
