package restyutil

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

func formatHeaders(headers http.Header) string {
	var out strings.Builder
	for k, vals := range headers {
		for _, v := range vals {
			out.WriteString(fmt.Sprintf("%s: %s\n", k, v))
		}
	}
	rendered := out.String()
	return strings.TrimSuffix(rendered, "\n")
}

func formatRequestBody(req *http.Request) string {
	if req.GetBody == nil {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("failed to get request body: %s", err.Error())
	}
	readBody, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("failed to read request body: %s", err.Error())
	}
	return string(readBody)
}

const messageInfoTemplate = `---- REQUEST ----

%s %s

%s

%s

---- RESPONSE ----

%s %s

%s

%s`

func formatHttpMessage(res *resty.Response) string {
	req := res.Request.RawRequest
	return fmt.Sprintf(
		messageInfoTemplate,
		req.Method,
		req.URL.String(),
		formatHeaders(req.Header),
		formatRequestBody(req),
		strconv.Itoa(res.StatusCode()),
		res.RawResponse.Request.URL.String(),
		formatHeaders(res.Header()),
		string(res.Body()),
	)
}
