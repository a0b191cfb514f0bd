package v1

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
)

// SendRequest sends a HTTP GET request to the specified URL. Transport
// failures are returned as errors so a stage can classify them instead of
// crashing outright.
func SendRequest(url string) (Response, error) {
	RecordAction(fmt.Sprintf("Request: %s", url), func() { SendRequest(url) })
	if IsDryRun() {
		return Response{}, nil
	}
	Logf(LogTypeRequest, "Sending GET request to: %s", url)
	resp, err := http.Get(url)
	if err != nil {
		return Response{}, fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	header := make(map[string]string)
	for k, v := range resp.Header {
		if len(v) > 0 {
			header[k] = v[0]
		}
	}

	Log(LogTypeRequest, fmt.Sprintf("Received status %d from %s", resp.StatusCode, url), fmt.Sprintf("Body: %s\nHeaders: %v", string(body), header))
	return Response{
		StatusCode: resp.StatusCode,
		Body:       string(body),
		Header:     header,
	}, nil
}

// MustSendRequest sends a GET request and fails the stage on transport error.
func MustSendRequest(url string) Response {
	resp, err := SendRequest(url)
	if err != nil {
		FailErr(err, "Request failed")
	}
	return resp
}

// ExpectStatusCode asserts that the response has the expected status code.
func ExpectStatusCode(resp Response, expected int) {
	if resp.StatusCode != expected {
		Fail("ExpectStatusCode failed: expected %d, got %d", expected, resp.StatusCode)
	}
	Logf(LogTypeExpect, "Status %d == %d - PASSED", resp.StatusCode, expected)
}

// ExpectHeader asserts that the response has the expected header.
func ExpectHeader(resp Response, key, value string) {
	if got, ok := resp.Header[key]; !ok || got != value {
		Fail("ExpectHeader failed: expected %s=%s, got %s", key, value, got)
	}
	Logf(LogTypeExpect, "Header '%s' == '%s' - PASSED", key, value)
}

// ExpectJsonBody asserts that the response body matches the expected JSON.
// This is a simple implementation that compares unmarshaled objects.
func ExpectJsonBody(resp Response, expectedJson interface{}) {
	var got interface{}
	if err := json.Unmarshal([]byte(resp.Body), &got); err != nil {
		FailErr(err, "ExpectJsonBody failed: response body is not valid JSON. Body: %s", resp.Body)
	}

	// If expectedJson is string, unmarshal it too
	var expected interface{}
	if s, ok := expectedJson.(string); ok {
		if err := json.Unmarshal([]byte(s), &expected); err != nil {
			FailErr(err, "ExpectJsonBody failed: expectedJson string is not valid JSON")
		}
	} else {
		expected = expectedJson
	}

	if !reflect.DeepEqual(got, expected) {
		Fail("ExpectJsonBody failed:\nExpected: %v\nGot:      %v", expected, got)
	}
	Log(LogTypeExpect, "JSON body matches expected value - PASSED", "")
}

// ExpectJsonBodyField asserts that a field inside the JSON body equals the
// expected value. Path supports dot notation and array indexes, e.g.
// "b.c" or "d[0]".
func ExpectJsonBodyField(resp Response, path string, expected interface{}) {
	var body interface{}
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		FailErr(err, "ExpectJsonBodyField failed: response body is not valid JSON. Body: %s", resp.Body)
	}

	val, err := lookupJsonPath(body, path)
	if err != nil {
		FailErr(err, "ExpectJsonBodyField failed for path '%s'", path)
	}

	if !valuesEqual(val, expected) {
		Fail("ExpectJsonBodyField failed for path '%s': expected '%v', got '%v'", path, expected, val)
	}
	Logf(LogTypeExpect, "JSON field '%s' == '%v' - PASSED", path, expected)
}

func lookupJsonPath(v interface{}, path string) (interface{}, error) {
	for _, part := range strings.Split(path, ".") {
		key := part
		index := -1
		if open := strings.Index(part, "["); open >= 0 && strings.HasSuffix(part, "]") {
			key = part[:open]
			i, err := strconv.Atoi(part[open+1 : len(part)-1])
			if err != nil {
				return nil, fmt.Errorf("bad index in path segment %q", part)
			}
			index = i
		}

		if key != "" {
			obj, ok := v.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("segment %q: not a JSON object", part)
			}
			v, ok = obj[key]
			if !ok {
				return nil, fmt.Errorf("segment %q: field not found", part)
			}
		}
		if index >= 0 {
			arr, ok := v.([]interface{})
			if !ok {
				return nil, fmt.Errorf("segment %q: not a JSON array", part)
			}
			if index >= len(arr) {
				return nil, fmt.Errorf("segment %q: index out of range", part)
			}
			v = arr[index]
		}
	}
	return v, nil
}
