package migration

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	es7 "github.com/olivere/elastic/v7"
)

func compareErrs(expectedErr string, actual error) bool {
	if actual == nil {
		if expectedErr == "" {
			return true
		}
		return false
	}

	return expectedErr == actual.Error()
}

type ServerSetup struct {
	Method, Path, Body, Response string
	HTTPStatus                   int
}

// This function is a modified version of: https://github.com/github/vulcanizer/blob/master/es_test.go
// A setup body of "*" matches any request body, which keeps the bodies of
// scroll and bulk requests out of the tables.
func buildTestServer(t *testing.T, setups []*ServerSetup) *httptest.Server {
	handlerFunc := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestBytes, _ := ioutil.ReadAll(r.Body)
		requestBody := string(requestBytes)

		matched := false
		for _, setup := range setups {
			bodyMatches := setup.Body == "*" || requestBody == setup.Body
			if r.Method == setup.Method && r.URL.EscapedPath() == setup.Path && bodyMatches {
				matched = true
				if setup.HTTPStatus == 0 {
					w.WriteHeader(http.StatusOK)
				} else {
					w.WriteHeader(setup.HTTPStatus)
				}
				_, err := w.Write([]byte(setup.Response))
				if err != nil {
					t.Fatalf("Unable to write test server response: %v", err)
				}
				break
			}
		}

		if !matched {
			t.Fatalf("No requests matched setup. Got method %s, Path %s, body %s\n", r.Method, r.URL.EscapedPath(), requestBody)
		}
	})

	return httptest.NewServer(handlerFunc)
}

func newTestClient(url string) (*elasticsearch, error) {
	client, err := es7.NewSimpleClient(es7.SetURL(url))
	if err != nil {
		return nil, err
	}
	return newElasticsearch(client), nil
}
