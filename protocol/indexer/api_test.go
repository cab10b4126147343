package indexer_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/swaplane/twap-engine/protocol/indexer"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type IndexerAPITestSuite struct {
	suite.Suite
	api *indexer.IndexerAPI
}

func TestRunIndexerAPITestSuite(t *testing.T) {
	suite.Run(t, new(IndexerAPITestSuite))
}

func (s *IndexerAPITestSuite) SetupTest() {
	s.api = indexer.NewIndexerAPI("https://indexer.example/graphql", "0xexchange")
}

func graphqlQueryName(req *http.Request) string {
	body, _ := io.ReadAll(req.Body)
	var payload struct {
		Query string `json:"query"`
	}
	_ = json.Unmarshal(body, &payload)

	switch {
	case strings.Contains(payload.Query, "orderCreateds"):
		return "created"
	case strings.Contains(payload.Query, "orderFilleds"):
		return "fills"
	case strings.Contains(payload.Query, "orderCanceleds"):
		return "canceled"
	}
	return ""
}

func jsonResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func (s *IndexerAPITestSuite) Test_Orders_FoldsFillsAndCancellations() {
	s.api.HTTPClient.Transport = roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		switch graphqlQueryName(req) {
		case "created":
			return jsonResponse(`{"data":{"orderCreateds":[
				{"twapId":"1","transactionHash":"0xaa","maker":"0xmaker","exchange":"0xexchange",
				 "srcToken":"0xsrc","dstToken":"0xdst","srcAmount":"1000","srcBidAmount":"100",
				 "dstMinAmount":"1","deadline":"1700003600","fillDelay":"600","timestamp":"1700000000"},
				{"twapId":"2","transactionHash":"0xbb","maker":"0xmaker","exchange":"0xexchange",
				 "srcToken":"0xsrc","dstToken":"0xdst","srcAmount":"500","srcBidAmount":"50",
				 "dstMinAmount":"1","deadline":"1700003600","fillDelay":"600","timestamp":"1700000100"}
			]}}`), nil
		case "fills":
			return jsonResponse(`{"data":{"orderFilleds":[
				{"twapId":"1","srcAmountIn":"100","dstAmountOut":"95"},
				{"twapId":"1","srcAmountIn":"100","dstAmountOut":"97"}
			]}}`), nil
		case "canceled":
			return jsonResponse(`{"data":{"orderCanceleds":[{"twapId":"2"}]}}`), nil
		}
		return nil, fmt.Errorf("unexpected query")
	})

	result, err := s.api.Orders(context.Background(), "0xmaker")

	s.Nil(err)
	s.Len(result, 2)

	s.Equal(uint64(1), result[0].ID)
	s.Equal("200", result[0].FilledSrcAmount.String())
	s.Equal("192", result[0].FilledDstAmount.String())
	s.Equal(int64(1700000000000), result[0].CreatedAtMillis)
	s.Equal(int64(1700003600000), result[0].DeadlineMillis)
	s.Equal(int64(600000), result[0].FillDelayMillis)
	s.False(result[0].Canceled)

	s.Equal(uint64(2), result[1].ID)
	s.Equal("0", result[1].FilledSrcAmount.String())
	s.True(result[1].Canceled)
}

func (s *IndexerAPITestSuite) Test_Orders_EmptyHistory() {
	s.api.HTTPClient.Transport = roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(`{"data":{"orderCreateds":[]}}`), nil
	})

	result, err := s.api.Orders(context.Background(), "0xmaker")

	s.Nil(err)
	s.Len(result, 0)
}

func (s *IndexerAPITestSuite) Test_Orders_QueryError() {
	s.api.HTTPClient.Transport = roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(`{"errors":[{"message":"field not found"}]}`), nil
	})

	_, err := s.api.Orders(context.Background(), "0xmaker")

	s.NotNil(err)
	s.Contains(err.Error(), "field not found")
}

func (s *IndexerAPITestSuite) Test_Orders_BadStatusCode() {
	s.api.HTTPClient.Transport = roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusInternalServerError,
			Body:       io.NopCloser(strings.NewReader("")),
		}, nil
	})

	_, err := s.api.Orders(context.Background(), "0xmaker")

	s.NotNil(err)
}
