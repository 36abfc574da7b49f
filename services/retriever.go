package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"coursefaq/models"
)

const (
	DefaultMaxResults = 5
	DefaultIndex      = "course-questions"
)

// question 权重 3 倍，text/section 各 1 倍
var searchFields = []string{"question^3", "text", "section"}

// Retriever 根据问题和课程过滤返回按相关度排序的 FAQ 记录
type Retriever interface {
	Retrieve(ctx context.Context, query string, course models.Course, maxResults int) ([]models.FAQRecord, error)
}

type ESOptions struct {
	URL      string
	Index    string
	Username string
	Password string
}

// ESRetriever queries an Elasticsearch index of FAQ documents.
type ESRetriever struct {
	client *elasticsearch.Client
	index  string
}

func NewESRetriever(opts ESOptions) (*ESRetriever, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{opts.URL},
		Username:     opts.Username,
		Password:     opts.Password,
		DisableRetry: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create elasticsearch client")
	}
	index := opts.Index
	if index == "" {
		index = DefaultIndex
	}
	return &ESRetriever{client: client, index: index}, nil
}

type searchRequest struct {
	Size  int         `json:"size"`
	Query searchQuery `json:"query"`
}

type searchQuery struct {
	Bool boolQuery `json:"bool"`
}

type boolQuery struct {
	Must   mustClause   `json:"must"`
	Filter filterClause `json:"filter"`
}

type mustClause struct {
	MultiMatch multiMatch `json:"multi_match"`
}

type multiMatch struct {
	Query  string   `json:"query"`
	Fields []string `json:"fields"`
	Type   string   `json:"type"`
}

type filterClause struct {
	Term map[string]string `json:"term"`
}

func buildSearchRequest(query string, course models.Course, size int) searchRequest {
	return searchRequest{
		Size: size,
		Query: searchQuery{Bool: boolQuery{
			Must: mustClause{MultiMatch: multiMatch{
				Query:  query,
				Fields: searchFields,
				Type:   "best_fields",
			}},
			Filter: filterClause{Term: map[string]string{"course": course.String()}},
		}},
	}
}

func (r *ESRetriever) Retrieve(ctx context.Context, query string, course models.Course, maxResults int) ([]models.FAQRecord, error) {
	if maxResults < 1 {
		maxResults = DefaultMaxResults
	}

	body, err := json.Marshal(buildSearchRequest(query, course, maxResults))
	if err != nil {
		return nil, &RetrievalError{Op: "encode query", Err: err}
	}

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.index),
		r.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, &RetrievalError{Op: "search", Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &RetrievalError{Op: "read response", Err: err}
	}
	if res.IsError() {
		return nil, &RetrievalError{
			Op:  "search",
			Err: fmt.Errorf("status=%d body=%s", res.StatusCode, truncate(string(raw), 400)),
		}
	}

	records, err := parseHits(raw, course)
	if err != nil {
		return nil, &RetrievalError{Op: "parse response", Err: err}
	}
	if len(records) > maxResults {
		records = records[:maxResults]
	}
	return records, nil
}

// parseHits 解析 hits.hits[]._source，字段缺失或课程不符视为响应异常
func parseHits(raw []byte, course models.Course) ([]models.FAQRecord, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errors.Errorf("invalid json: %s", truncate(string(raw), 200))
	}
	hits := gjson.GetBytes(raw, "hits.hits")
	if !hits.IsArray() {
		return nil, errors.New("response has no hits.hits array")
	}

	records := make([]models.FAQRecord, 0, len(hits.Array()))
	for i, hit := range hits.Array() {
		source := hit.Get("_source")
		if !source.IsObject() {
			return nil, errors.Errorf("hit %d has no _source", i)
		}

		var missing []string
		field := func(name string) string {
			v := source.Get(name)
			if v.Type != gjson.String {
				missing = append(missing, name)
			}
			return v.String()
		}
		rec := models.FAQRecord{
			Section:  field("section"),
			Question: field("question"),
			Text:     field("text"),
			Course:   field("course"),
		}
		if len(missing) > 0 {
			return nil, errors.Errorf("hit %d (%s) missing fields: %s",
				i, hit.Get("_id").String(), strings.Join(missing, ", "))
		}
		if rec.Course != course.String() {
			return nil, errors.Errorf("hit %d belongs to course %q, want %q", i, rec.Course, course)
		}
		records = append(records, rec)
	}
	return records, nil
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
