package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"coursefaq/models"
	"coursefaq/services"
)

type stubQA struct {
	answer    string
	err       error
	calls     int
	gotCourse models.Course
}

func (s *stubQA) AnswerQuestion(_ context.Context, _ string, course models.Course) (string, error) {
	s.calls++
	s.gotCourse = course
	return s.answer, s.err
}

func newQAEngine(qa QuestionAnswerer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	qc := NewQAController(qa, zap.NewNop())
	r.GET("/api/courses", qc.ListCourses)
	r.POST("/api/qa", qc.AnswerQuestion)
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestAnswerQuestion_OK(t *testing.T) {
	qa := &stubQA{answer: "March 1."}
	r := newQAEngine(qa)

	w := postJSON(t, r, "/api/qa", QARequest{Question: "What is the deadline?", Course: "mlops-zoomcamp"})

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "March 1.", body["answer"])
	assert.Equal(t, "mlops-zoomcamp", body["course"])
	assert.Equal(t, models.MLOps, qa.gotCourse)
}

func TestAnswerQuestion_DefaultCourse(t *testing.T) {
	qa := &stubQA{answer: "ok"}
	w := postJSON(t, newQAEngine(qa), "/api/qa", QARequest{Question: "q"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.DataEngineering, qa.gotCourse)
}

func TestAnswerQuestion_EmptyQuestion(t *testing.T) {
	qa := &stubQA{}
	w := postJSON(t, newQAEngine(qa), "/api/qa", QARequest{Question: "   ", Course: "mlops-zoomcamp"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, EmptyQuestionMessage, decodeBody(t, w)["error"])
	assert.Zero(t, qa.calls)
}

func TestAnswerQuestion_UnknownCourse(t *testing.T) {
	qa := &stubQA{}
	w := postJSON(t, newQAEngine(qa), "/api/qa", QARequest{Question: "q", Course: "rust-zoomcamp"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, qa.calls)
}

func TestAnswerQuestion_BackendErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"retrieval", &services.RetrievalError{Op: "search", Err: errors.New("refused")}, http.StatusBadGateway},
		{"generation", &services.GenerationError{StatusCode: 429, Err: errors.New("quota")}, http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, newQAEngine(&stubQA{err: tc.err}), "/api/qa", QARequest{Question: "q"})
			assert.Equal(t, tc.want, w.Code)
			assert.Contains(t, decodeBody(t, w)["error"], tc.err.Error())
		})
	}
}

func TestListCourses(t *testing.T) {
	r := newQAEngine(&stubQA{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/courses", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var courses []models.CourseOption
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &courses))
	assert.Equal(t, models.Courses(), courses)
}
