package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"coursefaq/config"
	"coursefaq/controllers"
	"coursefaq/models"
	"coursefaq/services"
)

type stubPipeline struct {
	answer    string
	err       error
	calls     int
	gotQ      string
	gotCourse models.Course
}

func (s *stubPipeline) AnswerQuestion(_ context.Context, q string, course models.Course) (string, error) {
	s.calls++
	s.gotQ, s.gotCourse = q, course
	return s.answer, s.err
}

func withPipeline(t *testing.T, p controllers.QuestionAnswerer) {
	t.Helper()
	backup := pipelineProvider
	pipelineProvider = func(*config.Config, *zap.Logger) (controllers.QuestionAnswerer, error) {
		return p, nil
	}
	t.Cleanup(func() { pipelineProvider = backup })
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--config", t.TempDir()))
	err := root.Execute()
	return out.String(), err
}

func TestAsk_EmptyQuestion(t *testing.T) {
	p := &stubPipeline{}
	withPipeline(t, p)

	out, err := run(t, "ask")
	require.NoError(t, err)
	assert.Equal(t, "Please enter a prompt.\n", out)
	assert.Zero(t, p.calls)
}

func TestAsk_PrintsAnswer(t *testing.T) {
	p := &stubPipeline{answer: "March 1."}
	withPipeline(t, p)

	out, err := run(t, "ask", "--course", "machine-learning-zoomcamp", "What", "is", "the", "deadline?")
	require.NoError(t, err)
	assert.Equal(t, "Answer:\nMarch 1.\n", out)
	assert.Equal(t, "What is the deadline?", p.gotQ)
	assert.Equal(t, models.MachineLearning, p.gotCourse)
}

func TestAsk_UnknownCourse(t *testing.T) {
	p := &stubPipeline{}
	withPipeline(t, p)

	_, err := run(t, "ask", "--course", "go-zoomcamp", "hi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrUnknownCourse))
	assert.Zero(t, p.calls)
}

func TestAsk_PipelineError(t *testing.T) {
	retrievalErr := &services.RetrievalError{Op: "search", Err: errors.New("connection refused")}
	withPipeline(t, &stubPipeline{err: retrievalErr})

	_, err := run(t, "ask", "hi")
	assert.Same(t, retrievalErr, err)
}

func TestAsk_MissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := run(t, "ask", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestCourses(t *testing.T) {
	out, err := run(t, "courses")
	require.NoError(t, err)
	assert.Equal(t,
		"data-engineering-zoomcamp\tData Engineering Zoomcamp\n"+
			"machine-learning-zoomcamp\tMachine Learning Zoomcamp\n"+
			"mlops-zoomcamp\tMLOps Zoomcamp\n",
		out)
}
