package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"coursefaq/models"
	"coursefaq/services"
)

// EmptyQuestionMessage is shown when the user submits without a question.
const EmptyQuestionMessage = "Please enter a prompt."

// QuestionAnswerer is satisfied by services.RAGService.
type QuestionAnswerer interface {
	AnswerQuestion(ctx context.Context, question string, course models.Course) (string, error)
}

type QARequest struct {
	Question string `json:"question"`
	Course   string `json:"course"`
}

type QAResponse struct {
	Answer string `json:"answer"`
	Course string `json:"course"`
}

type QAController struct {
	qa     QuestionAnswerer
	logger *zap.Logger
}

func NewQAController(qa QuestionAnswerer, logger *zap.Logger) *QAController {
	return &QAController{qa: qa, logger: logger}
}

func (qc *QAController) ListCourses(c *gin.Context) {
	c.JSON(http.StatusOK, models.Courses())
}

func (qc *QAController) AnswerQuestion(c *gin.Context) {
	var req QARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": EmptyQuestionMessage})
		return
	}
	if req.Course == "" {
		req.Course = models.DefaultCourse.String()
	}
	course, err := models.ParseCourse(req.Course)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := qc.qa.AnswerQuestion(c.Request.Context(), req.Question, course)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	qc.logger.Info("question answered", zap.String("course", course.String()), zap.Int("answer_len", len(answer)))
	c.JSON(http.StatusOK, QAResponse{Answer: answer, Course: course.String()})
}

func statusForError(err error) int {
	var retrievalErr *services.RetrievalError
	var genErr *services.GenerationError
	switch {
	case errors.As(err, &retrievalErr), errors.As(err, &genErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
