package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"coursefaq/models"
	"coursefaq/services"
)

// FeedbackRecorder is satisfied by services.FeedbackService.
type FeedbackRecorder interface {
	Submit(ctx context.Context, ev services.FeedbackEvent) (services.FeedbackResult, error)
	Stats(course models.Course) (models.FeedbackStats, error)
	Top(n int) ([]models.CourseRank, error)
}

type FeedbackRequest struct {
	Course   string `json:"course" binding:"required"`
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
	Vote     int    `json:"vote" binding:"required"`
}

type FeedbackController struct {
	feedback FeedbackRecorder
}

func NewFeedbackController(feedback FeedbackRecorder) *FeedbackController {
	return &FeedbackController{feedback: feedback}
}

// SubmitFeedback: 更新 Redis 计数并记录到 MySQL（配置了 MQ 时异步写入）
func (fc *FeedbackController) SubmitFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := fc.feedback.Submit(c.Request.Context(), services.FeedbackEvent{
		Course:   req.Course,
		Question: req.Question,
		Answer:   req.Answer,
		Vote:     req.Vote,
	})
	if err != nil {
		c.JSON(feedbackStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, res)
}

// GetFeedback: 从 Redis 获取课程的点赞/点踩数
func (fc *FeedbackController) GetFeedback(c *gin.Context) {
	course, err := models.ParseCourse(c.Param("course"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stats, err := fc.feedback.Stats(course)
	if err != nil {
		c.JSON(feedbackStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetTopCourses: 返回 Top N 评价排行（从 Redis ZSET 获取）
func (fc *FeedbackController) GetTopCourses(c *gin.Context) {
	top, err := strconv.Atoi(c.DefaultQuery("top", strconv.Itoa(services.DefaultTopN)))
	if err != nil || top <= 0 {
		top = services.DefaultTopN
	}

	list, err := fc.feedback.Top(top)
	if err != nil {
		c.JSON(feedbackStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func feedbackStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidVote), errors.Is(err, models.ErrUnknownCourse):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrFeedbackDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
