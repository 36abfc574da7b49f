package models

import "gorm.io/gorm"

const (
	VoteUp   = 1
	VoteDown = -1
)

// Feedback 表示用户对一次回答的评价（用于持久化审计/分析）
type Feedback struct {
	gorm.Model
	Course   string `gorm:"size:64;index" json:"course"`
	Question string `gorm:"type:text" json:"question"`
	Answer   string `gorm:"type:text" json:"answer"`
	Vote     int    `json:"vote"`
}

// FeedbackStats 某课程的点赞/点踩计数
type FeedbackStats struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
}

// CourseRank 排行榜中的一项，Score 为点赞减点踩
type CourseRank struct {
	Course string `json:"course"`
	Label  string `json:"label"`
	Score  int64  `json:"score"`
	Rank   int    `json:"rank"`
}
