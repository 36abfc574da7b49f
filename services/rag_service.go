package services

import (
	"context"

	"go.uber.org/zap"

	"coursefaq/models"
)

// RAGService 串联检索、上下文构建、提示词构建和模型调用
type RAGService struct {
	retriever  Retriever
	answerer   Answerer
	model      string
	maxResults int
	logger     *zap.Logger
}

type RAGOption func(*RAGService)

// WithModel overrides the model sent to the Answerer; empty keeps the
// Answerer's own default.
func WithModel(model string) RAGOption {
	return func(s *RAGService) { s.model = model }
}

func WithMaxResults(n int) RAGOption {
	return func(s *RAGService) {
		if n >= 1 {
			s.maxResults = n
		}
	}
}

func WithLogger(logger *zap.Logger) RAGOption {
	return func(s *RAGService) { s.logger = logger }
}

// NewRAGService 创建RAG服务实例
func NewRAGService(retriever Retriever, answerer Answerer, opts ...RAGOption) *RAGService {
	s := &RAGService{
		retriever:  retriever,
		answerer:   answerer,
		maxResults: DefaultMaxResults,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnswerQuestion runs retrieve -> context -> prompt -> answer once. Errors
// from either backend are returned as is.
func (s *RAGService) AnswerQuestion(ctx context.Context, question string, course models.Course) (string, error) {
	records, err := s.retriever.Retrieve(ctx, question, course, s.maxResults)
	if err != nil {
		s.logger.Error("retrieve documents failed", zap.String("course", course.String()), zap.Error(err))
		return "", err
	}
	s.logger.Debug("documents retrieved", zap.String("course", course.String()), zap.Int("count", len(records)))

	prompt := BuildPrompt(question, BuildContext(records))

	answer, err := s.answerer.Answer(ctx, prompt, s.model)
	if err != nil {
		s.logger.Error("generate answer failed", zap.String("course", course.String()), zap.Error(err))
		return "", err
	}
	return answer, nil
}
