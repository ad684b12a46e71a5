package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"

	"github.com/google/uuid"
)

// ScorerService talks to the external scoring collaborator, an
// OpenAI-compatible chat completions endpoint. It backs two concerns:
// subjective grading of submitted answers and draft quiz generation for
// instructors. Every call carries a bounded timeout so a slow scorer can
// never stall the submission path.
type ScorerService struct {
	cfg    config.ScorerConfig
	client *http.Client
}

func NewScorerService(cfg config.ScorerConfig) *ScorerService {
	return &ScorerService{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

type ScoreQuestion struct {
	ID            uint               `json:"id"`
	Prompt        string             `json:"prompt"`
	Type          model.QuestionType `json:"type"`
	CorrectAnswer string             `json:"correctAnswer,omitempty"`
	Points        int                `json:"points"`
}

type ScoreRequest struct {
	QuizTitle      string              `json:"quizTitle"`
	Questions      []ScoreQuestion     `json:"questions"`
	StudentAnswers []model.AnswerInput `json:"studentAnswers"`
}

type QuestionGrade struct {
	QuestionID uint `json:"questionId"`
	IsCorrect  bool `json:"isCorrect"`
	Points     int  `json:"points"`
}

type ScoreResult struct {
	Score          int             `json:"score"`
	MaxScore       int             `json:"maxScore"`
	Percentage     float64         `json:"percentage"`
	Feedback       string          `json:"feedback"`
	QuestionGrades []QuestionGrade `json:"questionGrades"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const scoreSystemPrompt = "You are a strict grading assistant for a learning platform. " +
	"You receive a quiz title, its questions (with reference answers and point values) and a student's answers. " +
	"Award each question either partial or full points, judge correctness, and write short constructive feedback. " +
	"Respond with a single JSON object and nothing else, using exactly these fields: " +
	`{"score": int, "maxScore": int, "percentage": float, "feedback": string, ` +
	`"questionGrades": [{"questionId": int, "isCorrect": bool, "points": int}]}`

// ScoreSubmission delegates subjective grading. It fails loudly on
// malformed input or a malformed response; it never fabricates zeros.
func (s *ScorerService) ScoreSubmission(ctx context.Context, req ScoreRequest) (*ScoreResult, error) {
	if len(req.Questions) == 0 {
		return nil, util.Validationf("scorer request has no questions")
	}
	maxScore := 0
	for _, q := range req.Questions {
		if q.Points <= 0 {
			return nil, util.Validationf("scorer request question %d has non-positive points", q.ID)
		}
		maxScore += q.Points
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	content, err := s.chat(ctx, scoreSystemPrompt, string(payload))
	if err != nil {
		return nil, err
	}

	var result ScoreResult
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &result); err != nil {
		return nil, fmt.Errorf("%w: malformed scorer response: %v", util.ErrScorerUnavailable, err)
	}

	if result.MaxScore <= 0 {
		return nil, fmt.Errorf("%w: scorer returned maxScore %d", util.ErrScorerUnavailable, result.MaxScore)
	}
	if result.Score < 0 || result.Score > result.MaxScore {
		return nil, fmt.Errorf("%w: scorer returned score %d out of range 0..%d",
			util.ErrScorerUnavailable, result.Score, result.MaxScore)
	}
	if result.MaxScore != maxScore {
		return nil, fmt.Errorf("%w: scorer maxScore %d does not match question total %d",
			util.ErrScorerUnavailable, result.MaxScore, maxScore)
	}

	graded := make(map[uint]bool, len(result.QuestionGrades))
	for _, g := range result.QuestionGrades {
		graded[g.QuestionID] = true
	}
	for _, q := range req.Questions {
		if !graded[q.ID] {
			return nil, fmt.Errorf("%w: scorer response missing grade for question %d",
				util.ErrScorerUnavailable, q.ID)
		}
	}

	return &result, nil
}

type GenerateQuizRequest struct {
	Topic         string               `json:"topic"`
	QuestionCount int                  `json:"questionCount"`
	Difficulty    string               `json:"difficulty"`
	Types         []model.QuestionType `json:"types"`
}

type GeneratedQuestion struct {
	Type          model.QuestionType `json:"type"`
	Prompt        string             `json:"prompt"`
	Options       []string           `json:"options"`
	CorrectAnswer string             `json:"correctAnswer"`
	Explanation   string             `json:"explanation"`
	Points        int                `json:"points"`
}

type GeneratedQuiz struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Questions   []GeneratedQuestion `json:"questions"`
}

const generateSystemPrompt = "You author quiz drafts for a learning platform. " +
	"Given a topic, a question count, a difficulty and allowed question types, produce a quiz. " +
	"multiple_choice questions need at least 2 options and a correctAnswer matching one option; " +
	"true_false answers are \"true\" or \"false\"; essay questions have no correctAnswer. " +
	"Points are integers from 1 to 10. Respond with a single JSON object and nothing else: " +
	`{"title": string, "description": string, "questions": [{"type": string, "prompt": string, ` +
	`"options": [string], "correctAnswer": string, "explanation": string, "points": int}]}`

// GenerateQuiz asks the same collaborator class to author a draft quiz.
// The caller validates and persists the result as unpublished.
func (s *ScorerService) GenerateQuiz(ctx context.Context, req GenerateQuizRequest) (*GeneratedQuiz, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, util.Validationf("generation topic is required")
	}
	if req.QuestionCount < 1 || req.QuestionCount > 50 {
		return nil, util.Validationf("question count must be between 1 and 50")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	content, err := s.chat(ctx, generateSystemPrompt, string(payload))
	if err != nil {
		return nil, err
	}

	var quiz GeneratedQuiz
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &quiz); err != nil {
		return nil, fmt.Errorf("%w: malformed generation response: %v", util.ErrScorerUnavailable, err)
	}
	if len(quiz.Questions) == 0 {
		return nil, fmt.Errorf("%w: generation returned no questions", util.ErrScorerUnavailable)
	}

	return &quiz, nil
}

func (s *ScorerService) chat(ctx context.Context, system, user string) (string, error) {
	reqBody := chatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrScorerUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", util.ErrScorerUnavailable, resp.StatusCode, string(body))
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrScorerUnavailable, err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("%w: %s", util.ErrScorerUnavailable, result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", util.ErrScorerUnavailable)
	}

	return result.Choices[0].Message.Content, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
