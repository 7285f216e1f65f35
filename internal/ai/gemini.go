// README: Gemini provider for free-form travel Q&A and review synthesis.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiModel = "gemini-2.0-flash"

// GeminiProvider implements the assistant's text generation using Google's
// Gemini models.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiProvider initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini: missing api key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(geminiModel)
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(800)

	return &GeminiProvider{client: client, model: model}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	p.client.Close()
}

// Generate sends a raw prompt and returns the reply text.
func (p *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response candidates from Gemini")
	}

	var parts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok && strings.TrimSpace(string(txt)) != "" {
			parts = append(parts, string(txt))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("gemini returned empty text parts")
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}

// AnswerTravelQuestion answers a free-form question as a Thai travel
// assistant. Failures degrade to an inline Thai error string, never an error.
func (p *GeminiProvider) AnswerTravelQuestion(ctx context.Context, question string) string {
	prompt := "You are a helpful and friendly travel assistant in Thailand. " +
		"Please answer the following user query concisely in Thai language.\n\n" +
		"User Query: " + question
	reply, err := p.Generate(ctx, prompt)
	if err != nil {
		return fmt.Sprintf("ขออภัยครับ เกิดข้อผิดพลาดในการสื่อสารกับ AI: %v", err)
	}
	return reply
}

// SummarizePlaceReviews synthesizes a pros/cons review for a place. With
// review snippets it summarizes them; without, it extrapolates from the
// place's categories and rating. Failures degrade to a Thai error string.
func (p *GeminiProvider) SummarizePlaceReviews(ctx context.Context, placeName string, reviews []string, rating float32, categories []string) string {
	var prompt string
	if len(reviews) > 0 {
		if len(reviews) > 5 {
			reviews = reviews[:5]
		}
		prompt = fmt.Sprintf(`วิเคราะห์รีวิวของสถานที่ "%s" ในประเทศไทย

รีวิวจากผู้ใช้:
%s

กรุณาสรุปเป็น:
✅ ข้อดี (2-3 ข้อ)
❌ ข้อเสีย (1-2 ข้อ)
💡 คำแนะนำสำหรับนักท่องเที่ยว

ใช้ภาษาไทยที่เป็นกันเอง ความยาวไม่เกิน 200 คำ`, placeName, strings.Join(reviews, "\n"))
	} else {
		catText := "สถานที่ทั่วไป"
		if len(categories) > 0 {
			catText = strings.Join(categories, ", ")
		}
		ratingText := "ไม่มีเรตติ้ง"
		if rating > 0 {
			ratingText = fmt.Sprintf("เรตติ้ง %.1f/5.0 ดาว", rating)
		}
		prompt = fmt.Sprintf(`สถานที่ "%s" ในประเทศไทย
ประเภท: %s
คะแนน: %s

ยังไม่มีรีวิวจากผู้ใช้ กรุณาคาดการณ์:
✅ ข้อดีที่น่าจะพบ (2-3 ข้อ)
❌ ข้อเสียที่ควรระวัง (1-2 ข้อ)
💡 คำแนะนำสำหรับนักท่องเที่ยว

อ้างอิงจากประเภทสถานที่และคะแนน ใช้ภาษาไทยเป็นกันเอง ไม่เกิน 200 คำ`, placeName, catText, ratingText)
	}

	summary, err := p.Generate(ctx, prompt)
	if err != nil {
		return fmt.Sprintf("⚠️ เกิดข้อผิดพลาดในการวิเคราะห์รีวิว: %v", err)
	}
	return summary
}
