// Package respond turns ranked candidates into a conversational reply. The
// primary path asks the completion provider; the fallback path is fully
// deterministic and makes no external calls, so a reply always exists.
package respond

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/recruitkit/talent-scout/internal/ai"
	"github.com/recruitkit/talent-scout/internal/intent"
	"github.com/recruitkit/talent-scout/internal/logger"
	"github.com/recruitkit/talent-scout/internal/ranking"
)

const (
	// NoMatchMessage is returned whenever there are no candidates to talk
	// about. Fixed text, never generated.
	NoMatchMessage = "I'm sorry, I couldn't find any suitable candidates for your requirements. Could you please try rephrasing your request or provide more specific details about the role you're looking for?"

	// maxPromptCandidates bounds how many candidates the prompt describes.
	maxPromptCandidates = 3

	// maxBioRunes bounds the biography excerpt per candidate in the prompt.
	maxBioRunes = 200
)

const systemPrompt = `You are an AI Talent Assistant specializing in helping recruiters find the perfect candidates for their job openings.

Your capabilities:
- Analyze job requirements and match them with candidate profiles
- Provide detailed insights about candidate skills and experience
- Suggest follow-up questions to refine searches
- Give contextual recommendations based on company culture and requirements

Always be helpful, professional, and provide specific, actionable insights about candidates.`

// Synthesizer produces the assistant's replies.
type Synthesizer struct {
	generator ai.Generator
	logger    *zap.Logger
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(generator ai.Generator, log *zap.Logger) *Synthesizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{generator: generator, logger: log}
}

// Synthesize builds a reply for the query from the intent and ranked
// candidates. It never fails: generation errors degrade to the
// deterministic fallback, and an empty candidate list short-circuits to the
// no-match message without touching the provider.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, in intent.Intent, candidates []ranking.RankedCandidate) string {
	if len(candidates) == 0 {
		return NoMatchMessage
	}

	prompt := buildPrompt(query, in, candidates)

	reply, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		s.logger.Warn("reply generation failed, using fallback",
			zap.Error(err),
			zap.String("query_preview", logger.TruncateForLog(query, 120)),
		)
		return Fallback(query, candidates)
	}

	return strings.TrimSpace(reply)
}

// Fallback deterministically constructs a reply from the top candidate. It
// makes no external calls and cannot fail.
func Fallback(query string, candidates []ranking.RankedCandidate) string {
	if len(candidates) == 0 {
		return NoMatchMessage
	}

	top := candidates[0]
	return fmt.Sprintf("Based on your request for '%s', I found %s as your top match with a %.1f%% match score. They're located in %s and have experience in %s. Would you like me to provide more details about their background or help you refine your search criteria?",
		query, top.Candidate.Name, top.Score*100, top.Candidate.Location, top.Candidate.Skills)
}

func buildPrompt(query string, in intent.Intent, candidates []ranking.RankedCandidate) string {
	var b strings.Builder

	b.WriteString(systemPrompt)
	b.WriteString("\n\nBased on the user's query and the candidate information, provide a helpful, contextual response.\n\n")
	fmt.Fprintf(&b, "User Query: %s\n\n", query)

	b.WriteString("Job Analysis:\n")
	fmt.Fprintf(&b, "- Job Type: %s\n", in.JobType)
	fmt.Fprintf(&b, "- Experience Level: %s\n", in.ExperienceLevel)
	fmt.Fprintf(&b, "- Work Type: %s\n", in.WorkType)
	fmt.Fprintf(&b, "- Location Preference: %s\n", in.LocationPreference)
	fmt.Fprintf(&b, "- Urgency: %s\n", in.Urgency)
	fmt.Fprintf(&b, "- Key Skills: %s\n", strings.Join(in.KeySkills, ", "))
	fmt.Fprintf(&b, "- Company Culture: %s\n\n", in.CompanyCulture)

	b.WriteString("Top Candidates:\n")
	for i, candidate := range candidates {
		if i >= maxPromptCandidates {
			break
		}
		fmt.Fprintf(&b, "Candidate #%d: %s\n", candidate.Rank, candidate.Candidate.Name)
		fmt.Fprintf(&b, "Location: %s\n", candidate.Candidate.Location)
		fmt.Fprintf(&b, "Skills: %s\n", candidate.Candidate.Skills)
		fmt.Fprintf(&b, "Match Score: %.1f%%\n", candidate.Score*100)
		fmt.Fprintf(&b, "Bio: %s\n\n", truncateRunes(candidate.Candidate.Bio, maxBioRunes))
	}

	b.WriteString(`Provide a natural, conversational response that:
1. Acknowledges their specific requirements
2. Highlights the best candidates with relevant details
3. Suggests follow-up questions or refinements
4. Shows understanding of their context and urgency

Keep the response engaging and helpful, around 2-3 sentences for the main response plus candidate highlights.`)

	return b.String()
}

func truncateRunes(s string, limit int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "..."
}
