package path

import (
	"fmt"
	"strings"

	"github.com/trezcool/njia/core/user"
)

// The prompts pin down the exact JSON schema the model must answer with,
// inside a single fenced code block; the AI service extracts and parses that
// block (see services/ai).

func resumeAnalysisPrompt(usr user.User) string {
	var b strings.Builder
	b.WriteString("You are an expert career advisor. Analyze the resume below against the person's stated goals and skills.\n\n")
	fmt.Fprintf(&b, "Stated skills: %s\n", joinOrNone(usr.Skills))
	fmt.Fprintf(&b, "Learning goals: %s\n\n", joinOrNone(usr.LearningGoals))
	b.WriteString("Resume:\n\"\"\"\n")
	b.WriteString(usr.ResumeText)
	b.WriteString("\n\"\"\"\n\n")
	b.WriteString("Respond with exactly one ```json code block containing an object of this shape:\n")
	b.WriteString("{\"identified_skills\": [string], \"skill_gaps\": [string], \"suggested_skills\": [string]}\n")
	b.WriteString("Base everything only on the provided text; do not invent experience.")
	return b.String()
}

func synthesisPrompt(analysis ResumeAnalysis, usr user.User) string {
	var b strings.Builder
	b.WriteString("You are an expert curriculum designer. Create a personalized, ordered learning path.\n\n")
	fmt.Fprintf(&b, "Identified skills: %s\n", joinOrNone(analysis.IdentifiedSkills))
	fmt.Fprintf(&b, "Skill gaps: %s\n", joinOrNone(analysis.SkillGaps))
	fmt.Fprintf(&b, "Suggested skills to learn: %s\n", joinOrNone(analysis.SuggestedSkills))
	fmt.Fprintf(&b, "Preferred learning style: %s\n\n", orNone(usr.LearningStyle))
	b.WriteString("Respond with exactly one ```json code block containing an array of 5 to 8 module objects, ordered from first to last, each of this shape:\n")
	b.WriteString("{\"id\": string, \"title\": string, \"description\": string, \"estimated_time\": string, ")
	b.WriteString("\"difficulty\": \"beginner\"|\"intermediate\"|\"advanced\", \"resource_links\": [string], \"prerequisites\": [string]}\n")
	b.WriteString("Module ids must be short kebab-case slugs; prerequisites reference earlier module ids.")
	return b.String()
}

func recommendationPrompt(mod LearningModule, usr user.User) string {
	var b strings.Builder
	b.WriteString("You are a learning resource curator. Suggest 3 to 5 high-quality resources for the module below.\n\n")
	fmt.Fprintf(&b, "Module: %s\n", mod.Title)
	if mod.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", mod.Description)
	}
	fmt.Fprintf(&b, "Learner's skills: %s\n", joinOrNone(usr.Skills))
	fmt.Fprintf(&b, "Preferred learning style: %s\n\n", orNone(usr.LearningStyle))
	b.WriteString("Respond with exactly one ```json code block containing an array of objects of this shape:\n")
	b.WriteString("{\"title\": string, \"description\": string, \"url\": string, \"type\": \"article\"|\"video\"|\"course\"|\"other\"}")
	return b.String()
}

func joinOrNone(vals []string) string {
	if len(vals) == 0 {
		return "none given"
	}
	return strings.Join(vals, ", ")
}

func orNone(val string) string {
	if val == "" {
		return "none given"
	}
	return val
}
