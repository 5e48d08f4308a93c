package path

import (
	"time"

	"github.com/trezcool/njia/core/user"
)

// Module difficulties
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Recommendation types
const (
	RecTypeArticle = "article"
	RecTypeVideo   = "video"
	RecTypeCourse  = "course"
	RecTypeOther   = "other"
)

var RecTypes = []string{RecTypeArticle, RecTypeVideo, RecTypeCourse, RecTypeOther}

// LearningModule is one unit of a learning path. Modules arrive wholesale
// from the synthesis call and are stored as-is.
type LearningModule struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	EstimatedTime string   `json:"estimated_time,omitempty"` // free text, eg. "2 weeks"
	Difficulty    string   `json:"difficulty"`               // beginner | intermediate | advanced
	ResourceLinks []string `json:"resource_links"`
	// Prerequisites reference other module ids. Decorative metadata: never
	// validated for existence or acyclicity, never enforced.
	Prerequisites []string `json:"prerequisites"`
	// Completed is derived at read time from the owner's completed modules;
	// it is not stored.
	Completed bool `json:"completed"`
}

// LearningPath is an ordered collection of modules generated for one user
// in one synthesis call. Regeneration always creates a brand-new path.
type LearningPath struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Modules   []LearningModule `json:"modules"`
	CreatedAt time.Time        `json:"created_at"` // UTC
	UpdatedAt time.Time        `json:"updated_at"` // UTC
}

// AnnotateCompleted flags each module completed by the owning user.
func (p *LearningPath) AnnotateCompleted(usr user.User) {
	for i := range p.Modules {
		p.Modules[i].Completed = usr.HasCompleted(p.Modules[i].ID)
	}
}

// ResumeAnalysis is the transient result of the resume analysis call.
// All lists are empty when the user has no resume text on file.
type ResumeAnalysis struct {
	IdentifiedSkills []string `json:"identified_skills"`
	SkillGaps        []string `json:"skill_gaps"`
	SuggestedSkills  []string `json:"suggested_skills"`
}

// Recommendation is a transient per-module resource suggestion; it is
// regenerated on every request, never cached or persisted.
type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
	Type        string `json:"type"` // article | video | course | other
}
