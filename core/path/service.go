package path

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/njia/core"
	"github.com/trezcool/njia/core/user"
)

var (
	// errors
	ErrNotFound       = errors.New("learning path not found")
	ErrModuleNotFound = errors.New("module not found in learning path")
)

type (
	Repository interface {
		CreatePath(ctx context.Context, p LearningPath) (LearningPath, error)
		// QueryPathsByOwner returns all paths owned by userID, newest first.
		QueryPathsByOwner(ctx context.Context, userID string) ([]LearningPath, error)
		// GetPathByID is owner-scoped: a path owned by another user is ErrNotFound.
		GetPathByID(ctx context.Context, id, userID string) (LearningPath, error)
		// DeletePath is owner-scoped: a mismatched owner is ErrNotFound, never
		// a silent success.
		DeletePath(ctx context.Context, id, userID string) error
	}

	Service interface {
		// Generate runs the two-call analysis/synthesis sequence for the
		// user and persists one brand-new LearningPath.
		Generate(ctx context.Context, userID string) (LearningPath, error)
		QueryByOwner(ctx context.Context, userID string) ([]LearningPath, error)
		GetByID(ctx context.Context, id, userID string) (LearningPath, error)
		Delete(ctx context.Context, id, userID string) error
		// Recommend produces transient resource recommendations for one
		// module of one owned path; results are never cached.
		Recommend(ctx context.Context, userID, pathID, moduleID string) ([]Recommendation, error)
	}

	service struct {
		repo    Repository
		usrRepo user.Repository
		gen     core.TextGenerator
		logger  core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrRepo user.Repository, gen core.TextGenerator, logger core.Logger) Service {
	return &service{
		repo:    repo,
		usrRepo: usrRepo,
		gen:     gen,
		logger:  logger,
	}
}

func (svc *service) Generate(ctx context.Context, userID string) (LearningPath, error) {
	usr, err := svc.usrRepo.GetUserByID(ctx, userID)
	if err != nil {
		return LearningPath{}, err
	}

	// the analysis call is skipped entirely without a resume; generation
	// proceeds on empty lists
	analysis := ResumeAnalysis{
		IdentifiedSkills: []string{},
		SkillGaps:        []string{},
		SuggestedSkills:  []string{},
	}
	if core.CleanString(usr.ResumeText) != "" {
		raw, err := svc.gen.GenerateJSON(ctx, resumeAnalysisPrompt(usr))
		if err != nil {
			return LearningPath{}, errors.Wrap(err, "analyzing resume")
		}
		if err = json.Unmarshal(raw, &analysis); err != nil {
			return LearningPath{}, errors.Wrap(core.ErrUpstreamFormat, "unexpected analysis payload shape")
		}
	}

	raw, err := svc.gen.GenerateJSON(ctx, synthesisPrompt(analysis, usr))
	if err != nil {
		return LearningPath{}, errors.Wrap(err, "synthesizing learning path")
	}
	mods, err := decodeModules(raw)
	if err != nil {
		return LearningPath{}, err
	}

	now := time.Now().UTC()
	p := LearningPath{
		ID:        uuid.New().String(),
		UserID:    usr.ID,
		Modules:   mods,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreatePath(ctx, p)
}

func (svc *service) QueryByOwner(ctx context.Context, userID string) ([]LearningPath, error) {
	usr, err := svc.usrRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	paths, err := svc.repo.QueryPathsByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range paths {
		paths[i].AnnotateCompleted(usr)
	}
	return paths, nil
}

func (svc *service) GetByID(ctx context.Context, id, userID string) (LearningPath, error) {
	usr, err := svc.usrRepo.GetUserByID(ctx, userID)
	if err != nil {
		return LearningPath{}, err
	}
	p, err := svc.repo.GetPathByID(ctx, id, userID)
	if err != nil {
		return LearningPath{}, err
	}
	p.AnnotateCompleted(usr)
	return p, nil
}

func (svc *service) Delete(ctx context.Context, id, userID string) error {
	return svc.repo.DeletePath(ctx, id, userID)
}

func (svc *service) Recommend(ctx context.Context, userID, pathID, moduleID string) ([]Recommendation, error) {
	usr, err := svc.usrRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := svc.repo.GetPathByID(ctx, pathID, userID)
	if err != nil {
		return nil, err
	}

	var mod *LearningModule
	for i := range p.Modules {
		if p.Modules[i].ID == moduleID {
			mod = &p.Modules[i]
			break
		}
	}
	if mod == nil {
		return nil, ErrModuleNotFound
	}

	raw, err := svc.gen.GenerateJSON(ctx, recommendationPrompt(*mod, usr))
	if err != nil {
		return nil, errors.Wrap(err, "recommending resources")
	}
	return decodeRecommendations(raw)
}

// decodeModules normalizes the synthesis payload. The upstream model answers
// with either a bare module array or an object wrapping it in a "modules"
// property; both shapes are accepted, anything else aborts generation.
// Downstream code never branches on shape again.
func decodeModules(raw json.RawMessage) ([]LearningModule, error) {
	var mods []LearningModule
	if err := json.Unmarshal(raw, &mods); err == nil && mods != nil {
		return mods, nil
	}

	var wrapped struct {
		Modules []LearningModule `json:"modules"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Modules != nil {
		return wrapped.Modules, nil
	}
	return nil, errors.Wrap(core.ErrUpstreamFormat, "unexpected synthesis payload shape")
}

// decodeRecommendations accepts a bare array or a "recommendations" wrapper,
// and normalizes unknown recommendation types to "other".
func decodeRecommendations(raw json.RawMessage) ([]Recommendation, error) {
	var recs []Recommendation
	if err := json.Unmarshal(raw, &recs); err != nil || recs == nil {
		var wrapped struct {
			Recommendations []Recommendation `json:"recommendations"`
		}
		if err = json.Unmarshal(raw, &wrapped); err != nil || wrapped.Recommendations == nil {
			return nil, errors.Wrap(core.ErrUpstreamFormat, "unexpected recommendations payload shape")
		}
		recs = wrapped.Recommendations
	}

	for i, rec := range recs {
		var known bool
		for _, t := range RecTypes {
			if rec.Type == t {
				known = true
				break
			}
		}
		if !known {
			recs[i].Type = RecTypeOther
		}
	}
	return recs, nil
}
