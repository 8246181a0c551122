package session

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/providers/genimg"
)

// Preparer is the image-preparation collaborator: it resizes/letterboxes a
// source for submission and crops a padded result back to the source's
// aspect ratio.
type Preparer interface {
	Prepare(ctx context.Context, sourceURL string, maxDimension int, aspectRatio string) (genimg.PreparedImage, error)
	CropBack(ctx context.Context, resultURL string, width, height int) (string, error)
}

// Orchestrator drives one generation attempt end to end: snapshot, log
// record, collaborator call, and routing the outcome into the status slot,
// the feature stack and the log, guarding against stale-feature overwrites.
type Orchestrator struct {
	logger     zerolog.Logger
	background genimg.BackgroundGenerator
	modelShot  genimg.ModelShotGenerator
	suggester  genimg.PromptSuggester
	prep       Preparer

	maxDimension int
	jobTimeout   time.Duration
}

// OrchestratorOptions wires the orchestrator's collaborators.
type OrchestratorOptions struct {
	Logger       zerolog.Logger
	Background   genimg.BackgroundGenerator
	ModelShot    genimg.ModelShotGenerator
	Suggester    genimg.PromptSuggester
	Preparer     Preparer
	MaxDimension int
	JobTimeout   time.Duration
}

// NewOrchestrator builds an orchestrator with sane defaults.
func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	maxDim := opts.MaxDimension
	if maxDim <= 0 {
		maxDim = 1024
	}
	timeout := opts.JobTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Orchestrator{
		logger:       opts.Logger,
		background:   opts.Background,
		modelShot:    opts.ModelShot,
		suggester:    opts.Suggester,
		prep:         opts.Preparer,
		maxDimension: maxDim,
		jobTimeout:   timeout,
	}
}

// job is one generation attempt. The feature key is captured at submission
// and routes results into the right slot no matter what the user views later.
type job struct {
	id       int64
	key      domain.FeatureKey
	snapshot domain.SettingsSnapshot
}

// Generate starts a generation for the session's active feature. It returns
// the log record id, or a precondition error when the feature is busy or a
// required input is missing; refusals leave the session untouched.
func (o *Orchestrator) Generate(ctx context.Context, s *Session) (int64, error) {
	j, err := o.submit(s)
	if err != nil {
		return 0, err
	}
	go o.execute(s, j)
	return j.id, nil
}

// submit performs the Idle -> Submitted transition atomically.
func (o *Orchestrator) submit(s *Session) (job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.activeFeatureLocked()
	if s.status.Busy(key) {
		return job{}, domain.ErrFeatureBusy
	}
	snap, err := s.snapshotLocked()
	if err != nil {
		return job{}, err
	}
	if err := validateInputs(key, snap); err != nil {
		return job{}, err
	}

	rec := s.log.Append(key, snap)
	// A fresh attempt starts clean: a failure message left by the previous
	// job must not survive into the new one's terminal state.
	s.status.ClearError(key)
	s.status.SetPhase(key, PhaseGenerating)
	// The record's feature is the active feature by construction here, so the
	// new placeholder may take the explicit selection without stealing focus.
	s.selected = rec.ID

	o.logger.Debug().Str("session_id", s.ID).Str("feature", string(key)).
		Int64("job_id", rec.ID).Msg("generation submitted")
	return job{id: rec.ID, key: key, snapshot: snap}, nil
}

// snapshotLocked freezes the controls plus source references. The product
// image is required in every mode.
func (s *Session) snapshotLocked() (domain.SettingsSnapshot, error) {
	if s.product == nil {
		return domain.SettingsSnapshot{}, domain.ErrMissingProductImage
	}
	snap := domain.SettingsSnapshot{
		Settings:        s.settings,
		ProductImageURL: s.product.URL,
	}
	if s.model != nil {
		snap.ModelImageURL = s.model.URL
	}
	return snap, nil
}

func validateInputs(key domain.FeatureKey, snap domain.SettingsSnapshot) error {
	switch key {
	case domain.FeatureAIModelAI:
		if strings.TrimSpace(snap.ModelPrompt) == "" {
			return domain.ErrMissingPrompt
		}
	case domain.FeatureAIModelCustom:
		if snap.ModelImageURL == "" {
			return domain.ErrMissingModelImage
		}
		if strings.TrimSpace(snap.CustomPrompt) == "" {
			return domain.ErrMissingPrompt
		}
	}
	return nil
}

// execute runs the collaborator call and applies the terminal transition.
// Detached from the submitting request's context: there is no cancellation,
// a job always runs to success or failure.
func (o *Orchestrator) execute(s *Session, j job) {
	ctx, cancel := context.WithTimeout(context.Background(), o.jobTimeout)
	defer cancel()

	img, err := o.invoke(ctx, s, j)
	if err != nil {
		o.fail(s, j, err)
		return
	}
	o.succeed(s, j, img)
}

func (o *Orchestrator) invoke(ctx context.Context, s *Session, j job) (domain.ImageResult, error) {
	product, err := o.prep.Prepare(ctx, j.snapshot.ProductImageURL, o.maxDimension, j.snapshot.AspectRatio)
	if err != nil {
		return domain.ImageResult{}, err
	}

	var resultURL string
	switch j.key {
	case domain.FeatureAIModelAI, domain.FeatureAIModelCustom:
		req := genimg.ModelShotRequest{
			Prompt:      j.snapshot.PromptFor(j.key),
			Gender:      string(j.snapshot.Gender),
			Style:       j.snapshot.Style,
			Composition: j.snapshot.Composition,
			Lighting:    j.snapshot.Lighting,
			Enhancer:    j.key == domain.FeatureAIModelAI && j.snapshot.ModelEnhancer || j.key == domain.FeatureAIModelCustom && j.snapshot.CustomEnhancer,
			Product:     product,
		}
		if j.key == domain.FeatureAIModelCustom {
			// The second source starts processing here; the phase shift is a
			// design-visible sub-state, not a label.
			s.markBlending(j.key, j.id)
			model, err := o.prep.Prepare(ctx, j.snapshot.ModelImageURL, o.maxDimension, j.snapshot.AspectRatio)
			if err != nil {
				return domain.ImageResult{}, err
			}
			req.Model = &model
		}
		resultURL, err = o.modelShot.GenerateModelShot(ctx, req)
	default:
		req := genimg.BackgroundRequest{
			Product:     product,
			Kind:        backgroundKind(j.key),
			Color:       j.snapshot.BackgroundColor,
			ScenePrompt: j.snapshot.ScenePrompt,
			AspectRatio: j.snapshot.AspectRatio,
			Enhancer:    j.snapshot.SceneEnhancer,
		}
		resultURL, err = o.background.GenerateBackground(ctx, req)
		// Scene results keep the generated framing; the color and transparent
		// paths restore the product's own aspect ratio.
		if err == nil && j.key != domain.FeatureBackgroundScene {
			resultURL, err = o.prep.CropBack(ctx, resultURL, product.OriginalWidth, product.OriginalHeight)
		}
	}
	if err != nil {
		return domain.ImageResult{}, err
	}
	return resultFromURL(resultURL, product), nil
}

func backgroundKind(key domain.FeatureKey) genimg.BackgroundKind {
	switch key {
	case domain.FeatureBackgroundScene:
		return genimg.BackgroundScene
	case domain.FeatureBackgroundTransparent:
		return genimg.BackgroundTransparent
	default:
		return genimg.BackgroundColor
	}
}

func resultFromURL(url string, product genimg.PreparedImage) domain.ImageResult {
	return domain.ImageResult{
		URL:    url,
		MIME:   "image/png",
		Width:  product.OriginalWidth,
		Height: product.OriginalHeight,
	}
}

// markBlending flips the feature into the blending phase, unless the job's
// record vanished under a reset in the meantime.
func (s *Session) markBlending(key domain.FeatureKey, jobID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.log.Find(jobID) == nil {
		return
	}
	s.status.SetPhase(key, PhaseBlending)
}

// succeed applies the Submitted -> Succeeded transition. The active feature
// key is re-read here, at completion time; the job's own captured key routes
// the result, the fresh key decides only what the user gets to see.
func (o *Orchestrator) succeed(s *Session, j job, img domain.ImageResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.log.Find(j.id) == nil {
		// Stale completion: the session was reset or the placeholder deleted
		// while the call was in flight. Drop the result, just free the slot.
		s.status.SetPhase(j.key, PhaseNone)
		o.logger.Debug().Str("session_id", s.ID).Int64("job_id", j.id).
			Msg("late completion ignored, record gone")
		return
	}

	s.stacks.Push(j.key, img)
	s.log.Complete(j.id, img)
	s.status.SetPhase(j.key, PhaseNone)

	if s.activeFeatureLocked() == j.key {
		s.selected = j.id
	} else {
		s.notifications[j.key] = true
	}
	o.logger.Info().Str("session_id", s.ID).Str("feature", string(j.key)).
		Int64("job_id", j.id).Msg("generation succeeded")
}

// fail applies the Submitted -> Failed transition: the placeholder record is
// removed and the message lands in the feature's status slot. Stacks are
// never touched by failures.
func (o *Orchestrator) fail(s *Session, j job, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.log.Find(j.id) == nil {
		s.status.SetPhase(j.key, PhaseNone)
		return
	}
	s.log.Fail(j.id)
	if s.selected == j.id {
		s.selected = 0
	}
	s.status.SetError(j.key, err.Error())
	o.logger.Warn().Str("session_id", s.ID).Str("feature", string(j.key)).
		Int64("job_id", j.id).Err(err).Msg("generation failed")
}

// SuggestPrompt asks the suggestion collaborator for prompt text and writes
// it into the active feature's prompt field. Tracked by its own per-feature
// flag, independent of the generation status slots.
func (o *Orchestrator) SuggestPrompt(ctx context.Context, s *Session) (string, error) {
	s.mu.Lock()
	key := s.activeFeatureLocked()
	if s.suggesting[key] {
		s.mu.Unlock()
		return "", domain.ErrFeatureBusy
	}
	if s.product == nil {
		s.mu.Unlock()
		return "", domain.ErrMissingProductImage
	}
	productURL := s.product.URL
	var modelURL string
	if key == domain.FeatureAIModelCustom {
		if s.model == nil {
			s.mu.Unlock()
			return "", domain.ErrMissingModelImage
		}
		modelURL = s.model.URL
	}
	aspect := s.settings.AspectRatio
	s.suggesting[key] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.suggesting, key)
		s.mu.Unlock()
	}()

	product, err := o.prep.Prepare(ctx, productURL, o.maxDimension, aspect)
	if err != nil {
		return "", err
	}
	req := genimg.SuggestRequest{Product: product, Mode: suggestMode(key)}
	if modelURL != "" {
		model, err := o.prep.Prepare(ctx, modelURL, o.maxDimension, aspect)
		if err != nil {
			return "", err
		}
		req.Model = &model
	}
	text, err := o.suggester.SuggestPrompt(ctx, req)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	switch key {
	case domain.FeatureAIModelAI:
		s.settings.ModelPrompt = text
	case domain.FeatureAIModelCustom:
		s.settings.CustomPrompt = text
	default:
		s.settings.ScenePrompt = text
	}
	s.mu.Unlock()
	return text, nil
}

func suggestMode(key domain.FeatureKey) string {
	if key.IsBackground() {
		return "background"
	}
	return "model-shot"
}
