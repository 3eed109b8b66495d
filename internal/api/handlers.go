package api

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"presto/internal/ai"
	"presto/internal/auth"
	"presto/internal/logger"
	"presto/internal/model"
	"presto/internal/router"
	"presto/internal/utils"
)

// AudioProcessor runs the transcription router.
type AudioProcessor interface {
	Process(ctx context.Context, audioRef, languageOverride string) (*router.Result, error)
}

// Drafter writes offer drafts.
type Drafter interface {
	GenerateOfferDraft(ctx context.Context, in ai.DraftInput) (*ai.OfferDraft, error)
	DraftFromTranscript(ctx context.Context, transcript, city, category string) (*ai.OfferDraft, error)
}

// Handler holds the collaborators shared by every request.
type Handler struct {
	processor AudioProcessor
	drafter   Drafter
	verifier  *auth.Verifier
	timeout   time.Duration
	root      zerolog.Logger
	log       zerolog.Logger
}

// NewHandler creates the handler. A nil verifier disables token checks, in
// which case authenticated functions reject every caller.
func NewHandler(processor AudioProcessor, drafter Drafter, verifier *auth.Verifier, timeout time.Duration, log zerolog.Logger) *Handler {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Handler{
		processor: processor,
		drafter:   drafter,
		verifier:  verifier,
		timeout:   timeout,
		root:      log,
		log:       logger.Component(log, "api"),
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.Use(RequestLogger(h.root), CORS())

	// Health check
	r.GET("/health", h.healthCheck)

	callable := r.Group("/", Authenticate(h.verifier))
	{
		callable.POST("/microIaProcessAudio", h.processAudio)
		callable.POST("/generateOfferDraft", h.generateOfferDraft)
		callable.POST("/transcribeAndDraftOffer", RequireUser(), h.transcribeAndDraftOffer)
	}
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"service": "presto-microia",
	})
}

// processAudio handles POST /microIaProcessAudio
func (h *Handler) processAudio(c *gin.Context) {
	var req model.CallableRequest[model.ProcessAudioRequest]
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Data.StoragePath) == "" {
		utils.Error(c, utils.StatusInvalidArgument, "storagePath manquant ou invalide.")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	res, err := h.processor.Process(ctx, strings.TrimSpace(req.Data.StoragePath), strings.TrimSpace(req.Data.LanguageCode))
	if err != nil {
		status, msg := routerStatus(err)
		utils.Error(c, status, msg)
		return
	}
	utils.Success(c, res)
}

// generateOfferDraft handles POST /generateOfferDraft
func (h *Handler) generateOfferDraft(c *gin.Context) {
	var req model.CallableRequest[model.DraftRequest]
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Data.Hint) == "" {
		utils.Error(c, utils.StatusInvalidArgument, `Le paramètre "hint" est requis`)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	draft, err := h.drafter.GenerateOfferDraft(ctx, req.Data.Input())
	if err != nil {
		log := logger.Scoped(ctx, h.log, "api")
		log.Error().Err(err).Msg("offer draft failed")
		status, msg := draftStatus(err)
		utils.Error(c, status, msg)
		return
	}
	utils.Success(c, draft)
}

// transcribeAndDraftOffer handles POST /transcribeAndDraftOffer
func (h *Handler) transcribeAndDraftOffer(c *gin.Context) {
	var req model.CallableRequest[model.TranscribeDraftRequest]
	if err := c.ShouldBindJSON(&req); err != nil || req.Data.Path() == "" {
		utils.Error(c, utils.StatusInvalidArgument, "gcsUri manquant.")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()
	log := logger.Scoped(ctx, h.log, "api")

	res, err := h.processor.Process(ctx, req.Data.Path(), strings.TrimSpace(req.Data.LanguageCode))
	if err != nil {
		status, msg := routerStatus(err)
		utils.Error(c, status, msg)
		return
	}

	transcript := strings.TrimSpace(res.Text)
	if transcript == "" {
		utils.Error(c, utils.StatusFailedPrecondition, "Transcription vide (audio trop court/bruité ?).")
		return
	}

	draft, err := h.drafter.DraftFromTranscript(ctx, transcript, req.Data.City, req.Data.Category)
	if err != nil {
		log.Error().Err(err).Msg("draft from transcript failed")
		status, msg := draftStatus(err)
		utils.Error(c, status, msg)
		return
	}

	if claims := auth.ClaimsFrom(ctx); claims != nil {
		log.Info().Str("uid", claims.UID()).Str("mode_used", string(res.ModeUsed)).Msg("transcript drafted")
	}
	utils.Success(c, model.TranscribeDraftResponse{
		Transcript: transcript,
		ModeUsed:   res.ModeUsed,
		Quality:    res.Quality,
		Draft:      draft,
	})
}
