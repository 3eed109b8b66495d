package api

import (
	"context"
	"errors"

	"presto/internal/ai"
	"presto/internal/router"
	"presto/internal/utils"
)

// routerStatus maps a router failure to a callable code and message.
func routerStatus(err error) (utils.Status, string) {
	switch router.KindOf(err) {
	case router.KindAudioUnreadable:
		return utils.StatusFailedPrecondition, "Audio illisible ou introuvable."
	case router.KindAllProvidersFailed:
		return utils.StatusUnavailable, "Aucun service de transcription n'a répondu."
	case router.KindTimeout:
		return utils.StatusDeadlineExceeded, "Délai de traitement dépassé."
	case router.KindCanceled:
		return utils.StatusUnavailable, "Requête annulée."
	default:
		return utils.StatusInternal, "Erreur transcription."
	}
}

// draftStatus maps a drafting failure to a callable code and message.
func draftStatus(err error) (utils.Status, string) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return utils.StatusDeadlineExceeded, "Délai de traitement dépassé."
	case errors.Is(err, ai.ErrInvalidDraft):
		return utils.StatusInternal, "Erreur de parsing de la réponse IA"
	default:
		return utils.StatusInternal, "Erreur IA : " + err.Error()
	}
}
