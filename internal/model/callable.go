package model

import (
	"strings"

	"presto/internal/ai"
	"presto/internal/quality"
	"presto/internal/stt"
)

// CallableRequest is the {"data": ...} envelope sent by the mobile SDK.
type CallableRequest[T any] struct {
	Data T `json:"data"`
}

// ProcessAudioRequest is the input of microIaProcessAudio.
type ProcessAudioRequest struct {
	StoragePath  string `json:"storagePath" binding:"required"`
	LanguageCode string `json:"languageCode" binding:"omitempty,max=35"`
}

// DraftRequest is the input of generateOfferDraft.
type DraftRequest struct {
	Hint     string `json:"hint" binding:"required"`
	City     string `json:"city"`
	Category string `json:"category"`
	Lang     string `json:"lang" binding:"omitempty,max=35"`
}

// Input converts the request for the drafting service.
func (r DraftRequest) Input() ai.DraftInput {
	return ai.DraftInput{
		Hint:     strings.TrimSpace(r.Hint),
		City:     r.City,
		Category: r.Category,
		Lang:     r.Lang,
	}
}

// TranscribeDraftRequest is the input of transcribeAndDraftOffer. Older app
// builds send gcsUri instead of storagePath.
type TranscribeDraftRequest struct {
	StoragePath  string `json:"storagePath"`
	GCSURI       string `json:"gcsUri"`
	LanguageCode string `json:"languageCode" binding:"omitempty,max=35"`
	Category     string `json:"category"`
	City         string `json:"city"`
}

// Path returns the audio reference, whichever field carried it.
func (r TranscribeDraftRequest) Path() string {
	if p := strings.TrimSpace(r.StoragePath); p != "" {
		return p
	}
	return strings.TrimSpace(r.GCSURI)
}

// TranscribeDraftResponse is the output of transcribeAndDraftOffer.
type TranscribeDraftResponse struct {
	Transcript string             `json:"transcript"`
	ModeUsed   stt.Strategy       `json:"modeUsed"`
	Quality    quality.Assessment `json:"quality"`
	Draft      *ai.OfferDraft     `json:"draft"`
}
