package stt

import (
	"bytes"

	"github.com/go-audio/wav"
)

const defaultSampleRate = 16000

// googleAudioConfig determines encoding and sample rate for the recognize call.
// AAC containers have no v1 encoding and return an empty encoding.
func googleAudioConfig(audio Audio) (string, int) {
	switch audio.Ext() {
	case "m4a", "mp4", "aac":
		return "", 0
	case "wav":
		if rate := wavSampleRate(audio.Data); rate > 0 {
			return "LINEAR16", rate
		}
		return "LINEAR16", defaultSampleRate
	case "flac":
		return "FLAC", defaultSampleRate
	case "mp3":
		return "MP3", 44100
	case "ogg", "opus":
		return "OGG_OPUS", 48000
	case "webm":
		return "WEBM_OPUS", 48000
	case "amr":
		return "AMR", 8000
	default:
		return "LINEAR16", defaultSampleRate
	}
}

// wavSampleRate reads the sample rate from a RIFF/WAVE header, 0 if invalid.
func wavSampleRate(data []byte) int {
	d := wav.NewDecoder(bytes.NewReader(data))
	d.ReadInfo()
	if d.Err() != nil {
		return 0
	}
	return int(d.SampleRate)
}
