package mimetypes

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type MIME string

const (
	Unknown   MIME = "unknown"
	TextPlain MIME = "text/plain"

	ApplicationPDF MIME = "application/pdf"

	ImagePNG  MIME = "image/png"
	ImageJPEG MIME = "image/jpeg"
	ImageGIF  MIME = "image/gif"
	ImageWebP MIME = "image/webp"

	AudioMPEG MIME = "audio/mpeg"
	AudioOGG  MIME = "audio/ogg"
	AudioWAV  MIME = "audio/wav"
	AudioWebM MIME = "audio/webm"
	AudioMP4  MIME = "audio/mp4"
)

// Attachments lists the types a chat attachment may carry.
var Attachments = []MIME{
	TextPlain, ApplicationPDF,
	ImagePNG, ImageJPEG, ImageGIF, ImageWebP,
	AudioMPEG, AudioOGG, AudioWAV, AudioWebM, AudioMP4,
}

// Matches compares a detected media type, parameters ignored, with an expected one.
func Matches(detected string, expected MIME) (MIME, bool) {
	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return Unknown, false
	}
	return expected, mt == string(expected)
}

// Detect sniffs the content and returns its media type without parameters.
func Detect(data []byte) MIME {
	detected := mimetype.Detect(data)
	mt, _, err := mime.ParseMediaType(detected.String())
	if err != nil {
		return Unknown
	}
	return normalize(MIME(mt))
}

// IsAllowedAttachment sniffs data and reports whether it may be attached.
func IsAllowedAttachment(data []byte) (MIME, bool) {
	detected := Detect(data)
	for _, allowed := range Attachments {
		if detected == allowed {
			return detected, true
		}
	}
	return detected, false
}

// Sniffers disagree on a few audio aliases, fold them onto one name.
func normalize(m MIME) MIME {
	switch strings.ToLower(string(m)) {
	case "audio/x-wav", "audio/wave":
		return AudioWAV
	case "audio/mp3", "audio/x-mpeg":
		return AudioMPEG
	case "audio/x-m4a":
		return AudioMP4
	default:
		return m
	}
}
