package resolution

import (
	"regexp"
	"strings"
)

// genericSpeakerPattern matches auto-assigned diarization labels like
// "Speaker 1" or "speaker 12".
var genericSpeakerPattern = regexp.MustCompile(`^speaker\s+\d+$`)

// genericExactLabels are placeholder labels transcript providers emit when
// they cannot attribute a voice.
var genericExactLabels = map[string]struct{}{
	"unknown":     {},
	"guest":       {},
	"participant": {},
}

// IsGenericSpeaker reports whether a speaker label is a placeholder rather
// than a real name. Matching is case-insensitive and ignores surrounding
// whitespace.
func IsGenericSpeaker(label string) bool {
	normalized := strings.ToLower(strings.TrimSpace(label))
	if normalized == "" {
		return true
	}
	if _, ok := genericExactLabels[normalized]; ok {
		return true
	}
	return genericSpeakerPattern.MatchString(normalized)
}

// AnyGenericSpeaker reports whether any label in the list is generic.
func AnyGenericSpeaker(labels []string) bool {
	for _, label := range labels {
		if IsGenericSpeaker(label) {
			return true
		}
	}
	return false
}

// GenericSpeakers returns the subset of labels that are generic, preserving
// input order.
func GenericSpeakers(labels []string) []string {
	var generic []string
	for _, label := range labels {
		if IsGenericSpeaker(label) {
			generic = append(generic, label)
		}
	}
	return generic
}
