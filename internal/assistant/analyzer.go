package assistant

import "strings"

// Decision is the outcome of query analysis: which context sources to
// pull before handing the query to the LLM.
type Decision struct {
	UseOCR    bool
	UseWeb    bool
	Reasoning string
}

// Keyword sets for query routing. Matching is per word, lowercased.
var (
	screenKeywords = wordSet(
		"screen", "display", "window", "application", "app", "interface", "ui",
		"button", "menu", "dialog", "form", "screenshot", "tab",
		"visible", "showing", "displayed", "open", "reading",
		"click", "select", "scroll", "see",
		"this", "that", "these", "those", "here",
	)

	webKeywords = wordSet(
		"latest", "recent", "today", "news", "update", "trending",
		"price", "stock", "market", "weather", "forecast",
		"search", "research", "compare", "review", "tutorial",
		"recommendations", "alternatives",
	)

	conversationalKeywords = wordSet(
		"hello", "hi", "hey", "thanks", "please", "sorry",
		"goodbye", "bye", "welcome",
	)
)

// decide picks context sources for a query. Greetings take nothing,
// screen-referencing queries take OCR, time-sensitive or research
// queries take web search. Ambiguous queries default to OCR only when
// live capture is already feeding the transcript.
func decide(query string, liveCapture bool) Decision {
	words := strings.Fields(strings.ToLower(query))

	var screen, web, conversational int
	for _, w := range words {
		w = strings.Trim(w, ".,!?\"'()")
		if screenKeywords[w] {
			screen++
		}
		if webKeywords[w] {
			web++
		}
		if conversationalKeywords[w] {
			conversational++
		}
	}

	if conversational > 0 && screen == 0 && web == 0 {
		return Decision{Reasoning: "conversational query, no context needed"}
	}

	d := Decision{
		UseOCR: screen > 0,
		UseWeb: web > 0,
	}
	if !d.UseOCR && !d.UseWeb {
		// No signal either way. Cheap screen context if it is already
		// flowing, nothing otherwise.
		d.UseOCR = liveCapture
		d.Reasoning = "no keyword signal"
		return d
	}

	switch {
	case d.UseOCR && d.UseWeb:
		d.Reasoning = "query references both the screen and external information"
	case d.UseOCR:
		d.Reasoning = "query references on-screen content"
	default:
		d.Reasoning = "query needs external information"
	}
	return d
}

func wordSet(words ...string) map[string]bool {
	s := make(map[string]bool, len(words))
	for _, w := range words {
		s[w] = true
	}
	return s
}
