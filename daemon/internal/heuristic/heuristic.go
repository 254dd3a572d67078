// Package heuristic implements the daemon's dependency-free fallback
// predictor: two small static phrase tables, one per language, with no
// external calls and no failure mode.
package heuristic

import (
	"context"
	"strings"

	"github.com/aetherime/aetherime/internal/predictor"
	"github.com/aetherime/aetherime/pkg/protocol"
)

const (
	confidenceNext = 0.42
	confidenceFim  = 0.38
)

// zhNextTriggers maps a trailing-prefix trigger to its continuation.
// Checked in order; the first key the (right-trimmed) prefix ends with wins.
var zhNextTriggers = []struct{ key, continuation string }{
	{"你好", "，很高兴见到你"},
	{"谢谢", "你，不客气"},
	{"请问", "有什么可以帮您的"},
}

var zhNextSpecialEndings = map[rune]string{
	'我': "们",
	'想': "要",
}

var enNextTriggers = []struct{ key, continuation string }{
	{"thank you for", " your help"},
	{"i would like to", " say"},
	{"please let me know", " if you have questions"},
}

// zhCanned and enCanned are appended after the matched continuation to
// round out the candidate list.
var zhCanned = [2]string{"，祝好", "，谢谢"}
var enCanned = [2]string{", thanks", ", best regards"}

type fimPattern struct {
	prefixEnds   string
	suffixStarts string
	continuation string
}

var zhFimPatterns = []fimPattern{
	{"我", "吃饭", "们一起去"},
	{"这个", "怎么样", "方案"},
	{"明天", "见", "下午三点"},
	{"请", "查收", "查阅附件并"},
}

var enFimPatterns = []fimPattern{
	{"let me", "know", " "},
	{"i think we should", "soon", " do this"},
}

// Engine is the heuristic PredictorEngine. It never returns an error.
type Engine struct{}

// New returns a heuristic predictor.
func New() *Engine {
	return &Engine{}
}

// Predict implements predictor.Engine. It never returns an error and
// ignores ctx: it performs no I/O and never blocks.
func (e *Engine) Predict(_ context.Context, req protocol.PredictRequest, mode protocol.Mode) (predictor.Draft, error) {
	if mode == protocol.ModeFim {
		return e.predictFim(req), nil
	}
	return e.predictNext(req), nil
}

func (e *Engine) predictNext(req protocol.PredictRequest) predictor.Draft {
	var ghost string

	if req.Language == protocol.LanguageEn {
		lower := strings.ToLower(req.Prefix)
		for _, t := range enNextTriggers {
			if strings.HasSuffix(lower, t.key) {
				ghost = t.continuation
				break
			}
		}
	} else {
		trimmed := strings.TrimRight(req.Prefix, " \t\n")
		for _, t := range zhNextTriggers {
			if strings.HasSuffix(trimmed, t.key) {
				ghost = t.continuation
				break
			}
		}
		if ghost == "" && trimmed != "" {
			last := []rune(trimmed)[len([]rune(trimmed))-1]
			if cont, ok := zhNextSpecialEndings[last]; ok {
				ghost = cont
			}
		}
	}

	if ghost == "" {
		return predictor.Draft{Candidates: []string{}, Confidence: confidenceNext, Source: protocol.SourceLocalNext}
	}

	canned := zhCanned
	if req.Language == protocol.LanguageEn {
		canned = enCanned
	}
	return predictor.Draft{
		GhostText:  ghost,
		Candidates: []string{ghost, canned[0], canned[1]},
		Confidence: confidenceNext,
		Source:     protocol.SourceLocalNext,
	}
}

func (e *Engine) predictFim(req protocol.PredictRequest) predictor.Draft {
	patterns := zhFimPatterns
	fallback := "先"
	if req.Language == protocol.LanguageEn {
		patterns = enFimPatterns
		fallback = " "
	}

	ghost := fallback
	for _, p := range patterns {
		if strings.HasSuffix(req.Prefix, p.prefixEnds) && strings.HasPrefix(req.Suffix, p.suffixStarts) {
			ghost = p.continuation
			break
		}
	}

	var candidates []string
	if strings.TrimSpace(ghost) != "" {
		candidates = []string{ghost}
	} else {
		candidates = []string{}
	}

	return predictor.Draft{
		GhostText:  ghost,
		Candidates: candidates,
		Confidence: confidenceFim,
		Source:     protocol.SourceLocalFim,
	}
}
