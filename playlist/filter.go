package playlist

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// FadeKind distinguishes the ramp direction.
type FadeKind string

const (
	FadeIn  FadeKind = "in"
	FadeOut FadeKind = "out"
)

// FadeStage is one audio fade ramp.
type FadeStage struct {
	Kind     FadeKind
	Start    float64
	Duration float64
}

// Filter renders the stage as an engine audio filter.
func (s FadeStage) Filter() string {
	if s.Kind == FadeIn {
		return fmt.Sprintf("lavfi=[afade=t=in:st=0:d=%f]", s.Duration)
	}
	return fmt.Sprintf("lavfi=[afade=t=out:st=%f:d=%f]", s.Start, s.Duration)
}

// Stages returns the fade ramps for item: at most one in, ramping from the
// start, and one out, ending at the item's end. A fade-out is only possible
// when the duration is known and longer than the ramp.
func Stages(item *Item) []FadeStage {
	var stages []FadeStage
	if item.FadeInEnabled && item.FadeIn > 0 {
		stages = append(stages, FadeStage{Kind: FadeIn, Start: 0, Duration: item.FadeIn})
	}
	if d := item.Duration(); item.FadeOutEnabled && item.FadeOut > 0 && item.FadeOut < d {
		stages = append(stages, FadeStage{Kind: FadeOut, Start: d - item.FadeOut, Duration: item.FadeOut})
	}
	return stages
}

// FilterChain is the value for the engine's audio filter property. An empty
// chain clears any filter set earlier.
func FilterChain(item *Item) string {
	return strings.Join(lo.Map(Stages(item), func(s FadeStage, _ int) string {
		return s.Filter()
	}), ",")
}
