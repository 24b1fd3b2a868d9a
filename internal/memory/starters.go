package memory

import (
	"fmt"
	"math/rand"
)

// StarterGenerator turns a classified berry into a conversational prompt by
// templated random choice. The random source is injected so callers can pin
// the selection in tests.
type StarterGenerator struct {
	rnd *rand.Rand
}

func NewStarterGenerator(rnd *rand.Rand) *StarterGenerator {
	return &StarterGenerator{rnd: rnd}
}

// Generate produces one starter for the berry. Missing detail fields fall
// back to generic phrasing; the result is never empty.
func (g *StarterGenerator) Generate(b Berry) string {
	title := "your plans"
	location := "the store"
	if b.Detail != nil {
		if b.Detail.OriginalTitle != "" {
			title = b.Detail.OriginalTitle
		}
		if b.Detail.Location != "" {
			location = b.Detail.Location
		}
	}

	var candidates []string
	switch b.Context {
	case ContextShopping:
		candidates = []string{
			"How did the shopping trip go? Did you find everything you needed?",
			fmt.Sprintf("I hope the %s wasn't too crowded!", location),
			"Did you remember to get everything on your list?",
		}
	case ContextMeeting:
		candidates = []string{
			"How did your meeting go? Hope it was productive!",
			fmt.Sprintf("Was the %s meeting helpful?", title),
			"Hope your meeting went well earlier!",
		}
	case ContextHealth:
		candidates = []string{
			"How did your appointment go? Everything okay?",
			"Hope your visit went smoothly!",
			"Feeling good after your appointment?",
		}
	case ContextSocial:
		candidates = []string{
			fmt.Sprintf("How was %s? Have a good time?", title),
			"Did you enjoy your outing?",
			"Hope you had a nice time!",
		}
	case ContextWork:
		candidates = []string{
			fmt.Sprintf("How did the %s go?", title),
			"Did you manage to complete everything?",
			"Hope the deadline wasn't too stressful!",
		}
	case ContextTasks:
		candidates = []string{
			fmt.Sprintf("Did you get around to %q?", title),
			"Any tasks left over from earlier?",
		}
	case ContextNotes:
		candidates = []string{
			fmt.Sprintf("Still thinking about your note %q?", title),
			"Want to pick up where your notes left off?",
		}
	default:
		candidates = []string{
			fmt.Sprintf("How did %q go?", title),
			"Everything work out with your plans earlier?",
		}
	}

	return candidates[g.rnd.Intn(len(candidates))]
}
