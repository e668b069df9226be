// Package natural turns quick-add text like "Standup tomorrow at 9am" into an
// event draft.
package natural

import (
	"errors"
	"fmt"
	"joincal/src-server/model"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	ErrNoDate  = errors.New("natural: no date or time found")
	ErrNoTitle = errors.New("natural: no title left after removing the date")
)

// DefaultDuration is the length of a timed event when the text gives no end.
const DefaultDuration = time.Hour

// filler words left dangling once the date expression is cut out
var fillers = map[string]struct{}{
	"at": {}, "on": {}, "in": {}, "from": {}, "by": {},
}

type Parser struct {
	when *when.Parser
}

func New() *Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Parser{when: w}
}

// Parse finds the date expression in text, relative to now in loc. The rest
// of the text becomes the title. A result at midnight is an all-day event.
func (p *Parser) Parse(text string, now time.Time, loc *time.Location) (model.EventDraft, error) {
	if loc == nil {
		loc = time.Local
	}
	result, err := p.when.Parse(text, now.In(loc))
	if err != nil {
		return model.EventDraft{}, fmt.Errorf("Parse: %w", err)
	}
	if result == nil {
		return model.EventDraft{}, ErrNoDate
	}

	title := CleanupString(stripFillers(text[:result.Index] + " " + text[result.Index+len(result.Text):]))
	if title == "" {
		return model.EventDraft{}, ErrNoTitle
	}

	start := result.Time.In(loc)
	if start.Hour() == 0 && start.Minute() == 0 {
		day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
		return model.EventDraft{
			Title:  title,
			Start:  model.Moment(day.Format(time.DateOnly)),
			End:    model.Moment(day.AddDate(0, 0, 1).Format(time.DateOnly)),
			AllDay: true,
		}, nil
	}
	return model.EventDraft{
		Title: title,
		Start: model.MomentOf(start),
		End:   model.MomentOf(start.Add(DefaultDuration)),
	}, nil
}

func stripFillers(s string) string {
	words := strings.Fields(s)
	for len(words) > 0 {
		if _, ok := fillers[strings.ToLower(words[len(words)-1])]; !ok {
			break
		}
		words = words[:len(words)-1]
	}
	for len(words) > 0 {
		if _, ok := fillers[strings.ToLower(words[0])]; !ok {
			break
		}
		words = words[1:]
	}
	return strings.Join(words, " ")
}

// strips spaces, uppercase first letter of each word, remove trailing period
func CleanupString(s string) string {
	s = strings.TrimSpace(s)
	s = cases.Title(language.English).String(s)
	s = strings.TrimSuffix(s, ".")
	return s
}
