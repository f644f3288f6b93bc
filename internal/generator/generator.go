// Package generator builds synthetic reading history.
package generator

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/verte-zerg/readlog/internal/model"
)

// Options shapes the generated history.
type Options struct {
	Days     int
	SkipPct  float64
	BaseWPM  float64
	Location *time.Location
}

// BookState is the derived progress of one seeded book.
type BookState struct {
	Progress float64
	LastRead time.Time
}

// Generator produces randomized reading sessions.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Generator.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// eveningHours is where most sessions land.
var eveningHours = []int{7, 8, 12, 13, 19, 20, 21, 22}

// History generates sessions for the days ending on today, ascending by date.
// Sessions are assigned to bookIDs round-robin when any are given.
func (g *Generator) History(opts Options, today time.Time, bookIDs []string) []model.ReadingLogEntry {
	if opts.Days <= 0 {
		return nil
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	base := opts.BaseWPM
	if base <= 0 {
		base = 220
	}
	today = today.In(loc)

	var out []model.ReadingLogEntry
	next := 0
	for i := opts.Days - 1; i >= 0; i-- {
		day := time.Date(today.Year(), today.Month(), today.Day()-i, 0, 0, 0, 0, loc)
		if g.skip(opts.SkipPct) {
			continue
		}
		// Readers speed up slowly over the generated period.
		progress := float64(opts.Days-1-i) / math.Max(1, float64(opts.Days-1))
		sessions := 1 + g.rnd.Intn(2)
		for s := 0; s < sessions; s++ {
			hour := eveningHours[g.rnd.Intn(len(eveningHours))]
			date := day.Add(time.Duration(hour)*time.Hour + time.Duration(g.rnd.Intn(60))*time.Minute)
			if date.After(today) {
				continue
			}
			minutes := 10 + g.rnd.Intn(50)
			wpm := applyJitter(g.rnd, base*(1+0.25*progress), 0.15)
			entry := model.ReadingLogEntry{
				Date:     date,
				Duration: time.Duration(minutes) * time.Minute,
			}
			entry.WordsRead = int(math.Round(wpm * float64(minutes)))
			// Some sessions are logged without a speed measurement.
			if g.rnd.Float64() > 0.1 {
				entry.WordsPerMinute = math.Round(wpm*10) / 10
			}
			if len(bookIDs) > 0 {
				entry.BookID = bookIDs[next%len(bookIDs)]
				next++
			}
			out = append(out, entry)
		}
	}
	sortByDate(out)
	return out
}

// Progress derives each book's progress from the words read in its
// sessions, assuming every book holds wordsPerBook words.
func Progress(entries []model.ReadingLogEntry, wordsPerBook int) map[string]BookState {
	out := map[string]BookState{}
	if wordsPerBook <= 0 {
		return out
	}
	words := map[string]int{}
	for _, entry := range entries {
		if entry.BookID == "" {
			continue
		}
		words[entry.BookID] += entry.WordsRead
		state := out[entry.BookID]
		if entry.Date.After(state.LastRead) {
			state.LastRead = entry.Date
		}
		state.Progress = math.Min(1, float64(words[entry.BookID])/float64(wordsPerBook))
		out[entry.BookID] = state
	}
	return out
}

func (g *Generator) skip(pct float64) bool {
	if pct <= 0 {
		return false
	}
	return g.rnd.Float64() < pct
}

func applyJitter(rnd *rand.Rand, value, spread float64) float64 {
	if spread <= 0 {
		return value
	}
	return value * (1 + (rnd.Float64()*2-1)*spread)
}

func sortByDate(entries []model.ReadingLogEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
}
