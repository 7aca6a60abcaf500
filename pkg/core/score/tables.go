package score

import (
	"fmt"
	"sort"

	"github.com/angelospk/subfinder/pkg/core/matches"
	"github.com/angelospk/subfinder/pkg/core/video"
)

// AuxiliaryWeight is assigned to the tie-breaking match types that are not
// part of the equation systems. It is tunable but must stay at or below the
// smallest solved weight.
const AuxiliaryWeight = 1

var auxiliary = []string{matches.HearingImpaired, matches.ForeignOnly, matches.Country, matches.StreamingService}

// EpisodeEquations relate the episode match weights.
var EpisodeEquations = []Equation{
	Eq(matches.Hash, Sum(matches.Resolution, matches.VideoCodec, matches.AudioCodec, matches.Series, matches.Season, matches.Episode, matches.ReleaseGroup)...),
	Eq(matches.Series, Sum(matches.Resolution, matches.VideoCodec, matches.AudioCodec, matches.Season, matches.Episode, matches.ReleaseGroup)...),
	Eq(matches.TvdbID, Sym(matches.Series)),
	Eq(matches.Season, append(Sum(matches.Resolution, matches.VideoCodec, matches.AudioCodec), Const(1))...),
	Eq(matches.ImdbID, Sum(matches.Series, matches.Season, matches.Episode)...),
	Eq(matches.Resolution, Sym(matches.VideoCodec)),
	Eq(matches.VideoCodec, Term{Coef: 2, Symbol: matches.AudioCodec}),
	Eq(matches.Title, Sum(matches.Season, matches.Episode)...),
	Eq(matches.Season, Sym(matches.Episode)),
	Eq(matches.ReleaseGroup, Sym(matches.Season)),
	Eq(matches.AudioCodec, Const(1)),
}

// MovieEquations relate the movie match weights.
var MovieEquations = []Equation{
	Eq(matches.Hash, Sum(matches.Resolution, matches.VideoCodec, matches.AudioCodec, matches.Title, matches.Year, matches.ReleaseGroup)...),
	Eq(matches.ImdbID, Sym(matches.Hash)),
	Eq(matches.Resolution, Sym(matches.VideoCodec)),
	Eq(matches.VideoCodec, Term{Coef: 2, Symbol: matches.AudioCodec}),
	Eq(matches.Title, append(Sum(matches.Resolution, matches.VideoCodec, matches.AudioCodec, matches.Year), Const(1))...),
	Eq(matches.ReleaseGroup, append(Sum(matches.Resolution, matches.VideoCodec, matches.AudioCodec), Const(1))...),
	Eq(matches.Year, Sym(matches.ReleaseGroup), Const(1)),
	Eq(matches.AudioCodec, Const(1)),
}

// Table maps match names to weights. The zero Table scores everything 0.
type Table struct {
	weights map[string]int
}

func newTable(equations []Equation) Table {
	w, err := Solve(equations)
	if err != nil {
		panic(fmt.Sprintf("score: weight table: %v", err))
	}
	for _, name := range auxiliary {
		if _, ok := w[name]; !ok {
			w[name] = AuxiliaryWeight
		}
	}
	return Table{weights: w}
}

// Weight returns the weight of a match name, 0 when unknown.
func (t Table) Weight(name string) int { return t.weights[name] }

// Max is the hash weight, the best possible score.
func (t Table) Max() int { return t.weights[matches.Hash] }

// Names returns the weighted match names in lexical order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t.weights))
	for n := range t.weights {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Map returns a copy of the weights.
func (t Table) Map() map[string]int {
	out := make(map[string]int, len(t.weights))
	for k, v := range t.weights {
		out[k] = v
	}
	return out
}

var (
	episodeTable = newTable(EpisodeEquations)
	movieTable   = newTable(MovieEquations)
)

// Episodes returns the episode weight table.
func Episodes() Table { return episodeTable }

// Movies returns the movie weight table.
func Movies() Table { return movieTable }

// For returns the table matching the video kind.
func For(kind video.Kind) Table {
	if kind == video.KindEpisode {
		return episodeTable
	}
	return movieTable
}
