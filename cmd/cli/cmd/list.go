package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/angelospk/subfinder"
	"github.com/angelospk/subfinder/pkg/core/score"
	"github.com/angelospk/subfinder/pkg/core/subtitle"
	"github.com/angelospk/subfinder/pkg/core/video"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type listFlags struct {
	commonFlags
	hearingImpaired string
	foreignOnly     string
	limit           int
}

func newListCmd() *cobra.Command {
	f := &listFlags{}
	cmd := &cobra.Command{
		Use:   "list PATH...",
		Short: "List and score subtitle candidates without downloading",
		Long: `Scans the given files and directories for videos and prints the subtitles
every provider offers for them, best score first.

Examples:
  subfinder list -l en Inception.2010.1080p.BluRay.x264-SPARKS.mkv
  subfinder list -l en,fr --limit 5 ~/Videos/Series`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args, f)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.hearingImpaired, "hearing-impaired", "", "Hearing impaired subtitles: prefer, disfavor or indifferent")
	cmd.Flags().StringVar(&f.foreignOnly, "foreign-only", "", "Foreign only subtitles: prefer, disfavor or indifferent")
	cmd.Flags().IntVarP(&f.limit, "limit", "n", 10, "Candidates shown per video (0 for all)")
	return cmd
}

func runList(cmd *cobra.Command, args []string, f *listFlags) error {
	ctx := cmd.Context()
	langs, err := f.languageSet()
	if err != nil {
		return err
	}
	hi, err := score.ParsePreference(f.hearingImpaired)
	if err != nil {
		return fmt.Errorf("--hearing-impaired: %w", err)
	}
	fo, err := score.ParsePreference(f.foreignOnly)
	if err != nil {
		return fmt.Errorf("--foreign-only: %w", err)
	}
	s, err := newSession(cmd, &f.commonFlags)
	if err != nil {
		return err
	}
	defer s.close()

	opts, err := s.options()
	if err != nil {
		return err
	}
	videos, _, err := s.scan(ctx, args)
	if err != nil {
		return err
	}
	listed, err := subfinder.ListSubtitles(ctx, videos, langs, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	scoreOpts := score.Options{HearingImpaired: hi, ForeignOnly: fo}
	for _, v := range videos {
		subs, ok := listed[v]
		if !ok {
			continue
		}
		fmt.Fprintln(out, videoHeader(v))
		if len(subs) == 0 {
			fmt.Fprintln(out, "No subtitles found.")
			continue
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Score", "Language", "Provider", "ID", "Matches", "HI"},
			candidateRows(subs, v, scoreOpts, f.limit),
			[]columnAlignment{alignRight},
		))
	}
	return nil
}

func videoHeader(v video.Video) string {
	if size := v.Info().Size; size > 0 {
		return fmt.Sprintf("%s [%s]", v, humanize.Bytes(uint64(size)))
	}
	return v.String()
}

// candidateRows scores subs against v and returns the best limit rows.
func candidateRows(subs []subtitle.Subtitle, v video.Video, opts score.Options, limit int) [][]string {
	type row struct {
		sub   subtitle.Subtitle
		score int
	}
	rows := make([]row, 0, len(subs))
	for _, s := range subs {
		rows = append(rows, row{sub: s, score: score.Compute(s, v, opts)})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].score > rows[j].score })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	best := score.For(v.Kind()).Max()
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		info := r.sub.Info()
		hi := ""
		if info.HearingImpaired {
			hi = "yes"
		}
		out = append(out, []string{
			fmt.Sprintf("%d/%d", r.score, best),
			info.Language.String(),
			info.Provider,
			info.ID,
			strings.Join(r.sub.Matches(v).Sorted(), ","),
			hi,
		})
	}
	return out
}
