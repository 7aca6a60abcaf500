package cmd

import (
	"fmt"
	"strings"

	"github.com/angelospk/subfinder"
	"github.com/angelospk/subfinder/pkg/core/score"
	"github.com/angelospk/subfinder/pkg/core/subtitle"
	"github.com/angelospk/subfinder/pkg/core/video"
	"github.com/angelospk/subfinder/pkg/scanner"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type downloadFlags struct {
	commonFlags
	single          bool
	directory       string
	encoding        string
	minScore        int
	hearingImpaired string
	foreignOnly     string
	skipWrongFPS    bool
	ignore          []string
}

func newDownloadCmd() *cobra.Command {
	f := &downloadFlags{}
	cmd := &cobra.Command{
		Use:   "download PATH...",
		Short: "Download the best subtitles for videos",
		Long: `Scans the given files and directories for videos, refines them, lists
subtitles from the providers and saves the best one per language next to
each video.

Examples:
  subfinder download -l en -l pt-BR ~/Videos
  subfinder download -l en --single --min-score 50 The.Big.Bang.Theory.S07E05.720p.HDTV.X264-DIMENSION.mkv
  subfinder download -l fr -p opensubtitlescom --hearing-impaired prefer Inception.2010.mkv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, args, f)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVarP(&f.single, "single", "s", false, "Save one subtitle without language suffix")
	cmd.Flags().StringVarP(&f.directory, "directory", "d", "", "Directory to save subtitles in (default: next to the video)")
	cmd.Flags().StringVarP(&f.encoding, "encoding", "e", "", "Encoding to save subtitles with (default: UTF-8)")
	cmd.Flags().IntVarP(&f.minScore, "min-score", "m", 0, "Minimum score as a percentage of the best possible score")
	cmd.Flags().StringVar(&f.hearingImpaired, "hearing-impaired", "", "Hearing impaired subtitles: prefer, disfavor or indifferent")
	cmd.Flags().StringVar(&f.foreignOnly, "foreign-only", "", "Foreign only subtitles: prefer, disfavor or indifferent")
	cmd.Flags().BoolVar(&f.skipWrongFPS, "skip-wrong-fps", false, "Skip subtitles with a frame rate different from the video")
	cmd.Flags().StringSliceVar(&f.ignore, "ignore", nil, "Subtitles to ignore, as provider:id")
	return cmd
}

func (f *downloadFlags) bestOptions(opts subfinder.Options) (subfinder.BestOptions, error) {
	if f.minScore < 0 || f.minScore > 100 {
		return subfinder.BestOptions{}, fmt.Errorf("--min-score must be between 0 and 100, got %d", f.minScore)
	}
	hi, err := score.ParsePreference(f.hearingImpaired)
	if err != nil {
		return subfinder.BestOptions{}, fmt.Errorf("--hearing-impaired: %w", err)
	}
	fo, err := score.ParsePreference(f.foreignOnly)
	if err != nil {
		return subfinder.BestOptions{}, fmt.Errorf("--foreign-only: %w", err)
	}
	ignore := make([]subtitle.Key, 0, len(f.ignore))
	for _, s := range f.ignore {
		key, err := subtitle.ParseKey(s)
		if err != nil {
			return subfinder.BestOptions{}, fmt.Errorf("--ignore: %w", err)
		}
		ignore = append(ignore, key)
	}
	return subfinder.BestOptions{
		Options:         opts,
		MinScorePercent: f.minScore,
		HearingImpaired: hi,
		ForeignOnly:     fo,
		SkipWrongFPS:    f.skipWrongFPS,
		OnlyOne:         f.single,
		Ignore:          ignore,
	}, nil
}

func runDownload(cmd *cobra.Command, args []string, f *downloadFlags) error {
	ctx := cmd.Context()
	langs, err := f.languageSet()
	if err != nil {
		return err
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
	best, err := f.bestOptions(opts)
	if err != nil {
		return err
	}

	videos, errored, err := s.scan(ctx, args)
	if err != nil {
		return err
	}
	res, err := subfinder.DownloadBest(ctx, videos, langs, best)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	saveOpts := scanner.SaveOptions{Single: f.single, Directory: f.directory, Encoding: f.encoding}
	saved := 0
	for _, v := range videos {
		subs, ok := res.Downloaded[v]
		if !ok {
			continue
		}
		written, err := scanner.SaveSubtitles(v, subs, saveOpts)
		if err != nil {
			s.logger.WithError(err).WithField("video", v.String()).Error("Failed to save subtitles")
			errored++
			continue
		}
		saved += len(written)
		for _, sub := range written {
			fmt.Fprintf(out, "%s: %s from %s (%s)\n", v, sub.Info().Language, sub.Key(), humanize.Bytes(uint64(len(sub.Info().Content))))
		}
	}

	fmt.Fprintln(out, summary(saved, videos, res, errored))
	return nil
}

func summary(saved int, videos []video.Video, res *subfinder.Result, errored int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Downloaded %d subtitle(s) for %d video(s)", saved, len(res.Downloaded))
	if n := len(res.Skipped); n > 0 {
		fmt.Fprintf(&b, ", %d video(s) ignored", n)
	}
	if errored > 0 {
		fmt.Fprintf(&b, ", %d error(s)", errored)
	}
	if len(videos) == 0 {
		b.WriteString(", no video found")
	}
	if len(res.Discarded) > 0 {
		fmt.Fprintf(&b, "\nDiscarded providers: %s", strings.Join(res.Discarded, ", "))
	}
	return b.String()
}
