package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"signalgen/internal/download"
	"signalgen/internal/services"
	"signalgen/internal/signal"
)

type resultView struct {
	Result    signal.GenerationResult `json:"result"`
	PlotURL   string                  `json:"plot_url"`
	Downloads []downloadView          `json:"downloads,omitempty"`
}

type downloadView struct {
	Kind   signal.ArtifactKind `json:"kind"`
	Status services.Status     `json:"status"`
	Path   string              `json:"path,omitempty"`
	Bytes  int64               `json:"bytes,omitempty"`
	SHA256 string              `json:"sha256,omitempty"`
	Error  string              `json:"error,omitempty"`
}

func newResultView(result signal.GenerationResult, plotURL string, outcomes []download.Outcome) resultView {
	return resultView{
		Result:    result,
		PlotURL:   plotURL,
		Downloads: downloadViews(outcomes),
	}
}

func downloadViews(outcomes []download.Outcome) []downloadView {
	if len(outcomes) == 0 {
		return nil
	}
	views := make([]downloadView, 0, len(outcomes))
	for _, o := range outcomes {
		view := downloadView{Kind: o.Kind, Status: services.FailureStatus(o.Err)}
		if o.Err != nil {
			view.Error = services.StatusMessage(o.Err)
		} else {
			view.Path = o.Saved.Path
			view.Bytes = o.Saved.Bytes
			view.SHA256 = o.Saved.SHA256
		}
		views = append(views, view)
	}
	return views
}

func printResult(out io.Writer, view resultView, colorize bool) {
	r := view.Result
	for _, line := range renderSectionHeader("Generated "+r.Family.Label()+" signal", colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Session", statusOK, r.SessionID, colorize))
	fmt.Fprintln(out, renderStatusLine("Pattern", statusInfo, r.PatternID, colorize))
	fmt.Fprintln(out, renderStatusLine("Duration", statusInfo, fmt.Sprintf("%d s at %d Hz", r.DurationSeconds, r.SamplingRateHz), colorize))
	fmt.Fprintln(out, renderStatusLine("Samples", statusInfo, strconv.Itoa(r.SampleCount()), colorize))
	if n := r.ChannelCount(); n > 0 {
		fmt.Fprintln(out, renderStatusLine("Channels", statusInfo, fmt.Sprintf("%d (%s)", n, strings.Join(r.Channels, ", ")), colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Plot", statusInfo, view.PlotURL, colorize))
	if len(view.Downloads) > 0 {
		fmt.Fprintln(out, renderDownloads(view.Downloads))
	}
}

func renderDownloads(views []downloadView) string {
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		detail := v.Path
		size := ""
		if v.Error != "" {
			detail = v.Error
		} else {
			size = strconv.FormatInt(v.Bytes, 10)
		}
		rows = append(rows, []string{string(v.Kind), string(v.Status), detail, size})
	}
	return renderTable("Downloads", []string{"Kind", "Status", "File", "Bytes"}, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight})
}

// downloadFailures summarizes failed kinds, or returns nil when every kind
// was saved.
func downloadFailures(outcomes []download.Outcome) error {
	var errs []error
	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.Kind, o.Err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d downloads failed: %w", len(errs), len(outcomes), errors.Join(errs...))
}

// parseDownloadKinds accepts "all" or a comma separated list of kinds.
func parseDownloadKinds(value string) ([]signal.ArtifactKind, error) {
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "":
		return nil, nil
	case "all":
		return signal.ArtifactKinds(), nil
	}
	return signal.ParseArtifactKinds(value)
}
