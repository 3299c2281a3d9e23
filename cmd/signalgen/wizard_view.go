package main

import (
	"fmt"
	"strconv"

	"signalgen/internal/services"
	"signalgen/internal/signal"
	"signalgen/internal/workflow"
)

func (w *wizard) render(state workflow.State) {
	fmt.Fprintln(w.out)
	for _, line := range renderSectionHeader(screenTitle(state), w.colorize) {
		fmt.Fprintln(w.out, line)
	}
	fmt.Fprintln(w.out, renderStatusLine("Route", statusInfo, state.Route().String(), w.colorize))
	if state.Err != nil {
		status := services.FailureStatus(state.Err)
		fmt.Fprintln(w.out, renderStatusLine("Problem", failureKind(status), services.StatusMessage(state.Err), w.colorize))
	}

	switch state.Step {
	case workflow.StepStart:
		w.printMenu(familyLabels())
	case workflow.StepFamilySelected:
		fmt.Fprintln(w.out, "Type 'retry' to load the catalog again or 'back' to choose another family.")
	case workflow.StepCategoryChoice:
		var labels []string
		for _, c := range state.Catalog.CategoryNames() {
			labels = append(labels, c.Label())
		}
		w.printMenu(labels)
	case workflow.StepPatternChoice:
		patterns, _ := state.Catalog.Patterns(state.Category)
		labels := make([]string, 0, len(patterns))
		for _, p := range patterns {
			labels = append(labels, fmt.Sprintf("%s (%s)", p.DisplayName, p.ID))
		}
		w.printMenu(labels)
	case workflow.StepReadyToGenerate:
		w.printSelection(state)
		fmt.Fprintln(w.out, "Type 'generate', 'duration <seconds>', 'rate <hz>', or 'back'.")
	case workflow.StepGenerating:
		fmt.Fprintln(w.out, renderStatusLine("Generation", statusInfo, "in progress", w.colorize))
	case workflow.StepGenerated:
		if state.Result != nil {
			printResult(w.out, newResultView(*state.Result, w.session.client.PlotURL(state.Result.PlotPath), nil), w.colorize)
		}
		fmt.Fprintln(w.out, "Type 'download [csv,features,plot]', 'generate' to run again, 'back', or 'reset'.")
	}
}

func (w *wizard) printMenu(labels []string) {
	for i, label := range labels {
		fmt.Fprintf(w.out, "%s%d) %s\n", statusIndent, i+1, label)
	}
}

func (w *wizard) printSelection(state workflow.State) {
	pattern, _ := state.Pattern()
	fmt.Fprintln(w.out, renderStatusLine("Pattern", statusInfo, fmt.Sprintf("%s (%s)", pattern.DisplayName, pattern.ID), w.colorize))
	fmt.Fprintln(w.out, renderStatusLine("Duration", statusInfo, strconv.Itoa(state.Settings.DurationSeconds)+" s", w.colorize))
	fmt.Fprintln(w.out, renderStatusLine("Sampling rate", statusInfo, strconv.Itoa(state.Settings.SamplingRateHz)+" Hz", w.colorize))
}

func (w *wizard) printHelp() {
	lines := []string{
		"<number> or <name>   choose from the list",
		"back                 step back one screen",
		"reset                start over and drop cached catalogs",
		"go <route>           jump to /, /eeg, /eeg/normal, /eeg/normal/<pattern> or /results",
		"generate             run the generator with the current settings",
		"duration <seconds>   set the duration (10-300)",
		"rate <hz>            set the sampling rate",
		"download [kinds]     save csv, features, plot or all",
		"quit                 leave the wizard",
	}
	for _, line := range lines {
		fmt.Fprintln(w.out, statusIndent+line)
	}
}

func screenTitle(state workflow.State) string {
	switch state.Step {
	case workflow.StepFamilySelected:
		return state.Family.Label() + " catalog unavailable"
	case workflow.StepCategoryChoice:
		return state.Family.Label() + " categories"
	case workflow.StepPatternChoice:
		return fmt.Sprintf("%s %s patterns", state.Family.Label(), state.Category.Label())
	case workflow.StepReadyToGenerate:
		return "Ready to generate"
	case workflow.StepGenerating:
		return "Generating"
	case workflow.StepGenerated:
		return "Result"
	default:
		return "Choose a signal family"
	}
}

func familyLabels() []string {
	families := signal.Families()
	labels := make([]string, 0, len(families))
	for _, f := range families {
		labels = append(labels, f.Label())
	}
	return labels
}
