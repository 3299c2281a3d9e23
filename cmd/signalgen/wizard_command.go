package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"signalgen/internal/download"
	"signalgen/internal/services"
	"signalgen/internal/signal"
	"signalgen/internal/workflow"
)

func newWizardCommand(ctx *commandContext) *cobra.Command {
	var resume bool
	var clamp bool

	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Step through family, category, and pattern selection interactively",
		Long: "Walks the generation workflow one step at a time. At any prompt type a\n" +
			"number or name to choose, 'back' to step back, 'reset' to start over,\n" +
			"'go <route>' to jump to a path such as /eeg/normal, or 'quit' to leave.",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := ctx.buildWorkflowSession(cmd, clamp)
			if err != nil {
				return err
			}
			defer session.Close()

			w := newWizard(cmd, session)
			ready, err := w.waitForService()
			if err != nil || !ready {
				return err
			}
			if resume {
				if err := w.resume(); err != nil {
					return err
				}
			}
			return w.run()
		},
	}

	cmd.Flags().BoolVar(&resume, "resume", false, "Restore the persisted session before prompting")
	cmd.Flags().BoolVar(&clamp, "clamp", false, "Snap out-of-range settings into bounds instead of rejecting them")
	return cmd
}

type wizard struct {
	ctx         context.Context
	in          *bufio.Scanner
	out         io.Writer
	colorize    bool
	interactive bool
	session     *workflowSession
	ctrl        *workflow.Controller
	downloads   *download.Orchestrator
}

func newWizard(cmd *cobra.Command, session *workflowSession) *wizard {
	out := cmd.OutOrStdout()
	orch := download.New(session.client, session.cfg.Paths.DownloadDir,
		download.WithLogger(session.logger),
		download.WithSessionSource(session.controller),
	)
	return &wizard{
		ctx:         cmd.Context(),
		in:          bufio.NewScanner(cmd.InOrStdin()),
		out:         out,
		colorize:    shouldColorize(out),
		interactive: isInteractive(cmd.InOrStdin()),
		session:     session,
		ctrl:        session.controller,
		downloads:   orch,
	}
}

// waitForService holds the wizard at the health gate. Any input other than
// quit checks again; input ending while blocked returns the failure.
func (w *wizard) waitForService() (bool, error) {
	for {
		err := w.session.checkHealth(w.ctx)
		if err == nil {
			return true, nil
		}
		if errors.Is(err, context.Canceled) {
			return false, err
		}
		w.report(err)
		fmt.Fprintln(w.out, "Type 'retry' to check the service again or 'quit' to leave.")
		line, ok := w.readLine()
		if !ok {
			return false, failed("start workflow", err)
		}
		switch strings.ToLower(line) {
		case "quit", "exit", "q":
			return false, nil
		}
	}
}

func (w *wizard) resume() error {
	if w.session.store == nil {
		return errPersistenceDisabled
	}
	snap, err := persistedSnapshot(w.ctx, w.session.store, w.ctrl.ID())
	if err != nil {
		return err
	}
	if _, err := w.ctrl.Restore(w.ctx, snap); err != nil {
		w.report(fmt.Errorf("restore stopped early: %w", err))
	}
	return nil
}

func (w *wizard) run() error {
	for {
		w.render(w.ctrl.State())
		line, ok := w.readLine()
		if !ok {
			return w.in.Err()
		}
		done, err := w.handle(line)
		if err != nil {
			w.report(err)
		}
		if done {
			return nil
		}
	}
}

func (w *wizard) readLine() (string, bool) {
	if w.interactive {
		fmt.Fprint(w.out, "> ")
	}
	if !w.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(w.in.Text()), true
}

// handle applies one line of input. It returns true when the user asked to
// leave.
func (w *wizard) handle(line string) (bool, error) {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	word := strings.ToLower(fields[0])
	arg := strings.TrimSpace(line[len(fields[0]):])

	switch word {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		w.printHelp()
		return false, nil
	case "back":
		w.ctrl.Back()
		return false, nil
	case "reset":
		w.ctrl.Reset()
		return false, nil
	case "go":
		_, err := w.ctrl.Navigate(w.ctx, arg)
		return false, err
	}

	state := w.ctrl.State()
	switch state.Step {
	case workflow.StepStart:
		return false, w.chooseFamily(line)
	case workflow.StepFamilySelected:
		if word == "retry" {
			_, err := w.ctrl.SelectFamily(w.ctx, state.Family)
			return false, err
		}
		return false, w.chooseFamily(line)
	case workflow.StepCategoryChoice:
		return false, w.chooseCategory(state, line)
	case workflow.StepPatternChoice:
		return false, w.choosePattern(state, line)
	default:
		return false, w.handleAction(state, word, arg)
	}
}

func (w *wizard) handleAction(state workflow.State, word, arg string) error {
	switch word {
	case "generate", "g":
		_, err := w.ctrl.Submit(w.ctx)
		return err
	case "duration", "rate":
		value, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("%w: %s needs a whole number, got %q", services.ErrInvalidSettings, word, arg)
		}
		settings := state.Settings
		if word == "duration" {
			settings.DurationSeconds = value
		} else {
			settings.SamplingRateHz = value
		}
		_, err = w.ctrl.EditSettings(settings)
		return err
	case "category":
		return w.chooseCategory(state, arg)
	case "pattern":
		return w.choosePattern(state, arg)
	case "download":
		return w.download(arg)
	default:
		return fmt.Errorf("%w: unknown command %q (type 'help')", services.ErrValidation, word)
	}
}

func (w *wizard) chooseFamily(input string) error {
	choice, err := resolveChoice(input, familyNames())
	if err != nil {
		return err
	}
	family, err := signal.ParseFamily(choice)
	if err != nil {
		return fmt.Errorf("%w: %v", services.ErrValidation, err)
	}
	_, err = w.ctrl.SelectFamily(w.ctx, family)
	return err
}

func (w *wizard) chooseCategory(state workflow.State, input string) error {
	var names []string
	if state.Catalog != nil {
		for _, c := range state.Catalog.CategoryNames() {
			names = append(names, string(c))
		}
	}
	choice, err := resolveChoice(input, names)
	if err != nil {
		return err
	}
	_, err = w.ctrl.SelectCategory(signal.NormalizeCategory(choice))
	return err
}

func (w *wizard) choosePattern(state workflow.State, input string) error {
	var ids []string
	if state.Catalog != nil {
		patterns, _ := state.Catalog.Patterns(state.Category)
		for _, p := range patterns {
			ids = append(ids, p.ID)
		}
	}
	choice, err := resolveChoice(input, ids)
	if err != nil {
		return err
	}
	_, err = w.ctrl.SelectPattern(choice)
	return err
}

func (w *wizard) download(arg string) error {
	result, ok := w.ctrl.ActiveResult()
	if !ok {
		return download.ErrNoResult
	}
	kinds, err := parseDownloadKinds(textOr(arg, "all"))
	if err != nil {
		return fmt.Errorf("%w: %v", services.ErrValidation, err)
	}
	outcomes := w.downloads.RequestAll(w.ctx, &result, kinds...)
	fmt.Fprintln(w.out, renderDownloads(downloadViews(outcomes)))
	return downloadFailures(outcomes)
}

func (w *wizard) report(err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	status := services.FailureStatus(err)
	fmt.Fprintln(w.out, renderStatusLine("Problem", failureKind(status), services.StatusMessage(err), w.colorize))
}

// resolveChoice maps a 1-based menu number onto options. Anything that is
// not a number is passed through unchanged.
func resolveChoice(input string, options []string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("%w: a choice is required", services.ErrValidation)
	}
	n, err := strconv.Atoi(input)
	if err != nil {
		return input, nil
	}
	if n < 1 || n > len(options) {
		return "", fmt.Errorf("%w: choice %d is out of range 1-%d", services.ErrValidation, n, len(options))
	}
	return options[n-1], nil
}

func familyNames() []string {
	families := signal.Families()
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, string(f))
	}
	return names
}

func textOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
