package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/conorfennell/iyek/internal/config"
	"github.com/conorfennell/iyek/internal/domain"
	"github.com/conorfennell/iyek/internal/fingerprint"
	"github.com/conorfennell/iyek/internal/lesson"
	"github.com/conorfennell/iyek/internal/progress"
	"github.com/conorfennell/iyek/internal/quiz"
	"github.com/conorfennell/iyek/internal/review"
	"github.com/conorfennell/iyek/internal/storage"
	"github.com/conorfennell/iyek/internal/vocab"
)

// app holds the dependencies shared by every command.
type app struct {
	cfg   *config.Config
	kv    storage.KV
	store *progress.Store
	words []domain.Word
	log   *slog.Logger
	in    io.Reader
	out   io.Writer
	rnd   quiz.Rand // nil uses a time-seeded source
	yes   bool
	force bool
}

func (a *app) dispatch(args []string) error {
	cmd, rest := "", []string(nil)
	if len(args) > 0 {
		cmd, rest = args[0], args[1:]
	}

	switch cmd {
	case "", "start":
		return a.launch()
	case "onboard":
		return a.onboard(strings.Join(rest, " "))
	case "learn":
		return a.learn(rest)
	case "alphabet":
		return a.alphabet(rest)
	case "quiz":
		return a.quiz()
	case "levels":
		return a.levels()
	case "progress":
		return a.progress()
	case "name":
		return a.rename(strings.Join(rest, " "))
	case "clear":
		return a.clear()
	case "export":
		return a.export(rest)
	case "import":
		return a.importSnapshot(rest)
	case "keys":
		return a.keys()
	default:
		return fmt.Errorf("unknown command %q (see iyek --help)", cmd)
	}
}

// launch counts a session for onboarded learners and greets them.
func (a *app) launch() error {
	name, ok := a.store.UserName()
	if !ok {
		fmt.Fprintln(a.out, "Welcome to iyek! Run `iyek onboard <your name>` to get started.")
		return nil
	}
	n := a.store.IncrementSessionCount()
	p := a.store.Aggregate()
	fmt.Fprintf(a.out, "Welcome back, %s! (session %d)\n", name, n)
	fmt.Fprintf(a.out, "Words learned: %d/%d  Letters viewed: %d\n", p.WordsLearned, len(a.words), p.LettersViewed)
	return nil
}

func (a *app) onboard(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("please enter your name")
	}
	if existing, ok := a.store.UserName(); ok {
		return fmt.Errorf("already onboarded as %s; use `iyek name` to change it", existing)
	}
	a.store.SetUserName(name)
	a.store.IncrementSessionCount()
	fmt.Fprintf(a.out, "Khurumjari, %s! Start with `iyek learn`.\n", name)
	return nil
}

func (a *app) learn(args []string) error {
	l := lesson.New(a.words, a.store)
	action := ""
	if len(args) > 0 {
		action = args[0]
	}

	switch action {
	case "":
	case "next":
		l.Next()
	case "reset":
		l.Reset()
	default:
		return fmt.Errorf("unknown learn action %q (want next or reset)", action)
	}

	w, ok := l.Current()
	if !ok {
		fmt.Fprintf(a.out, "You've studied all %d words! Run `iyek learn reset` to start over.\n", l.Len())
		return nil
	}
	fmt.Fprintf(a.out, "%d / %d\n", l.Position()+1, l.Len())
	fmt.Fprintf(a.out, "  %s\n  %s\n  %s\n", w.Native, w.Transliteration, w.Translation)
	return nil
}

func (a *app) alphabet(args []string) error {
	if len(args) == 0 {
		for _, g := range vocab.Alphabet() {
			fmt.Fprintf(a.out, "%-8s %s (%d letters)\n", g.Slug, g.Name, len(g.Letters))
		}
		return nil
	}

	g, ok := vocab.FindGroup(args[0])
	if !ok {
		return fmt.Errorf("unknown alphabet group %q", args[0])
	}
	if len(args) == 1 {
		viewed := make(map[string]bool)
		for _, ch := range a.store.LettersViewed() {
			viewed[ch] = true
		}
		fmt.Fprintln(a.out, g.Name)
		for _, l := range g.Letters {
			mark := " "
			if viewed[l.Character] {
				mark = "*"
			}
			fmt.Fprintf(a.out, " %s %s  %s\n", mark, l.Character, l.Roman)
		}
		return nil
	}

	for _, l := range g.Letters {
		if l.Character == args[1] || strings.EqualFold(l.Roman, args[1]) {
			a.store.AddLetterViewed(l.Character)
			fmt.Fprintf(a.out, "%s  %s\n", l.Character, l.Roman)
			return nil
		}
	}
	return fmt.Errorf("no letter %q in %s", args[1], g.Name)
}

func (a *app) quiz() error {
	opts := []quiz.Option{
		quiz.WithLength(a.cfg.Quiz.Length),
		quiz.WithLevel(domain.Beginner),
		quiz.WithRecorder(a.store),
	}
	if a.rnd != nil {
		opts = append(opts, quiz.WithRand(a.rnd))
	}
	s, err := quiz.New(a.words, opts...)
	if err != nil {
		return err
	}

	input := bufio.NewScanner(a.in)
	for !s.IsComplete() {
		q, _ := s.Current()
		fmt.Fprintf(a.out, "\nQuestion %d of %d\n  %s (%s)\n", s.Index()+1, s.Len(), q.Native, q.Transliteration)
		for i, o := range q.Options {
			fmt.Fprintf(a.out, "  %d) %s\n", i+1, o)
		}

		answer, ok := readChoice(input, a.out, q.Options)
		if !ok {
			fmt.Fprintln(a.out, "\nQuiz abandoned. Nothing was saved.")
			return nil
		}
		correct, err := s.Answer(answer)
		if err != nil {
			return err
		}
		if correct {
			fmt.Fprintln(a.out, "Correct!")
		} else {
			fmt.Fprintf(a.out, "Not quite. The answer is %s.\n", s.CorrectAnswer())
		}
		if _, err := s.Advance(); err != nil {
			return err
		}
	}

	res := s.Result()
	a.log.Info("quiz complete", "level", res.Level, "score", res.Score, "total", res.Total)
	fmt.Fprintf(a.out, "\nQuiz Complete!\n%d / %d\n%s\n", res.Score, res.Total, res.Message())

	policy := review.Policy{MinSessions: a.cfg.Review.Sessions}
	if policy.ShouldPrompt(a.store) {
		fmt.Fprint(a.out, "\nEnjoying iyek? Would you like to rate it? [y/N] ")
		accepted := input.Scan() && strings.EqualFold(strings.TrimSpace(input.Text()), "y")
		review.Resolve(a.store, accepted)
		if accepted {
			fmt.Fprintln(a.out, "Thank you!")
		} else {
			fmt.Fprintln(a.out, "Maybe later.")
		}
	}
	return nil
}

// readChoice reads until the learner picks an option by number or text.
// ok is false at end of input.
func readChoice(input *bufio.Scanner, out io.Writer, options []string) (string, bool) {
	for {
		fmt.Fprint(out, "> ")
		if !input.Scan() {
			return "", false
		}
		text := strings.TrimSpace(input.Text())
		if n, err := strconv.Atoi(text); err == nil && n >= 1 && n <= len(options) {
			return options[n-1], true
		}
		for _, o := range options {
			if strings.EqualFold(o, text) {
				return o, true
			}
		}
		fmt.Fprintf(out, "Choose 1-%d.\n", len(options))
	}
}

func (a *app) levels() error {
	for _, lvl := range vocab.Levels(a.words) {
		st := domain.LevelStatus{
			Level:       lvl.Level,
			Title:       lvl.Title,
			Description: lvl.Description,
			Locked:      len(lvl.Words) == 0,
			Completed:   a.store.IsQuizCompleted(lvl.Level),
		}
		if score, ok := a.store.QuizScore(lvl.Level); ok && st.Completed {
			st.Score = &score
		}

		state := "open"
		switch {
		case st.Locked:
			state = "locked"
		case st.Completed:
			state = "completed"
		}
		fmt.Fprintf(a.out, "%-12s [%s] %s\n", st.Title, state, st.Description)
		if st.Score != nil {
			fmt.Fprintf(a.out, "             Last score: %d/%d\n", *st.Score, min(a.cfg.Quiz.Length, len(lvl.Words)))
		}
	}
	return nil
}

func (a *app) progress() error {
	p := a.store.Aggregate()
	name, _ := a.store.UserName()
	letters := 0
	for _, g := range vocab.Alphabet() {
		letters += len(g.Letters)
	}
	quizState := "not taken"
	if p.QuizCompleted {
		quizState = "completed"
	}
	fmt.Fprintf(a.out, "Name:           %s\n", name)
	fmt.Fprintf(a.out, "Words learned:  %d/%d\n", p.WordsLearned, len(a.words))
	fmt.Fprintf(a.out, "Letters viewed: %d/%d\n", p.LettersViewed, letters)
	fmt.Fprintf(a.out, "Beginner quiz:  %s\n", quizState)
	fmt.Fprintf(a.out, "Sessions:       %d\n", a.store.SessionCount())
	return nil
}

func (a *app) rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("name cannot be empty")
	}
	if current, _ := a.store.UserName(); current == name {
		fmt.Fprintln(a.out, "Name unchanged.")
		return nil
	}
	a.store.SetUserName(name)
	fmt.Fprintf(a.out, "Name set to %s.\n", name)
	return nil
}

func (a *app) clear() error {
	if !a.yes {
		return errors.New("this deletes all learning progress; rerun with --yes to confirm")
	}
	a.store.Clear()
	fmt.Fprintln(a.out, "Progress cleared.")
	return nil
}

func (a *app) export(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: iyek export <file|->")
	}
	snap := a.store.Snapshot(fingerprint.Hash(a.words))
	if args[0] == "-" {
		return progress.WriteSnapshot(a.out, snap)
	}

	file, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", args[0], err)
	}
	if err := progress.WriteSnapshot(file, snap); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", args[0], err)
	}
	fmt.Fprintf(a.out, "Exported progress to %s.\n", args[0])
	return nil
}

func (a *app) importSnapshot(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: iyek import <file> [--force]")
	}
	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer file.Close()

	snap, err := progress.ReadSnapshot(file)
	if err != nil {
		return err
	}
	if err := a.store.Restore(snap, fingerprint.Hash(a.words), len(a.words), a.force); err != nil {
		if errors.Is(err, progress.ErrVocabularyMismatch) {
			return fmt.Errorf("%w; rerun with --force to import anyway", err)
		}
		return err
	}
	fmt.Fprintf(a.out, "Imported progress from %s.\n", args[0])
	return nil
}

func (a *app) keys() error {
	lister, ok := a.kv.(storage.Lister)
	if !ok {
		return errors.New("store cannot list keys")
	}
	keys, err := lister.Keys()
	if err != nil {
		return err
	}
	for _, k := range keys {
		v, _, err := a.kv.Get(k)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s = %s\n", k, v)
	}
	return nil
}
