// Package script drives a board from line-oriented commands and prints its
// snapshot as JSON. It backs the -script flag and end-to-end tests.
//
//	add Pay rent | 2024-01-01 | high
//	edit @0 | Pay rent | 2024-01-02 | medium
//	toggle @0
//	delete 1704067200000
//	reorder 2 0
//	page today 2
//	pagesize 5
//	today 2024-01-10
//	tick
//	show
//
// A task reference is either its id or @N, the task at position N of the
// full list. Blank lines and lines starting with # are skipped.
package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"taskboard/internal/board"
	"taskboard/internal/storage"
)

type Interpreter struct {
	board *board.Board
	out   io.Writer
	log   *log.Entry
	now   time.Time
}

// New builds an interpreter whose board clock starts at now and only moves
// with the today command.
func New(out io.Writer, logger *log.Logger, now time.Time, pageSize int) (*Interpreter, error) {
	in := &Interpreter{out: out, now: now}
	b, err := board.New(
		board.WithClock(func() time.Time { return in.now }),
		board.WithLogger(logger),
		board.WithPageSize(pageSize),
	)
	if err != nil {
		return nil, err
	}
	in.board = b
	if logger == nil {
		logger = log.StandardLogger()
	}
	in.log = logger.WithField("session", b.Session())
	return in, nil
}

func (in *Interpreter) Board() *board.Board {
	return in.board
}

// Run executes every line of r. Malformed lines are skipped and returned
// together as one error once the input is exhausted.
func (in *Interpreter) Run(r io.Reader) error {
	var errs []error
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := in.Exec(line); err != nil {
			in.log.WithError(err).WithField("line", lineNo).Warn("script line skipped")
			errs = append(errs, fmt.Errorf("line %d: %w", lineNo, err))
		}
	}
	if err := sc.Err(); err != nil {
		errs = append(errs, fmt.Errorf("read script: %w", err))
	}
	return errors.Join(errs...)
}

// Exec runs one command. Commands the board ignores are not errors.
func (in *Interpreter) Exec(line string) error {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	cmd = strings.ToLower(cmd)
	rest = strings.TrimSpace(rest)
	switch cmd {
	case "add":
		parts := splitArgs(rest)
		if len(parts) < 2 || len(parts) > 3 {
			return fmt.Errorf("add wants name | date [| priority]")
		}
		due, prio, err := dateAndPriority(parts[1:])
		if err != nil {
			return err
		}
		in.board.Add(parts[0], due, prio)
	case "edit":
		parts := splitArgs(rest)
		if len(parts) < 3 || len(parts) > 4 {
			return fmt.Errorf("edit wants ref | name | date [| priority]")
		}
		id, err := in.resolve(parts[0])
		if err != nil {
			return err
		}
		due, prio, err := dateAndPriority(parts[2:])
		if err != nil {
			return err
		}
		in.board.Edit(id, parts[1], due, prio)
	case "delete", "toggle":
		id, err := in.resolve(rest)
		if err != nil {
			return err
		}
		if cmd == "delete" {
			in.board.Delete(id)
		} else {
			in.board.ToggleDone(id)
		}
	case "reorder":
		nums, err := ints(rest, 2)
		if err != nil {
			return err
		}
		in.board.Reorder(nums[0], nums[1])
	case "page":
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			return fmt.Errorf("page wants view number")
		}
		v, err := board.ParseView(fields[0])
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("page number: %w", err)
		}
		in.board.SetPage(v, n)
	case "pagesize":
		nums, err := ints(rest, 1)
		if err != nil {
			return err
		}
		in.board.SetPageSize(nums[0])
	case "today":
		t, err := time.ParseInLocation(storage.DateLayout, rest, in.now.Location())
		if err != nil {
			return fmt.Errorf("today: %w", err)
		}
		in.now = t
		in.board.Refresh()
	case "tick":
		in.board.CheckDueDates()
	case "show":
		return in.Show()
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// Show writes the current snapshot as one JSON document.
func (in *Interpreter) Show() error {
	enc := sonic.ConfigDefault.NewEncoder(in.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(in.board.Snapshot()); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

func (in *Interpreter) resolve(ref string) (int64, error) {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "@") {
		idx, err := strconv.Atoi(ref[1:])
		if err != nil {
			return 0, fmt.Errorf("task position %q: %w", ref, err)
		}
		all := in.board.Snapshot().All
		if idx < 0 || idx >= len(all) {
			// unknown positions behave like unknown ids
			return -1, nil
		}
		return all[idx].ID, nil
	}
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("task id %q: %w", ref, err)
	}
	return id, nil
}

func splitArgs(s string) []string {
	parts := strings.Split(s, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func dateAndPriority(parts []string) (string, storage.Priority, error) {
	due, err := storage.ParseDate(parts[0])
	if err != nil {
		return "", "", fmt.Errorf("due date: %w", err)
	}
	prio := storage.PriorityLow
	if len(parts) > 1 {
		if prio, err = storage.ParsePriority(parts[1]); err != nil {
			return "", "", err
		}
	}
	return due, prio, nil
}

func ints(s string, n int) ([]int, error) {
	fields := strings.Fields(s)
	if len(fields) != n {
		return nil, fmt.Errorf("want %d numbers, got %q", n, s)
	}
	out := make([]int, n)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
