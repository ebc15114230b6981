package executor

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/relaytools/oscmd-mcp/internal/outputstore"
	"github.com/relaytools/oscmd-mcp/internal/procmanager"
)

const defaultTimePrefixFormat = "2006-01-02 15:04:05.000000"

// Logs retrieves, filters, and chunks the output of one process per req.
func (e *Executor) Logs(ctx context.Context, req LogsRequest) (*LogsResult, error) {
	rec, err := e.manager.Get(req.ProcessID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessNotFound, err)
	}

	var re *regexp.Regexp
	if req.Grep != "" {
		re, err = regexp.Compile(req.Grep)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid grep pattern: %v", ErrValue, err)
		}
	}

	limitLines := req.LimitLines
	if limitLines <= 0 {
		limitLines = defaultLimitLines
	}
	// FollowSeconds default (1s) is applied by the MCP binding, which can
	// distinguish "argument omitted" from "explicitly 0"; by the time a
	// request reaches the executor, 0 always means "do not block".
	followSeconds := req.FollowSeconds
	if followSeconds > 5 {
		followSeconds = 5 // original implementation's own follow cap
	}

	// WithStdout/WithStderr are taken exactly as given: the MCP binding is
	// the boundary that distinguishes "omitted" (defaults to stdout only)
	// from "explicitly false", so by the time a request reaches here an
	// all-false request is a deliberate "no channels" read, not a signal to
	// fall back to both.
	filtered, err := e.collectLines(ctx, req, rec, re, req.WithStdout, req.WithStderr, followSeconds)
	if err != nil {
		return nil, err
	}

	timeFormat := req.TimePrefixFormat
	if timeFormat == "" {
		timeFormat = defaultTimePrefixFormat
	}

	rendered := make([]string, len(filtered))
	for i, l := range filtered {
		if req.AddTimePrefix {
			rendered[i] = l.timestamp.Format(timeFormat) + " " + l.text
		} else {
			rendered[i] = l.text
		}
	}

	return &LogsResult{
		Header: formatHeader(rec),
		Chunks: chunk(rendered, limitLines),
	}, nil
}

type taggedLine struct {
	timestamp time.Time
	text      string
}

// collectLines reads raw entries (bounded only by Since/Until, never by
// Tail), applies the grep filter, and only then slices the trailing Tail
// entries off the filtered result — filter-then-tail, not tail-then-filter,
// since tailing the unfiltered stream first can throw away lines that would
// have matched.
func (e *Executor) collectLines(ctx context.Context, req LogsRequest, rec procmanager.ProcessRecord, re *regexp.Regexp, withStdout, withStderr bool, followSeconds int) ([]taggedLine, error) {
	// The record exists (manager.Get succeeded), so a store that has no log
	// directory for it yet means the process has written nothing so far.
	fetch := func() ([]taggedLine, error) {
		var out []taggedLine
		if withStdout {
			entries, err := e.outputs.Read(ctx, req.ProcessID, outputstore.Stdout, outputstore.ReadOptions{Since: req.Since, Until: req.Until})
			if err != nil && !errors.Is(err, outputstore.ErrProcessNotFound) {
				return nil, fmt.Errorf("%w: %v", ErrOutputRetrieval, err)
			}
			for _, en := range entries {
				out = append(out, taggedLine{timestamp: en.Timestamp, text: en.Text})
			}
		}
		if withStderr {
			entries, err := e.outputs.Read(ctx, req.ProcessID, outputstore.Stderr, outputstore.ReadOptions{Since: req.Since, Until: req.Until})
			if err != nil && !errors.Is(err, outputstore.ErrProcessNotFound) {
				return nil, fmt.Errorf("%w: %v", ErrOutputRetrieval, err)
			}
			for _, en := range entries {
				out = append(out, taggedLine{timestamp: en.Timestamp, text: en.Text})
			}
		}
		return applyGrep(out, re, req.GrepMode), nil
	}

	out, err := fetch()
	if err != nil {
		return nil, err
	}

	needsMore := req.Tail == 0 || len(out) < req.Tail
	if followSeconds > 0 && rec.Status == procmanager.StatusRunning && needsMore {
		deadline := time.Now().Add(time.Duration(followSeconds) * time.Second)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
	followLoop:
		for time.Now().Before(deadline) {
			select {
			case <-ctx.Done():
				break followLoop
			case <-ticker.C:
				refreshed, err := fetch()
				if err != nil {
					break followLoop
				}
				if len(refreshed) > len(out) {
					out = refreshed
				}
				if req.Tail > 0 && len(out) >= req.Tail {
					break followLoop
				}
			}
		}
	}

	if req.Tail > 0 && len(out) > req.Tail {
		out = out[len(out)-req.Tail:]
	}
	return out, nil
}

// applyGrep filters/reshapes lines per mode: line mode keeps whole lines
// that match; content mode yields one output line per match within a line
// (mirroring `grep -o` and the original's pattern.findall expansion).
func applyGrep(lines []taggedLine, re *regexp.Regexp, mode GrepMode) []taggedLine {
	if re == nil {
		return lines
	}
	var out []taggedLine
	for _, l := range lines {
		if mode == GrepModeContent {
			matches := re.FindAllString(l.text, -1)
			for _, m := range matches {
				out = append(out, taggedLine{timestamp: l.timestamp, text: m})
			}
			continue
		}
		if re.MatchString(l.text) {
			out = append(out, l)
		}
	}
	return out
}

func chunk(lines []string, limitLines int) []string {
	if limitLines <= 0 || len(lines) <= limitLines {
		if len(lines) == 0 {
			return nil
		}
		return []string{joinLines(lines)}
	}
	var chunks []string
	for start := 0; start < len(lines); start += limitLines {
		end := start + limitLines
		if end > len(lines) {
			end = len(lines)
		}
		chunks = append(chunks, joinLines(lines[start:end]))
	}
	return chunks
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}
