// Package batch phonemises whole word lists in parallel, writing one
// "<token> --> <phones>" line per token in input order.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/FocuswithJustin/hindilts/core/errors"
	"github.com/FocuswithJustin/hindilts/internal/logging"
)

// Separator sits between a token and its transcription.
const Separator = " --> "

// FailureMarker replaces the transcription of a token that failed.
const FailureMarker = "!error"

// Phonemiser converts one word to a phone string.
type Phonemiser interface {
	Phonemise(word string) (string, error)
}

// Runner processes word lists.
type Runner struct {
	Phonemiser Phonemiser
	// Workers is the pool size; 0 means one per CPU.
	Workers int
	// Align pads tokens to a common display width.
	Align bool
}

// Summary reports what a run did.
type Summary struct {
	Words    int           `json:"words"`
	Failed   int           `json:"failed"`
	Bytes    int64         `json:"bytes"`
	Duration time.Duration `json:"duration"`
}

func (s Summary) String() string {
	return fmt.Sprintf("transcribed %s words from %s (%s failed) in %s",
		humanize.Comma(int64(s.Words)),
		humanize.Bytes(uint64(s.Bytes)),
		humanize.Comma(int64(s.Failed)),
		s.Duration.Round(time.Millisecond))
}

type job struct {
	index int
	word  string
}

type result struct {
	index  int
	phones string
	err    error
}

// Run reads whitespace-separated tokens from r and writes their
// transcriptions to w. A token that fails is reported with FailureMarker
// and counted; it does not stop the run. Run returns early with ctx.Err()
// when ctx is cancelled.
func (b *Runner) Run(ctx context.Context, r io.Reader, w io.Writer) (Summary, error) {
	start := time.Now()

	counter := &countingReader{r: r}
	words, err := readTokens(counter)
	if err != nil {
		return Summary{}, errors.NewIO("read", "", err)
	}
	summary := Summary{Words: len(words), Bytes: counter.n}
	if len(words) == 0 {
		summary.Duration = time.Since(start)
		return summary, nil
	}

	results, err := b.transcribe(ctx, words)
	if err != nil {
		return summary, err
	}

	width := 0
	if b.Align {
		for _, word := range words {
			width = max(width, runewidth.StringWidth(word))
		}
	}

	bw := bufio.NewWriter(w)
	for i, word := range words {
		phones := results[i].phones
		if results[i].err != nil {
			summary.Failed++
			phones = FailureMarker
			logging.PhonemiseFailed(ctx, word, results[i].err)
		}
		if b.Align {
			word = runewidth.FillRight(word, width)
		}
		if _, err := fmt.Fprintf(bw, "%s%s%s\n", word, Separator, phones); err != nil {
			return summary, errors.NewIO("write", "", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return summary, errors.NewIO("write", "", err)
	}

	summary.Duration = time.Since(start)
	logging.BatchSummary(summary.Words, summary.Failed, summary.Duration, "workers", b.Workers)
	return summary, nil
}

func (b *Runner) transcribe(ctx context.Context, words []string) ([]result, error) {
	pool := NewWorkerPool[job, result](b.Workers, len(words))
	pool.Start(ctx, func(_ context.Context, j job) result {
		phones, err := b.Phonemiser.Phonemise(j.word)
		return result{index: j.index, phones: phones, err: err}
	})

	for i, word := range words {
		if err := pool.Submit(ctx, job{index: i, word: word}); err != nil {
			pool.Close()
			return nil, err
		}
	}
	pool.Close()

	results := make([]result, len(words))
	for res := range pool.Results() {
		results[res.index] = res
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func readTokens(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		words = append(words, strings.Fields(scanner.Text())...)
	}
	return words, scanner.Err()
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
