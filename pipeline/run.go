package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/revelaction/semalign/corpus"
	"github.com/revelaction/semalign/diag"
	"github.com/revelaction/semalign/sense"
	sent "github.com/revelaction/semalign/sentence"
	"github.com/revelaction/semalign/storage"
)

// Report summarizes a run.
type Report struct {
	RunId string `json:"run_id"`

	Files    int `json:"files"`
	Docs     int `json:"docs"`
	Existing int `json:"existing"`
	Failed   int `json:"failed"`

	Sentences   int `json:"sentences"`
	Records     int `json:"records"`
	Skipped     int `json:"skipped"`
	Annotations int `json:"annotations"`

	Counts   map[diag.Kind]int `json:"-"`
	Cache    sense.Stats       `json:"cache"`
	Duration time.Duration     `json:"duration"`
}

// Runner processes corpus files concurrently, one file per worker. The
// sentences of a file are processed in order and written as one Doc.
type Runner struct {
	Processor *Processor
	Bag       *diag.Bag
	Logger    *slog.Logger

	// Workers is the number of files processed at once. Defaults to the
	// number of CPUs.
	Workers int

	// FailFast stops the run at the first skipped sentence or unreadable
	// file.
	FailFast bool

	// Open parses a corpus file. Defaults to corpus.ParseFile.
	Open func(path string) ([]sent.Sentence, error)

	// RunId identifies the run in the report. A random one is generated
	// when empty.
	RunId string

	// Ordered writes the docs to the sink in the order of the files instead
	// of the order in which they complete.
	Ordered bool

	// OnFile is called after each file, from the worker goroutines.
	OnFile func(path string, err error)

	mu  sync.Mutex
	rep Report
}

func NewRunner(p *Processor) *Runner {
	return &Runner{
		Processor: p,
		Bag:       diag.NewBag(),
		Logger:    slog.Default(),
		Workers:   runtime.NumCPU(),
		Open:      corpus.ParseFile,
	}
}

func (r *Runner) count(fn func(rep *Report)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.rep)
}

// Run processes files and writes one Doc per file to sink. Data errors are
// collected in the Bag and never stop the run unless FailFast is set.
// Structural errors always do. Once ctx is canceled no new file is started.
func (r *Runner) Run(ctx context.Context, files []string, sink storage.RecordWriter) (Report, error) {
	start := time.Now()
	if r.RunId == "" {
		r.RunId = uuid.NewString()
	}
	r.rep = Report{RunId: r.RunId}

	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	var seq *sequencer
	if r.Ordered {
		seq = newSequencer()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, f := range files {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			doc, err := r.runFile(ctx, f, sink)
			if err == nil {
				write := func() error { return r.write(doc, sink) }
				if seq != nil {
					err = seq.done(i, write)
				} else {
					err = write()
				}
			}
			if r.OnFile != nil {
				r.OnFile(f, err)
			}
			return err
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	r.mu.Lock()
	rep := r.rep
	r.mu.Unlock()

	rep.Counts = r.Bag.Counts()
	rep.Cache = r.Processor.Resolver.Cache.Stats()
	rep.Duration = time.Since(start)

	return rep, err
}

// runFile returns the doc of the file at path, or nil when there is nothing
// to write.
func (r *Runner) runFile(ctx context.Context, path string, sink storage.RecordWriter) (*sent.Doc, error) {
	title, corpusName := corpus.Name(path)
	log := r.Logger.With("file", path)

	r.count(func(rep *Report) { rep.Files++ })

	if ex, ok := sink.(storage.Exister); ok {
		exists, err := ex.Exists(title, corpusName)
		if err != nil {
			return nil, fmt.Errorf("check output of %s: %w", path, err)
		}
		if exists {
			log.Info("output exists, skipping")
			r.count(func(rep *Report) { rep.Existing++ })
			return nil, nil
		}
	}

	sentences, err := r.Open(path)
	if err != nil {
		log.Error("cannot parse file", "err", err)
		r.count(func(rep *Report) { rep.Failed++ })
		if r.FailFast {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return nil, nil
	}

	var tokens []sent.Token
	for _, s := range sentences {
		tokens = append(tokens, s.Tokens...)
	}
	if err := r.Processor.Resolver.Preload(ctx, tokens); err != nil {
		log.Warn("batched sense lookup failed, looking up keys one by one", "err", err)
	}

	doc := &sent.Doc{Title: title, Corpus: corpusName}

	for _, s := range sentences {
		rec, ds, err := r.Processor.Process(ctx, s)
		r.Bag.Add(ds...)
		for _, d := range ds {
			log.Warn(d.Message, "kind", d.Kind.String(), "sid", d.SentenceId, "token", d.TokenIndex, "pos", d.Position)
		}

		if err != nil {
			if errors.Is(err, ErrSkipped) && !r.FailFast {
				r.count(func(rep *Report) { rep.Sentences++; rep.Skipped++ })
				continue
			}
			return nil, fmt.Errorf("process %s: %w", s.Id, err)
		}

		doc.Records = append(doc.Records, rec)
		r.count(func(rep *Report) {
			rep.Sentences++
			rep.Records++
			rep.Annotations += len(rec.Annotations)
		})
	}

	return doc, nil
}

func (r *Runner) write(doc *sent.Doc, sink storage.RecordWriter) error {
	if doc == nil {
		return nil
	}

	if err := sink.Write(*doc); err != nil {
		if errors.Is(err, storage.ErrDocExists) {
			r.Logger.Info("doc already stored", "title", doc.Title)
			r.count(func(rep *Report) { rep.Existing++ })
			return nil
		}
		return fmt.Errorf("write %s: %w", doc.Title, err)
	}

	r.count(func(rep *Report) { rep.Docs++ })
	return nil
}

// sequencer runs the writes of numbered files in file order.
type sequencer struct {
	mu      sync.Mutex
	next    int
	pending map[int]func() error
}

func newSequencer() *sequencer {
	return &sequencer{pending: map[int]func() error{}}
}

// done queues the write of file i and runs the queued writes whose
// predecessors are all done.
func (s *sequencer) done(i int, write func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[i] = write
	for {
		w, ok := s.pending[s.next]
		if !ok {
			return nil
		}
		delete(s.pending, s.next)
		s.next++

		if err := w(); err != nil {
			return err
		}
	}
}
