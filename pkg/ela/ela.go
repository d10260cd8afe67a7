// Package ela is the entity-normalization pipeline facade for the archive's
// XML-TEI corpus. It wires the corpus walker, the variant registry, the
// discovery extractor and the production tagger into the two top-level
// passes the command-line tools expose.
package ela

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/EurasianLatinArchive/ELA/pkg/ela/corpus"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/entity"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/extract"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/gazetteer"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/internalerr"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/tag"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/tei"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/variants"
)

// Pipeline runs corpus-wide passes against one variant registry.
type Pipeline struct {
	store *variants.Store
	gaz   gazetteer.Index
	rec   extract.Recognizer
	types []entity.Type
	log   zerolog.Logger
}

// Options configures a Pipeline instance.
type Options struct {
	// Store is the variant registry; required.
	Store *variants.Store
	// Gazetteer resolves place coordinates; optional.
	Gazetteer gazetteer.Index
	// Recognizer proposes untagged name candidates during discovery;
	// optional.
	Recognizer extract.Recognizer
	// Types restricts the production pass; empty selects all types.
	Types []entity.Type
	// Logger receives per-document progress events.
	Logger zerolog.Logger
}

// New creates a Pipeline with the given dependencies.
func New(opts Options) *Pipeline {
	types := opts.Types
	if len(types) == 0 {
		types = entity.AllTypes()
	}
	return &Pipeline{
		store: opts.Store,
		gaz:   opts.Gazetteer,
		rec:   opts.Recognizer,
		types: types,
		log:   opts.Logger,
	}
}

// Summary reports one corpus pass.
type Summary struct {
	Processed int
	Skipped   int
	Elapsed   time.Duration
}

// Discover runs the discovery pass over every document under srcRoot,
// writing annotated copies into the mirrored tree under dstRoot. Malformed
// documents are logged and skipped; the pass continues. An unreadable root
// or a destination write failure aborts the pass.
func (p *Pipeline) Discover(ctx context.Context, srcRoot, dstRoot string) (Summary, error) {
	ex := extract.New(p.store, p.rec, p.gaz)
	return p.run(ctx, srcRoot, dstRoot, "discover", func(ctx context.Context, doc *tei.Document) (*tei.Document, error) {
		out, res, err := ex.Process(ctx, doc)
		if err != nil {
			return nil, err
		}
		p.log.Debug().Str("doc", doc.Path).
			Int("known", res.Known).Int("added", res.Added).
			Msg("document extracted")
		return out, nil
	})
}

// Retag runs the production pass: every document under srcRoot is rewritten
// against the frozen registry into the mirrored tree under dstRoot.
func (p *Pipeline) Retag(ctx context.Context, srcRoot, dstRoot string) (Summary, error) {
	tg := tag.New(p.store, p.gaz, p.types)
	return p.run(ctx, srcRoot, dstRoot, "retag", func(ctx context.Context, doc *tei.Document) (*tei.Document, error) {
		out, res, err := tg.Rewrite(ctx, doc)
		if err != nil {
			return nil, err
		}
		p.log.Debug().Str("doc", doc.Path).
			Int("canonicalized", res.Canonicalized).
			Int("tagged", res.Tagged).
			Int("geocoded", res.Geocoded).
			Msg("document retagged")
		return out, nil
	})
}

func (p *Pipeline) run(ctx context.Context, srcRoot, dstRoot, pass string, rewrite func(context.Context, *tei.Document) (*tei.Document, error)) (Summary, error) {
	start := time.Now()
	sum := Summary{}

	w := corpus.Walker{Root: srcRoot}
	subdirs, err := w.Subdirs()
	if err != nil {
		return sum, err
	}

	for _, sub := range subdirs {
		docs, err := w.Documents(sub)
		if err != nil {
			return sum, err
		}
		dstDir, err := corpus.Mirror(dstRoot, sub)
		if err != nil {
			return sum, err
		}
		for _, name := range docs {
			if err := ctx.Err(); err != nil {
				return sum, err
			}
			src := w.SourcePath(sub, name)
			doc, err := tei.ReadDocument(src)
			if err != nil {
				if errors.Is(err, internalerr.ErrMalformedDocument) {
					p.log.Warn().Str("doc", src).Err(err).Msg("skipping malformed document")
					sum.Skipped++
					continue
				}
				return sum, err
			}
			out, err := rewrite(ctx, doc)
			if err != nil {
				return sum, err
			}
			if err := tei.WriteDocument(filepath.Join(dstDir, name), out); err != nil {
				return sum, err
			}
			sum.Processed++
		}
	}

	sum.Elapsed = time.Since(start)
	p.log.Info().Str("pass", pass).
		Int("processed", sum.Processed).
		Int("skipped", sum.Skipped).
		Dur("elapsed", sum.Elapsed).
		Msg("corpus pass complete")
	return sum, nil
}
