package jobs

import (
	"context"
	"fmt"

	"github.com/repolingo/repolingo/internal/translate"
	"github.com/repolingo/repolingo/pkg/log"
)

// WarmExecutor resolves the full UI string set for a job's language.
// backends is called per job so credential changes between runs take
// effect without restarting the queue.
func WarmExecutor(resolver *translate.Resolver, backends func() translate.Backends) Executor {
	return func(ctx context.Context, job *WarmJob) error {
		lang := job.Language
		if lang == resolver.DefaultLanguage() {
			return nil
		}

		content := resolver.Table().DefaultStrings()
		got := resolver.ResolveBatch(ctx, lang, content, backends())

		changed := 0
		for key, original := range content {
			if got[key] != original {
				changed++
			}
		}
		if changed == 0 && !resolver.Table().HasLanguage(lang) {
			return fmt.Errorf("no translations produced for %s", lang)
		}

		log.Info("Warmed %d/%d UI strings for %s", changed, len(content), lang)
		return nil
	}
}

// WarmAll enqueues a warm job for every language in the given list
// except the source language, which needs no warming.
func WarmAll(q *Queue, defaultLang string, languages []string) {
	for _, lang := range languages {
		if lang == defaultLang {
			continue
		}
		q.Enqueue(lang)
	}
}
