package translate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"

	"github.com/repolingo/repolingo/internal/i18n"
	"github.com/repolingo/repolingo/pkg/log"
)

// Tier names one stage of the resolution order. The tier that produced
// a result is reported so callers and tests can observe the path taken.
type Tier string

const (
	TierIdentity     Tier = "identity"
	TierStatic       Tier = "static"
	TierCache        Tier = "cache"
	TierLocalization Tier = "localization"
	TierGenerative   Tier = "generative"
	TierFallback     Tier = "fallback"
)

// Localizer is the remote localization engine collaborator.
type Localizer interface {
	Translate(ctx context.Context, sourceLang, targetLang, text string) (string, error)
	Localize(ctx context.Context, sourceLang, targetLang string, content map[string]string) (map[string]string, error)
}

// Generator is the generative completion collaborator.
type Generator interface {
	SimpleChat(ctx context.Context, prompt, systemPrompt string) (string, error)
}

// Backends carries the per-request remote collaborators. A nil field
// means no credential was available for that tier, which skips it.
// Backends are rebuilt per request from the effective credential set
// and must not be retained across requests.
type Backends struct {
	Localizer Localizer
	Generator Generator
}

// Request describes one resolution.
//
// TextOrKey: a recognized UI string key or freeform text.
// SourceLanguage: empty means the default UI language.
// Freeform: enables the generative fallback tier and the
// detected-language shortcut; the UI-key path never uses them.
type Request struct {
	TextOrKey      string
	TargetLanguage string
	SourceLanguage string
	Freeform       bool
}

// Result is the resolved text plus the tier that produced it.
type Result struct {
	Text string `json:"text"`
	Tier Tier   `json:"tier"`
}

// Resolver walks the tier order for each request. The static table and
// the cache are process-wide; remote collaborators arrive per request.
type Resolver struct {
	table *i18n.Table
	cache Cache
	group singleflight.Group

	mu          sync.RWMutex
	defaultLang string
}

func NewResolver(table *i18n.Table, cache Cache) *Resolver {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Resolver{
		table:       table,
		cache:       cache,
		defaultLang: i18n.DefaultLanguage,
	}
}

// Table exposes the compiled-in string table.
func (r *Resolver) Table() *i18n.Table {
	return r.table
}

// SetDefaultLanguage changes the source language assumed for catalog
// strings and for requests that do not name one. Empty input keeps the
// current value.
func (r *Resolver) SetDefaultLanguage(lang string) {
	if strings.TrimSpace(lang) == "" {
		return
	}
	r.mu.Lock()
	r.defaultLang = lang
	r.mu.Unlock()
}

// DefaultLanguage returns the configured source language.
func (r *Resolver) DefaultLanguage() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultLang
}

// namedTier is one stage of the fallback order: a pure-ish function that
// either produces the final text or declines so the walk continues.
type namedTier struct {
	name Tier
	run  func(ctx context.Context) (string, bool)
}

// Resolve returns the best available translation for the request. It
// never fails: remote tier errors are logged and absorbed, and the
// worst case is the original text via the fallback tier.
func (r *Resolver) Resolve(ctx context.Context, req Request, be Backends) Result {
	isKey := r.table.IsKey(req.TextOrKey)
	source := req.TextOrKey
	if isKey {
		source = r.table.Default(req.TextOrKey)
	}

	sourceLang := req.SourceLanguage
	if sourceLang == "" {
		sourceLang = r.DefaultLanguage()
	}

	tiers := []namedTier{
		{TierIdentity, func(ctx context.Context) (string, bool) {
			if sameLanguage(req.TargetLanguage, sourceLang) {
				return source, true
			}
			if req.Freeform && detectedAsTarget(source, req.TargetLanguage) {
				return source, true
			}
			return "", false
		}},
		{TierStatic, func(ctx context.Context) (string, bool) {
			if !isKey {
				return "", false
			}
			return r.table.Lookup(req.TextOrKey, req.TargetLanguage)
		}},
		{TierCache, func(ctx context.Context) (string, bool) {
			return r.cache.Get(req.TargetLanguage, source)
		}},
		{TierLocalization, func(ctx context.Context) (string, bool) {
			if be.Localizer == nil {
				return "", false
			}
			translated, err := r.localizeOnce(ctx, be.Localizer, sourceLang, req.TargetLanguage, source)
			if err != nil {
				log.Warn("Localization tier failed for %q -> %s: %v", truncate(source, 60), req.TargetLanguage, err)
				return "", false
			}
			r.cache.Put(req.TargetLanguage, source, translated)
			return translated, true
		}},
		{TierGenerative, func(ctx context.Context) (string, bool) {
			if !req.Freeform || be.Generator == nil {
				return "", false
			}
			translated, err := r.generateTranslation(ctx, be.Generator, sourceLang, req.TargetLanguage, source)
			if err != nil {
				log.Warn("Generative tier failed for %q -> %s: %v", truncate(source, 60), req.TargetLanguage, err)
				return "", false
			}
			r.cache.Put(req.TargetLanguage, source, translated)
			return translated, true
		}},
	}

	for _, tier := range tiers {
		if text, ok := tier.run(ctx); ok {
			return Result{Text: text, Tier: tier.name}
		}
	}

	// Terminal tier: the original text, untranslated. Must never fail.
	return Result{Text: source, Tier: TierFallback}
}

// ResolveBatch translates a key→string mapping with at most one
// localization-engine call for the entries the static table and cache
// cannot serve. On engine failure the unserved entries are returned
// unchanged; the caller always gets a complete mapping back.
func (r *Resolver) ResolveBatch(ctx context.Context, targetLang string, content map[string]string, be Backends) map[string]string {
	ret := make(map[string]string, len(content))
	for k, v := range content {
		ret[k] = v
	}

	defaultLang := r.DefaultLanguage()
	if sameLanguage(targetLang, defaultLang) {
		return ret
	}

	missing := make(map[string]string)
	for key, source := range content {
		if translated, ok := r.table.Lookup(key, targetLang); ok {
			ret[key] = translated
			continue
		}
		if translated, ok := r.cache.Get(targetLang, source); ok {
			ret[key] = translated
			continue
		}
		missing[key] = source
	}

	if len(missing) == 0 || be.Localizer == nil {
		return ret
	}

	translated, err := containedLocalize(ctx, be.Localizer, defaultLang, targetLang, missing)
	if err != nil {
		log.Warn("Batch localization failed for %s (%d entries): %v", targetLang, len(missing), err)
		return ret
	}

	for key, text := range translated {
		ret[key] = text
		r.cache.Put(targetLang, missing[key], text)
	}
	return ret
}

// localizeOnce collapses concurrent identical resolutions into a single
// engine call. Duplicate work would be harmless (the cache write is
// last-write-wins) but there is no reason to pay for it.
func (r *Resolver) localizeOnce(ctx context.Context, localizer Localizer, sourceLang, targetLang, source string) (string, error) {
	key := targetLang + "\x00" + source
	v, err, _ := r.group.Do(key, func() (any, error) {
		return containedTranslate(ctx, localizer, sourceLang, targetLang, source)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (r *Resolver) generateTranslation(ctx context.Context, generator Generator, sourceLang, targetLang, source string) (string, error) {
	systemPrompt := buildTranslationPrompt(sourceLang, targetLang)

	text, err := containedChat(ctx, generator, source, systemPrompt)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("generative translation returned empty text")
	}
	return text, nil
}

// buildTranslationPrompt builds the system prompt for the generative
// fallback tier.
func buildTranslationPrompt(sourceLang, targetLang string) string {
	var prompt strings.Builder

	prompt.WriteString("You are a professional translator. Translate the user's text from ")
	prompt.WriteString(i18n.LanguageName(sourceLang))
	prompt.WriteString(" to ")
	prompt.WriteString(i18n.LanguageName(targetLang))
	prompt.WriteString(".\n\n")
	prompt.WriteString("=== RULES ===\n")
	prompt.WriteString("1. Preserve all structural formatting: Markdown headings, lists, and fenced code blocks.\n")
	prompt.WriteString("2. Do not translate code inside fenced code blocks or inline code spans.\n")
	prompt.WriteString("3. Output ONLY the translated text. No explanations, notes, or additional text.\n")

	return prompt.String()
}

// containedTranslate guards the engine call so a panicking collaborator
// degrades into a tier failure instead of taking the request down.
func containedTranslate(ctx context.Context, localizer Localizer, sourceLang, targetLang, text string) (ret string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("localizer panicked: %v", rec)
		}
	}()
	return localizer.Translate(ctx, sourceLang, targetLang, text)
}

func containedLocalize(ctx context.Context, localizer Localizer, sourceLang, targetLang string, content map[string]string) (ret map[string]string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("localizer panicked: %v", rec)
		}
	}()
	return localizer.Localize(ctx, sourceLang, targetLang, content)
}

func containedChat(ctx context.Context, generator Generator, prompt, systemPrompt string) (ret string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("generator panicked: %v", rec)
		}
	}()
	return generator.SimpleChat(ctx, prompt, systemPrompt)
}

// sameLanguage compares two codes by base language ("pt-BR" == "pt").
func sameLanguage(a, b string) bool {
	return baseLang(a) == baseLang(b)
}

func baseLang(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	base, _ := tag.Base()
	return base.String()
}

// detectedAsTarget reports whether freeform text is already reliably in
// the target language, which makes a remote round-trip pointless.
func detectedAsTarget(text, targetLang string) bool {
	info := whatlanggo.Detect(text)
	return info.IsReliable() && info.Lang.Iso6391() == baseLang(targetLang)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
