package cache

import (
	"strings"

	"github.com/FocuswithJustin/hindilts/core/lts"
)

// Key identifies one cached transcription. Including the lexicon
// fingerprint keeps results from different tables apart when a cache is
// shared.
type Key struct {
	Lexicon string
	Word    string
}

// Transcriptions memoises a Phonemiser. Failed transcriptions are not
// cached.
type Transcriptions struct {
	phonemiser  *lts.Phonemiser
	fingerprint string
	cache       Cache[Key, string]
}

// NewTranscriptions wraps p with an LRU built from config. A MaxSize of
// zero or less disables caching but keeps the statistics; a positive TTL
// expires entries.
func NewTranscriptions(p *lts.Phonemiser, config Config) *Transcriptions {
	t := &Transcriptions{
		phonemiser:  p,
		fingerprint: p.Lexicon().Fingerprint(),
	}
	if config.MaxSize > 0 {
		t.cache = NewLRUCache[Key, string](config)
	}
	return t
}

// Phonemise returns the cached transcription of word, computing it on a
// miss.
func (t *Transcriptions) Phonemise(word string) (string, error) {
	if t.cache == nil {
		return t.phonemiser.Phonemise(word)
	}

	key := Key{Lexicon: t.fingerprint, Word: strings.TrimSpace(word)}
	if phones, ok := t.cache.Get(key); ok {
		return phones, nil
	}
	phones, err := t.phonemiser.Phonemise(word)
	if err != nil {
		return "", err
	}
	t.cache.Put(key, phones)
	return phones, nil
}

// Phonemiser returns the wrapped Phonemiser.
func (t *Transcriptions) Phonemiser() *lts.Phonemiser {
	return t.phonemiser
}

// Stats returns cache statistics; all zero when caching is disabled.
func (t *Transcriptions) Stats() Stats {
	if t.cache == nil {
		return Stats{}
	}
	return t.cache.Stats()
}
