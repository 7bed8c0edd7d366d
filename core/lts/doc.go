// Package lts converts a single Devanagari word into a phone string for a
// speech-synthesis front end.
//
// # Pipeline
//
// Phonemise runs a fixed sequence of stages over one unit sequence per
// word:
//
//   - tokenize: one unit per UTF-16 code unit, looked up in the lexicon
//   - drop-unknown: units missing from the lexicon are removed
//   - nine schwa passes deciding, per consonant, whether the inherent
//     vowel is realised (an explicit "a" is inserted), deleted, or absorbed
//     into a consonant cluster
//   - drop-halant: conjunct markers are removed
//   - syllabify: "-" after every vowel that has another vowel after it
//   - stress: "'" at the start of the word
//
// The stage order is significant; every schwa pass reads the statuses left
// by the one before it.
//
// # Concurrency
//
// A Phonemiser only reads its lexicon table, so one value may serve any
// number of goroutines. Each call owns its unit sequence.
package lts
