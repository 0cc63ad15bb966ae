// Package chunking implements the hybrid semantic (heading-aware) +
// token-bounded recursive splitter described in §4.4, grounded on the
// teacher's resilience-style small-single-purpose-file layout and on
// beeper/ai-bridge's tiktoken-backed token counting.
package chunking

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/shaonidutta/converge-ai/domain"
)

// DefaultSeparators is the prioritized separator list §4.4 names.
var DefaultSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", "; ", ", ", " ", ""}

// Options configures the chunking pass.
type Options struct {
	ChunkSize    int    // default 512 tokens
	ChunkOverlap int    // default 50 tokens
	Model        string // tokenizer model, e.g. "gpt-4"
	Separators   []string
}

func DefaultOptions() Options {
	return Options{ChunkSize: 512, ChunkOverlap: 50, Model: "gpt-4", Separators: DefaultSeparators}
}

// FileType selects the section-splitting strategy.
type FileType string

const (
	FileMarkdown FileType = "markdown"
	FileText     FileType = "text"
)

var headingRE = regexp.MustCompile(`(?m)^(#{1,3})\s+(.*)$`)

type section struct {
	headers []string
	title   string
	text    string
}

// Service splits (text, document_id, file_type) into an ordered list of
// DocumentChunks.
type Service struct {
	opts Options
}

func NewService(opts Options) *Service {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 512
	}
	if opts.ChunkOverlap <= 0 {
		opts.ChunkOverlap = 50
	}
	if len(opts.Separators) == 0 {
		opts.Separators = DefaultSeparators
	}
	if opts.Model == "" {
		opts.Model = "gpt-4"
	}
	return &Service{opts: opts}
}

// Chunk implements §4.4's five-step algorithm.
func (s *Service) Chunk(text, documentID string, fileType FileType) []domain.DocumentChunk {
	sections := s.splitIntoSections(text, fileType)

	var allTexts []string
	var allHeaders [][]string
	var allTitles []string

	for _, sec := range sections {
		pieces := s.splitSection(sec.text)
		for _, p := range pieces {
			if strings.TrimSpace(p) == "" {
				continue
			}
			allTexts = append(allTexts, p)
			allHeaders = append(allHeaders, sec.headers)
			allTitles = append(allTitles, sec.title)
		}
	}

	chunks := make([]domain.DocumentChunk, len(allTexts))
	total := len(allTexts)
	for i, t := range allTexts {
		tc := countTokens(t, s.opts.Model)
		chunks[i] = domain.DocumentChunk{
			ChunkID:        chunkID(documentID, i),
			DocumentID:     documentID,
			ChunkIndex:     i,
			TotalChunks:    total,
			SectionHeaders: allHeaders[i],
			SectionTitle:   allTitles[i],
			Text:           t,
			TokenCount:     tc,
			CharCount:      len(t),
		}
	}
	return chunks
}

// splitIntoSections implements step 1-2: heading-aware split for
// markdown, a single section otherwise.
func (s *Service) splitIntoSections(text string, fileType FileType) []section {
	if fileType != FileMarkdown {
		return []section{{text: text}}
	}

	matches := headingRE.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []section{{text: text}}
	}

	var sections []section
	var headerStack []string

	for i, m := range matches {
		start := m[0]
		titleStart, titleEnd := m[4], m[5]
		title := strings.TrimSpace(text[titleStart:titleEnd])
		level := m[3] - m[2]

		if level <= len(headerStack) {
			headerStack = headerStack[:level-1]
		}
		headerStack = append(headerStack, title)

		bodyStart := m[1]
		bodyEnd := len(text)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		body := strings.TrimSpace(text[bodyStart:bodyEnd])

		headers := make([]string, len(headerStack))
		copy(headers, headerStack)

		sections = append(sections, section{
			headers: headers,
			title:   title,
			text:    body,
		})
		_ = start
	}
	return sections
}

// splitSection implements step 3: recursive separator-based splitting
// with overlap, applied only when the section exceeds ChunkSize tokens.
func (s *Service) splitSection(text string) []string {
	if countTokens(text, s.opts.Model) <= s.opts.ChunkSize {
		return []string{text}
	}
	return s.recursiveSplit(text, s.opts.Separators)
}

func (s *Service) recursiveSplit(text string, separators []string) []string {
	if len(separators) == 0 || countTokens(text, s.opts.Model) <= s.opts.ChunkSize {
		return []string{text}
	}

	sep := separators[0]
	rest := separators[1:]

	var parts []string
	if sep == "" {
		parts = splitByRunes(text, approxCharsForTokens(s.opts.ChunkSize))
	} else {
		parts = splitKeepSep(text, sep)
	}

	var out []string
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			out = append(out, buf.String())
			buf.Reset()
		}
	}

	for _, p := range parts {
		candidate := buf.String() + p
		if countTokens(candidate, s.opts.Model) > s.opts.ChunkSize && buf.Len() > 0 {
			flush()
			buf.WriteString(overlapTail(out, s.opts.ChunkOverlap, s.opts.Model))
		}
		buf.WriteString(p)
	}
	flush()

	// Any piece still too large recurses with the next separator tier.
	var final []string
	for _, piece := range out {
		if countTokens(piece, s.opts.Model) > s.opts.ChunkSize {
			final = append(final, s.recursiveSplit(piece, rest)...)
		} else {
			final = append(final, piece)
		}
	}
	return final
}

func splitKeepSep(text, sep string) []string {
	raw := strings.Split(text, sep)
	out := make([]string, 0, len(raw))
	for i, r := range raw {
		if i < len(raw)-1 {
			out = append(out, r+sep)
		} else if r != "" {
			out = append(out, r)
		}
	}
	return out
}

func splitByRunes(text string, chunkSize int) []string {
	runes := []rune(text)
	if chunkSize <= 0 {
		chunkSize = 1
	}
	var out []string
	for i := 0; i < len(runes); i += chunkSize {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[i:end]))
	}
	return out
}

// overlapTail returns the trailing ~overlapTokens worth of the last
// emitted chunk, seeding the next chunk so consecutive chunks share
// context (§4.4's "share ≥ chunk_overlap*0.5 tokens in expectation").
func overlapTail(chunks []string, overlapTokens int, model string) string {
	if len(chunks) == 0 || overlapTokens <= 0 {
		return ""
	}
	last := chunks[len(chunks)-1]
	chars := approxCharsForTokens(overlapTokens)
	if chars >= len(last) {
		return last
	}
	return last[len(last)-chars:]
}

func approxCharsForTokens(tokens int) int {
	return tokens * 4
}

func chunkID(documentID string, index int) string {
	h := sha1.Sum([]byte(fmt.Sprintf("%s|%d", documentID, index)))
	return hex.EncodeToString(h[:])
}
