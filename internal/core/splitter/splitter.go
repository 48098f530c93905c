// Package splitter cuts repository files into overlapping chunks sized
// for embedding. Source files split at declaration boundaries and are
// measured in characters; prose splits at paragraphs and is measured in
// cl100k_base tokens.
package splitter

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"

	"github.com/aakhterov/github-repo-analyzer/internal/models"
)

func init() {
	// Bundled BPE tables so chunking never needs network access.
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// Options controls one splitting profile.
type Options struct {
	ChunkSize    int
	ChunkOverlap int
}

func (o Options) validate() error {
	if o.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", o.ChunkSize)
	}
	if o.ChunkOverlap < 0 {
		return fmt.Errorf("chunk overlap must not be negative, got %d", o.ChunkOverlap)
	}
	if o.ChunkOverlap >= o.ChunkSize {
		return fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)",
			o.ChunkOverlap, o.ChunkSize)
	}
	return nil
}

// Splitter converts a single file into documents. Safe for concurrent use.
type Splitter struct {
	code Options
	text Options
	enc  *tiktoken.Tiktoken
}

// New validates both profiles and loads the token encoder.
func New(code, text Options) (*Splitter, error) {
	if err := code.validate(); err != nil {
		return nil, fmt.Errorf("code splitter: %w", err)
	}
	if err := text.validate(); err != nil {
		return nil, fmt.Errorf("text splitter: %w", err)
	}
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to load cl100k_base encoding: %w", err)
	}
	return &Splitter{code: code, text: text, enc: enc}, nil
}

// Split chunks one file's content. Every chunk is prefixed with a
// "filename: <path>" header and carries a copy of metadata plus the
// filename key. Notebooks are flattened to their code and markdown cells
// before splitting.
func (s *Splitter) Split(path, content string, metadata map[string]any) ([]models.Document, error) {
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".ipynb" {
		flat, err := FlattenNotebook(content)
		if err != nil {
			return nil, fmt.Errorf("failed to parse notebook %s: %w", path, err)
		}
		content = flat
	}

	seps, isCode := separatorsFor(ext)

	var opts Options
	var length func(string) int
	if isCode {
		opts = s.code
		length = utf8.RuneCountInString
	} else {
		opts = s.text
		length = func(t string) int { return len(s.enc.Encode(t, nil, nil)) }
	}

	chunks := splitText(content, seps, opts, length)

	docs := make([]models.Document, 0, len(chunks))
	for _, chunk := range chunks {
		md := make(map[string]any, len(metadata)+1)
		for k, v := range metadata {
			md[k] = v
		}
		md["filename"] = path
		docs = append(docs, models.Document{
			Content:  fmt.Sprintf("filename: %s\n%s", path, chunk),
			Metadata: md,
		})
	}
	return docs, nil
}

// splitText recursively cuts text at the first separator present in it,
// then merges the pieces back into chunks of at most opts.ChunkSize with
// opts.ChunkOverlap of trailing context carried over.
func splitText(text string, separators []string, opts Options, length func(string) int) []string {
	var final []string

	sep := separators[len(separators)-1]
	var rest []string
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			sep = s
			rest = separators[i+1:]
			break
		}
	}

	splits := splitBy(text, sep)

	var good []string
	for _, piece := range splits {
		if length(piece) < opts.ChunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, mergeSplits(good, sep, opts, length)...)
			good = nil
		}
		if len(rest) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, splitText(piece, rest, opts, length)...)
		}
	}
	if len(good) > 0 {
		final = append(final, mergeSplits(good, sep, opts, length)...)
	}
	return final
}

// splitBy splits on sep keeping the separator attached to the following
// piece, so a chunk that starts at "\nfunc " still reads as a function.
func splitBy(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, len(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}

	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i > 0 {
			p = sep + p
		}
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// mergeSplits greedily packs pieces into chunks of at most ChunkSize,
// sliding the window back by ChunkOverlap between chunks.
func mergeSplits(splits []string, sep string, opts Options, length func(string) int) []string {
	var (
		chunks  []string
		current []string
		total   int
	)

	for _, piece := range splits {
		l := length(piece)
		if total+l > opts.ChunkSize && len(current) > 0 {
			if doc := joinChunk(current); doc != "" {
				chunks = append(chunks, doc)
			}
			for total > opts.ChunkOverlap || (total+l > opts.ChunkSize && total > 0) {
				total -= length(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += l
	}
	if doc := joinChunk(current); doc != "" {
		chunks = append(chunks, doc)
	}
	return chunks
}

func joinChunk(pieces []string) string {
	return strings.TrimSpace(strings.Join(pieces, ""))
}
