// Package tiktoken adapts OpenAI's BPE encodings to the tokenizer port.
// Encodings bundled with the offline loader need no network access; others are
// downloaded once and cached by tiktoken-go.
package tiktoken

import (
	"fmt"
	"strings"
	"sync"

	tk "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// DefaultEncoding is used when no encoding name is configured.
const DefaultEncoding = "cl100k_base"

var setLoader sync.Once

// Tokenizer encodes text with a tiktoken BPE encoding.
type Tokenizer struct {
	encoding string
	enc      *tk.Tiktoken
}

// New loads the named encoding.
func New(encoding string) (*Tokenizer, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	setLoader.Do(func() {
		tk.SetBpeLoader(&fallbackLoader{
			offline: tiktoken_loader.NewOfflineLoader(),
			remote:  tk.NewDefaultBpeLoader(),
		})
	})
	enc, err := tk.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %s: %w", encoding, err)
	}
	return &Tokenizer{encoding: encoding, enc: enc}, nil
}

// EncodingForModel names the encoding an OpenAI model tokenizes with.
// Unknown models get DefaultEncoding.
func EncodingForModel(model string) string {
	if enc, ok := tk.MODEL_TO_ENCODING[model]; ok {
		return enc
	}
	for prefix, enc := range tk.MODEL_PREFIX_TO_ENCODING {
		if strings.HasPrefix(model, prefix) {
			return enc
		}
	}
	return DefaultEncoding
}

func (t *Tokenizer) Name() string { return "tiktoken:" + t.encoding }

func (t *Tokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *Tokenizer) Decode(ids []int) string {
	return t.enc.Decode(ids)
}

// fallbackLoader reads the BPE ranks bundled in the binary and only goes to
// the network for encodings the offline loader does not ship (o200k_base).
type fallbackLoader struct {
	offline tk.BpeLoader
	remote  tk.BpeLoader
}

func (l *fallbackLoader) LoadTiktokenBpe(file string) (map[string]int, error) {
	ranks, err := l.offline.LoadTiktokenBpe(file)
	if err == nil {
		return ranks, nil
	}
	return l.remote.LoadTiktokenBpe(file)
}
